package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MockTransport is an in-memory fake of the S3 GetObject/PutObject subset.
// Setting Deny makes every request fail with 403 AccessDenied.
type MockTransport struct {
	mu      sync.Mutex
	objects map[string][]byte
	Deny    bool
}

// Object returns the raw stored body for an object key.
func (m *MockTransport) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}

// NewMockForTests returns a Store backed by an in-memory fake HTTP transport.
func NewMockForTests(prefix string) (*Store, *MockTransport) {
	rt := &MockTransport{objects: make(map[string][]byte)}
	cfg, _ := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
	})
	return &Store{client: client, bucket: "mock-bucket", prefix: prefix}, rt
}

func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Deny {
		return xmlError(http.StatusForbidden, "AccessDenied"), nil
	}
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	switch req.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeChunked(body); ok {
			body = dec
		}
		m.objects[key] = body
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"ETag": {"\"etag\""}}}, nil
	case http.MethodGet:
		body, ok := m.objects[key]
		if !ok {
			return xmlError(http.StatusNotFound, "NoSuchKey"), nil
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(body)), Header: http.Header{
			"Content-Length": {fmt.Sprintf("%d", len(body))},
			"Content-Type":   {contentTypeJSON},
			"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
			"ETag":           {"\"etag\""},
		}, ContentLength: int64(len(body))}, nil
	}
	return xmlError(http.StatusNotImplemented, "NotImplemented"), nil
}

func xmlError(status int, code string) *http.Response {
	body := "<?xml version=\"1.0\" encoding=\"UTF-8\"?><Error><Code>" + code + "</Code><Message>" + code + "</Message></Error>"
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": {"application/xml"}},
	}
}

// decodeChunked decodes a single-chunk aws-chunked payload: <hex>\r\n<body>\r\n0\r\n[trailers]
func decodeChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	var size int64
	if _, err := fmt.Sscanf(parts[0], "%x", &size); err != nil {
		return nil, false
	}
	if int64(len(parts[1])) != size || parts[2] != "0" {
		return nil, false
	}
	return []byte(parts[1]), true
}
