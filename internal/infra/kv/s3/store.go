// Package s3 implements a KVStore on an S3-compatible bucket (AWS S3 or MinIO).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"chefmenu/pkg/domain"
)

var _ domain.KVStore = (*Store)(nil)

const contentTypeJSON = "application/json"

// Store maps each key to one object, optionally under a common prefix.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// Config holds explicit construction parameters.
type Config struct {
	Region          string
	Bucket          string
	Prefix          string // optional object key prefix, e.g. "chefmenu/"
	Endpoint        string // optional; if set enables custom endpoint (e.g. MinIO)
	AccessKeyID     string // optional (falls back to default credentials chain)
	SecretAccessKey string // optional
	SessionToken    string // optional
	PathStyle       bool
}

// New creates an S3 store from Config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Driver returns the backend identifier.
func (s *Store) Driver() domain.Driver { return domain.DriverS3 }

func (s *Store) objectKey(key string) string {
	return s.prefix + strings.TrimPrefix(key, "/")
}

// GetItem downloads the object for key. A missing object reads as absent.
func (s *Store) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: aws.String(s.objectKey(key))})
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get object %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()
	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read object %s: %w", key, err)
	}
	return b, true, nil
}

// SetItem uploads value as the object for key, replacing any previous version.
func (s *Store) SetItem(ctx context.Context, key string, value []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(value),
		ContentType: aws.String(contentTypeJSON),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
