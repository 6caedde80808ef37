package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"chefmenu/internal/infra/kv/memory"
	"chefmenu/pkg/domain"
)

// countingKV wraps the memory backend and counts or fails calls on demand.
type countingKV struct {
	*memory.Store
	mu      sync.Mutex
	gets    int
	sets    int
	failGet bool
	failSet bool
}

func newCountingKV() *countingKV { return &countingKV{Store: memory.New()} }

var errInjected = errors.New("injected store failure")

func (c *countingKV) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	c.gets++
	fail := c.failGet
	c.mu.Unlock()
	if fail {
		return nil, false, errInjected
	}
	return c.Store.GetItem(ctx, key)
}

func (c *countingKV) SetItem(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	c.sets++
	fail := c.failSet
	c.mu.Unlock()
	if fail {
		return errInjected
	}
	return c.Store.SetItem(ctx, key, value)
}

func (c *countingKV) calls() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gets, c.sets
}

func sequentialIDs(prefix string) IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func newTestRepository(opts ...Option) (*Repository, *countingKV) {
	kv := newCountingKV()
	return NewRepository(NewRecordStore(kv), opts...), kv
}

func soup() domain.Fields {
	return domain.Fields{Name: "Soup", Description: "Hot", Course: "Appetizers", Price: "4.50"}
}

type captureLogger struct {
	mu    sync.Mutex
	calls []string
}

func (c *captureLogger) add(s string) {
	c.mu.Lock()
	c.calls = append(c.calls, s)
	c.mu.Unlock()
}

func (c *captureLogger) Debug(msg string, _ ...any) { c.add("d:" + msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.add("i:" + msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.add("w:" + msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.add("e:" + msg) }
