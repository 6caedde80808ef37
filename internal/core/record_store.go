package core

import (
	"context"
	"encoding/json"
	"fmt"

	"chefmenu/pkg/domain"
)

// DishesKey is the fixed key under which the dish list is persisted.
const DishesKey = "dishes"

// RecordStore binds one KV key to the JSON-encoded dish list.
type RecordStore struct {
	kv  domain.KVStore
	key string
}

// NewRecordStore returns a RecordStore over kv using DishesKey.
func NewRecordStore(kv domain.KVStore) *RecordStore {
	return &RecordStore{kv: kv, key: DishesKey}
}

// Key returns the KV key backing the list.
func (s *RecordStore) Key() string { return s.key }

// Driver returns the backend identifier of the underlying KV store.
func (s *RecordStore) Driver() domain.Driver { return s.kv.Driver() }

// Load reads the full list. found is false when nothing was ever saved.
// Read and decode failures are returned as domain.PersistenceError.
func (s *RecordStore) Load(ctx context.Context) ([]domain.Dish, bool, error) {
	raw, found, err := s.kv.GetItem(ctx, s.key)
	if err != nil {
		return nil, false, domain.PersistenceError{Op: "load", Err: err}
	}
	if !found {
		return nil, false, nil
	}
	dishes := []domain.Dish{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &dishes); err != nil {
			return nil, false, domain.PersistenceError{Op: "load", Err: fmt.Errorf("decode %s: %w", s.key, err)}
		}
	}
	return dishes, true, nil
}

// Save replaces the full list.
func (s *RecordStore) Save(ctx context.Context, dishes []domain.Dish) error {
	if dishes == nil {
		dishes = []domain.Dish{}
	}
	raw, err := json.Marshal(dishes)
	if err != nil {
		return domain.PersistenceError{Op: "save", Err: fmt.Errorf("encode %s: %w", s.key, err)}
	}
	if err := s.kv.SetItem(ctx, s.key, raw); err != nil {
		return domain.PersistenceError{Op: "save", Err: err}
	}
	return nil
}
