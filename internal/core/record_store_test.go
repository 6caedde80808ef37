package core

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"chefmenu/internal/infra/kv/memory"
	"chefmenu/pkg/domain"
)

func TestRecordStore_LoadAbsent(t *testing.T) {
	rs := NewRecordStore(memory.New())
	dishes, found, err := rs.Load(context.Background())
	if err != nil || found || dishes != nil {
		t.Fatalf("absent load = %+v,%v,%v", dishes, found, err)
	}
	if rs.Key() != DishesKey || rs.Driver() != domain.DriverMemory {
		t.Fatalf("unexpected key/driver %s/%s", rs.Key(), rs.Driver())
	}
}

func TestRecordStore_SaveLoadRoundTrip(t *testing.T) {
	kv := memory.New()
	rs := NewRecordStore(kv)
	ctx := context.Background()
	if err := rs.Save(ctx, SeedDishes()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, found, err := rs.Load(ctx)
	if err != nil || !found {
		t.Fatalf("load: %v found=%v", err, found)
	}
	if !reflect.DeepEqual(got, SeedDishes()) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	raw, _, _ := kv.GetItem(ctx, DishesKey)
	if !strings.Contains(string(raw), `"course":"Mains"`) || !strings.Contains(string(raw), `"price":"12.99"`) {
		t.Fatalf("unexpected encoding %s", raw)
	}
}

func TestRecordStore_SaveNilWritesEmptyList(t *testing.T) {
	kv := memory.New()
	rs := NewRecordStore(kv)
	ctx := context.Background()
	if err := rs.Save(ctx, nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, found, _ := kv.GetItem(ctx, DishesKey)
	if !found || string(raw) != "[]" {
		t.Fatalf("expected [] stored, got %q found=%v", raw, found)
	}
	dishes, found, err := rs.Load(ctx)
	if err != nil || !found || len(dishes) != 0 || dishes == nil {
		t.Fatalf("empty load = %+v,%v,%v", dishes, found, err)
	}
}

func TestRecordStore_CorruptValue(t *testing.T) {
	kv := memory.New()
	ctx := context.Background()
	if err := kv.SetItem(ctx, DishesKey, []byte("{not json")); err != nil {
		t.Fatalf("seed corrupt: %v", err)
	}
	_, _, err := NewRecordStore(kv).Load(ctx)
	var pe domain.PersistenceError
	if !errors.As(err, &pe) || pe.Op != "load" {
		t.Fatalf("expected load persistence error, got %v", err)
	}
}

func TestRecordStore_BackendFailures(t *testing.T) {
	kv := newCountingKV()
	kv.failGet, kv.failSet = true, true
	rs := NewRecordStore(kv)
	ctx := context.Background()
	if _, _, err := rs.Load(ctx); !errors.Is(err, errInjected) || !domain.IsPersistence(err) {
		t.Fatalf("load: %v", err)
	}
	err := rs.Save(ctx, SeedDishes())
	var pe domain.PersistenceError
	if !errors.As(err, &pe) || pe.Op != "save" {
		t.Fatalf("save: %v", err)
	}
}
