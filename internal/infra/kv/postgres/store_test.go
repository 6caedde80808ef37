package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"chefmenu/internal/infra/kv/postgres/testutil"
	"chefmenu/pkg/domain"
)

func newStubStore(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		if driverName != defaultDriver {
			t.Fatalf("unexpected driver %s", driverName)
		}
		if dsn != defaultDSN {
			t.Fatalf("expected default dsn, got %s", dsn)
		}
		return db, nil
	})
	t.Cleanup(restore)
	store, err := New(context.Background(), "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return store, conn
}

func TestStore_RoundTrip(t *testing.T) {
	store, conn := newStubStore(t)
	if store.Driver() != domain.DriverPostgres {
		t.Fatalf("expected postgres driver")
	}
	if len(conn.Execs) == 0 || !strings.Contains(conn.Execs[0], "CREATE TABLE IF NOT EXISTS kv") {
		t.Fatalf("expected table bootstrap, got %v", conn.Execs)
	}
	ctx := context.Background()
	if _, found, err := store.GetItem(ctx, "dishes"); err != nil || found {
		t.Fatalf("expected absent, got found=%v err=%v", found, err)
	}
	if err := store.SetItem(ctx, "dishes", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.SetItem(ctx, "dishes", []byte(`[]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, found, err := store.GetItem(ctx, "dishes")
	if err != nil || !found || string(v) != "[]" {
		t.Fatalf("get: %q %v %v", v, found, err)
	}
	if len(conn.Rows) != 1 {
		t.Fatalf("expected a single row, got %d", len(conn.Rows))
	}
}

func TestStore_Failures(t *testing.T) {
	store, conn := newStubStore(t)
	ctx := context.Background()
	conn.FailQuery = true
	if _, _, err := store.GetItem(ctx, "dishes"); err == nil {
		t.Fatalf("expected query failure")
	}
	conn.FailExec = true
	if err := store.SetItem(ctx, "dishes", []byte("[]")); err == nil {
		t.Fatalf("expected exec failure")
	}
}

func TestNew_PingAndOpenFailures(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
	if _, err := New(context.Background(), "postgres://x"); err == nil || !strings.Contains(err.Error(), "ping") {
		t.Fatalf("expected ping failure, got %v", err)
	}
	restore()

	restore = OverrideSQLOpen(func(string, string) (*sql.DB, error) { return nil, errors.New("boom") })
	defer restore()
	if _, err := New(context.Background(), "postgres://x"); err == nil || !strings.Contains(err.Error(), "open postgres") {
		t.Fatalf("expected open failure, got %v", err)
	}
}

func TestNew_TableFailure(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.FailExec = true
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := New(context.Background(), "postgres://x"); err == nil || !strings.Contains(err.Error(), "ensure kv table") {
		t.Fatalf("expected ddl failure, got %v", err)
	}
}
