// Package testutil provides a stub database/sql driver that understands the
// handful of statements issued by the postgres kv store.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

var stubSeq uint64

// StubConn records executed statements and keeps kv rows in memory.
type StubConn struct {
	mu        sync.Mutex
	Execs     []string
	Rows      map[string][]byte
	FailPing  bool
	FailExec  bool
	FailQuery bool
}

// NewStubDB registers a sql.DB backed by an in-memory stub connection.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{Rows: make(map[string][]byte)}
	name := fmt.Sprintf("stubpg%d", atomic.AddUint64(&stubSeq, 1))
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

type stubDriver struct {
	conn *StubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) {
	return d.conn, nil
}

// Prepare implements driver.Conn.
func (c *StubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }

// Close implements driver.Conn.
func (c *StubConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StubConn) Begin() (driver.Tx, error) { return nil, fmt.Errorf("transactions not supported") }

// Ping implements driver.Pinger.
func (c *StubConn) Ping(_ context.Context) error {
	if c.FailPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

// ExecContext implements driver.ExecerContext.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Execs = append(c.Execs, query)
	if c.FailExec {
		return nil, fmt.Errorf("exec fail")
	}
	up := strings.ToUpper(strings.TrimSpace(query))
	switch {
	case strings.HasPrefix(up, "CREATE TABLE"):
		return driver.RowsAffected(0), nil
	case strings.HasPrefix(up, "INSERT INTO KV"):
		if len(args) != 2 {
			return nil, fmt.Errorf("expected 2 args, got %d", len(args))
		}
		key, _ := args[0].Value.(string)
		value, _ := args[1].Value.([]byte)
		c.Rows[key] = append([]byte(nil), value...)
		return driver.RowsAffected(1), nil
	}
	return nil, fmt.Errorf("unsupported statement: %s", query)
}

// QueryContext implements driver.QueryerContext for `SELECT value FROM kv WHERE key = $1`.
func (c *StubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailQuery {
		return nil, fmt.Errorf("query fail")
	}
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT VALUE FROM KV") || len(args) != 1 {
		return nil, fmt.Errorf("unsupported query: %s", query)
	}
	key, _ := args[0].Value.(string)
	rows := &stubRows{cols: []string{"value"}}
	if v, ok := c.Rows[key]; ok {
		rows.rows = [][]driver.Value{{append([]byte(nil), v...)}}
	}
	return rows, nil
}

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}
