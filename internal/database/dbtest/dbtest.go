// Package dbtest provides a database/sql connection that records the SQL a
// store sends instead of executing it.
package dbtest

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
)

// Recorder remembers every statement and transaction boundary. Queries
// return no rows and execs affect none.
type Recorder struct {
	mu      sync.Mutex
	entries []string
}

// Open returns a *sql.DB backed by a fresh Recorder. The DB is closed when
// the test ends.
func Open(t testing.TB) (*sql.DB, *Recorder) {
	t.Helper()

	rec := &Recorder{}
	db := sql.OpenDB(rec)
	t.Cleanup(func() { db.Close() })

	return db, rec
}

// Entries returns the recorded statements with whitespace collapsed.
func (r *Recorder) Entries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = strings.Join(strings.Fields(e), " ")
	}

	return out
}

// Last returns the most recent entry, or "" when nothing was recorded.
func (r *Recorder) Last() string {
	entries := r.Entries()
	if len(entries) == 0 {
		return ""
	}

	return entries[len(entries)-1]
}

func (r *Recorder) add(entry string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
}

func (r *Recorder) Connect(context.Context) (driver.Conn, error) { return conn{r}, nil }
func (r *Recorder) Driver() driver.Driver                        { return recDriver{r} }

type recDriver struct{ rec *Recorder }

func (d recDriver) Open(string) (driver.Conn, error) { return conn(d), nil }

type conn struct{ rec *Recorder }

func (c conn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("prepare not supported") }
func (c conn) Close() error                        { return nil }
func (c conn) Begin() (driver.Tx, error)           { return c.BeginTx(context.Background(), driver.TxOptions{}) }

func (c conn) BeginTx(_ context.Context, opts driver.TxOptions) (driver.Tx, error) {
	c.rec.add(fmt.Sprintf("BEGIN %s read_only=%t", sql.IsolationLevel(opts.Isolation), opts.ReadOnly))
	return tx(c), nil
}

func (c conn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.rec.add(query)
	return emptyRows{}, nil
}

func (c conn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	c.rec.add(query)
	return driver.RowsAffected(0), nil
}

type tx struct{ rec *Recorder }

func (t tx) Commit() error {
	t.rec.add("COMMIT")
	return nil
}

func (t tx) Rollback() error {
	t.rec.add("ROLLBACK")
	return nil
}

type emptyRows struct{}

func (emptyRows) Columns() []string         { return nil }
func (emptyRows) Close() error              { return nil }
func (emptyRows) Next([]driver.Value) error { return io.EOF }
