package testutil

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/BharathVasireddy/numericalz-sub006/internal/db"
)

var testDBCounter atomic.Int64

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test completes.
//
// Each test gets a uniquely named shared-cache in-memory database so that
// every connection in database/sql's pool sees the same data; a plain
// ":memory:" DSN gives each pooled connection its own empty database.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:numz-test-%d?mode=memory&cache=shared", testDBCounter.Add(1))
	database, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestUoW creates a UnitOfWork backed by the given test database.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
