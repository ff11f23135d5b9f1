package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	database, err := Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	uow := NewSQLiteUnitOfWork(database)
	ctx := context.Background()

	err = uow.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO reviewers (id, name, role, active, created_at)
			VALUES ('r-1', 'Pat Lee', 'staff', 1, '2024-01-01T00:00:00Z')`)
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM reviewers`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	database, err := Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	uow := NewSQLiteUnitOfWork(database)
	ctx := context.Background()
	boom := errors.New("boom")

	err = uow.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO reviewers (id, name, role, active, created_at)
			VALUES ('r-1', 'Pat Lee', 'staff', 1, '2024-01-01T00:00:00Z')`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM reviewers`).Scan(&count))
	assert.Equal(t, 0, count, "failed transaction must leave no rows")
}

func TestWithinTx_RollsBackOnPanic(t *testing.T) {
	database, err := Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	uow := NewSQLiteUnitOfWork(database)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = uow.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
			if _, err := tx.ExecContext(ctx, `INSERT INTO reviewers (id, name, role, active, created_at)
				VALUES ('r-1', 'Pat Lee', 'staff', 1, '2024-01-01T00:00:00Z')`); err != nil {
				return err
			}
			panic("mid-transaction panic")
		})
	})

	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM reviewers`).Scan(&count))
	assert.Equal(t, 0, count)
}
