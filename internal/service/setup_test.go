package service

import (
	"database/sql"
	"testing"

	"github.com/BharathVasireddy/numericalz-sub006/internal/db"
	"github.com/BharathVasireddy/numericalz-sub006/internal/repository"
	"github.com/BharathVasireddy/numericalz-sub006/internal/testutil"
)

type testEnv struct {
	db          *sql.DB
	clients     *repository.SQLiteClientRepo
	reviewers   *repository.SQLiteReviewerRepo
	obligations *repository.SQLiteObligationRepo
	history     *repository.SQLiteHistoryRepo
	uow         db.UnitOfWork
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	return &testEnv{
		db:          database,
		clients:     repository.NewSQLiteClientRepo(database),
		reviewers:   repository.NewSQLiteReviewerRepo(database),
		obligations: repository.NewSQLiteObligationRepo(database),
		history:     repository.NewSQLiteHistoryRepo(database),
		uow:         testutil.NewTestUoW(database),
	}
}
