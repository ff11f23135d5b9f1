package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/db"
	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
)

const reviewerColumns = `id, name, role, active, created_at`

// SQLiteReviewerRepo implements ReviewerRepo using a SQLite database.
type SQLiteReviewerRepo struct {
	db db.DBTX
}

// NewSQLiteReviewerRepo creates a new SQLiteReviewerRepo.
func NewSQLiteReviewerRepo(conn db.DBTX) *SQLiteReviewerRepo {
	return &SQLiteReviewerRepo{db: conn}
}

func (r *SQLiteReviewerRepo) Create(ctx context.Context, rev *domain.Reviewer) error {
	query := `INSERT INTO reviewers (id, name, role, active, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rev.ID,
		rev.Name,
		string(rev.Role),
		boolToInt(rev.Active),
		rev.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting reviewer: %w", err)
	}
	return nil
}

func (r *SQLiteReviewerRepo) GetByID(ctx context.Context, id string) (*domain.Reviewer, error) {
	query := `SELECT ` + reviewerColumns + ` FROM reviewers WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	rev, err := scanReviewer(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("reviewer: %w", ErrNotFound)
	}
	return rev, err
}

// ListEligible returns active reviewers of a role ordered by creation
// time then id. The ordering is stable within a scheduler run, which is
// all the round-robin contract requires.
func (r *SQLiteReviewerRepo) ListEligible(ctx context.Context, role domain.ReviewerRole) ([]*domain.Reviewer, error) {
	query := `SELECT ` + reviewerColumns + ` FROM reviewers
		WHERE role = ? AND active = 1
		ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("listing eligible reviewers: %w", err)
	}
	defer rows.Close()
	return scanReviewers(rows)
}

func (r *SQLiteReviewerRepo) List(ctx context.Context) ([]*domain.Reviewer, error) {
	query := `SELECT ` + reviewerColumns + ` FROM reviewers ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing reviewers: %w", err)
	}
	defer rows.Close()
	return scanReviewers(rows)
}

func scanReviewers(rows *sql.Rows) ([]*domain.Reviewer, error) {
	var reviewers []*domain.Reviewer
	for rows.Next() {
		rev, err := scanReviewer(rows)
		if err != nil {
			return nil, err
		}
		reviewers = append(reviewers, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reviewers: %w", err)
	}
	return reviewers, nil
}

func scanReviewer(row rowScanner) (*domain.Reviewer, error) {
	var rev domain.Reviewer
	var roleStr string
	var activeInt int
	var createdAtStr string

	err := row.Scan(&rev.ID, &rev.Name, &roleStr, &activeInt, &createdAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning reviewer: %w", err)
	}

	rev.Role = domain.ReviewerRole(roleStr)
	rev.Active = intToBool(activeInt)
	var parseErr error
	rev.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	return &rev, nil
}
