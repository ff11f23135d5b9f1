package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/db"
	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
)

const historyColumns = `id, obligation_id, from_stage, to_stage, changed_at, actor_id, actor_name, notes`

// SQLiteHistoryRepo implements HistoryRepo using a SQLite database.
// The history table is append-only; there is no update or delete path.
type SQLiteHistoryRepo struct {
	db db.DBTX
}

// NewSQLiteHistoryRepo creates a new SQLiteHistoryRepo.
func NewSQLiteHistoryRepo(conn db.DBTX) *SQLiteHistoryRepo {
	return &SQLiteHistoryRepo{db: conn}
}

func (r *SQLiteHistoryRepo) Append(ctx context.Context, e *domain.HistoryEntry) error {
	query := `INSERT INTO history_entries (id, obligation_id, from_stage, to_stage, changed_at, actor_id, actor_name, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	var fromStage interface{}
	if e.FromStage != nil {
		fromStage = string(*e.FromStage)
	}
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.ObligationID,
		fromStage,
		string(e.ToStage),
		e.ChangedAt.UTC().Format(time.RFC3339),
		e.ActorID,
		e.ActorName,
		e.Notes,
	)
	if err != nil {
		return fmt.Errorf("appending history entry: %w", err)
	}
	return nil
}

func (r *SQLiteHistoryRepo) ListByObligation(ctx context.Context, obligationID string) ([]domain.HistoryEntry, error) {
	query := `SELECT ` + historyColumns + ` FROM history_entries
		WHERE obligation_id = ? ORDER BY changed_at, id`
	rows, err := r.db.QueryContext(ctx, query, obligationID)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		e, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return entries, nil
}

func scanHistoryEntry(rows *sql.Rows) (*domain.HistoryEntry, error) {
	var e domain.HistoryEntry
	var fromStage sql.NullString
	var toStageStr, changedAtStr string

	err := rows.Scan(
		&e.ID, &e.ObligationID, &fromStage, &toStageStr,
		&changedAtStr, &e.ActorID, &e.ActorName, &e.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning history entry: %w", err)
	}

	if fromStage.Valid {
		s := domain.StageID(fromStage.String)
		e.FromStage = &s
	}
	e.ToStage = domain.StageID(toStageStr)
	var parseErr error
	e.ChangedAt, parseErr = time.Parse(time.RFC3339, changedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing changed_at: %w", parseErr)
	}
	return &e, nil
}
