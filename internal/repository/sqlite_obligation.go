package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/db"
	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
)

// obligationColumns is the canonical SELECT column list for obligations.
const obligationColumns = `id, client_id, kind, period_start, period_end,
		due_date, due_source, due_updated_by, due_updated_at,
		current_stage, assigned_reviewer_id, version, created_at, updated_at`

// SQLiteObligationRepo implements ObligationRepo using a SQLite database.
type SQLiteObligationRepo struct {
	db db.DBTX
}

// NewSQLiteObligationRepo creates a new SQLiteObligationRepo.
func NewSQLiteObligationRepo(conn db.DBTX) *SQLiteObligationRepo {
	return &SQLiteObligationRepo{db: conn}
}

func (r *SQLiteObligationRepo) Create(ctx context.Context, o *domain.Obligation) error {
	query := `INSERT INTO obligations (id, client_id, kind, period_start, period_end,
		due_date, due_source, due_updated_by, due_updated_at,
		current_stage, assigned_reviewer_id, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		o.ID,
		o.ClientID,
		string(o.Kind),
		o.PeriodStart.Format(dateLayout),
		o.PeriodEnd.Format(dateLayout),
		o.DueDate.Format(dateLayout),
		string(o.DueSource),
		o.DueUpdatedBy,
		nullableTimeToString(o.DueUpdatedAt, time.RFC3339),
		string(o.CurrentStage),
		nullableString(o.AssignedReviewerID),
		o.Version,
		o.CreatedAt.Format(time.RFC3339),
		o.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting obligation: %w", err)
	}
	for field, m := range o.Milestones {
		if err := r.SetMilestone(ctx, o.ID, field, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteObligationRepo) GetByID(ctx context.Context, id string) (*domain.Obligation, error) {
	query := `SELECT ` + obligationColumns + ` FROM obligations WHERE id = ?`
	o, err := scanObligation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("obligation: %w", ErrNotFound)
		}
		return nil, err
	}
	if err := r.loadMilestones(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *SQLiteObligationRepo) ListByClient(ctx context.Context, clientID string) ([]*domain.Obligation, error) {
	query := `SELECT ` + obligationColumns + ` FROM obligations
		WHERE client_id = ? ORDER BY kind, period_end`
	return r.queryObligations(ctx, query, clientID)
}

func (r *SQLiteObligationRepo) ListByStage(ctx context.Context, stage domain.StageID) ([]*domain.Obligation, error) {
	query := `SELECT ` + obligationColumns + ` FROM obligations
		WHERE current_stage = ? ORDER BY period_end, id`
	return r.queryObligations(ctx, query, string(stage))
}

func (r *SQLiteObligationRepo) ListUnassignedInStage(ctx context.Context, stage domain.StageID) ([]*domain.Obligation, error) {
	query := `SELECT ` + obligationColumns + ` FROM obligations
		WHERE current_stage = ? AND assigned_reviewer_id IS NULL
		ORDER BY period_end, id`
	return r.queryObligations(ctx, query, string(stage))
}

func (r *SQLiteObligationRepo) ListAwaitingPromotion(ctx context.Context, stage domain.StageID, asOf time.Time) ([]*domain.Obligation, error) {
	query := `SELECT ` + obligationColumns + ` FROM obligations
		WHERE current_stage = ? AND period_end <= ?
		ORDER BY period_end, id`
	return r.queryObligations(ctx, query, string(stage), asOf.Format(dateLayout))
}

func (r *SQLiteObligationRepo) ListRolloverCandidates(ctx context.Context, terminalStage domain.StageID, filedField domain.MilestoneField, cutoff time.Time) ([]*domain.Obligation, error) {
	query := `SELECT ` + aliased(obligationColumns, "o") + `
		FROM obligations o
		JOIN obligation_milestones m
		  ON m.obligation_id = o.id AND m.field = ? AND m.reached_at <= ?
		WHERE o.current_stage = ?
		  AND NOT EXISTS (
			SELECT 1 FROM obligations newer
			WHERE newer.client_id = o.client_id
			  AND newer.kind = o.kind
			  AND newer.period_end > o.period_end
		  )
		ORDER BY o.period_end, o.id`
	return r.queryObligations(ctx, query,
		string(filedField), cutoff.UTC().Format(time.RFC3339), string(terminalStage))
}

func (r *SQLiteObligationRepo) HasOpenInstance(ctx context.Context, clientID string, kind domain.ObligationKind, terminalStage domain.StageID) (bool, error) {
	query := `SELECT COUNT(*) FROM obligations
		WHERE client_id = ? AND kind = ? AND current_stage != ?`
	var count int
	if err := r.db.QueryRowContext(ctx, query, clientID, string(kind), string(terminalStage)).Scan(&count); err != nil {
		return false, fmt.Errorf("checking open instances: %w", err)
	}
	return count > 0, nil
}

func (r *SQLiteObligationRepo) HasNewerSibling(ctx context.Context, clientID string, kind domain.ObligationKind, periodEnd time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM obligations
		WHERE client_id = ? AND kind = ? AND period_end > ?`
	var count int
	if err := r.db.QueryRowContext(ctx, query, clientID, string(kind), periodEnd.Format(dateLayout)).Scan(&count); err != nil {
		return false, fmt.Errorf("checking newer siblings: %w", err)
	}
	return count > 0, nil
}

// UpdateVersioned commits the obligation row only if the stored version
// still equals expectedVersion, then bumps it. Milestone rows are managed
// separately via SetMilestone/ClearMilestones inside the same transaction.
func (r *SQLiteObligationRepo) UpdateVersioned(ctx context.Context, o *domain.Obligation, expectedVersion int) error {
	query := `UPDATE obligations SET period_start = ?, period_end = ?, due_date = ?,
		due_source = ?, due_updated_by = ?, due_updated_at = ?,
		current_stage = ?, assigned_reviewer_id = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, query,
		o.PeriodStart.Format(dateLayout),
		o.PeriodEnd.Format(dateLayout),
		o.DueDate.Format(dateLayout),
		string(o.DueSource),
		o.DueUpdatedBy,
		nullableTimeToString(o.DueUpdatedAt, time.RFC3339),
		string(o.CurrentStage),
		nullableString(o.AssignedReviewerID),
		o.UpdatedAt.Format(time.RFC3339),
		o.ID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("updating obligation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		// Either the row vanished or the version moved underneath us.
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM obligations WHERE id = ?`, o.ID).Scan(&exists); err != nil {
			return fmt.Errorf("checking obligation existence: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("obligation %s: %w", o.ID, ErrNotFound)
		}
		return fmt.Errorf("obligation %s version %d: %w", o.ID, expectedVersion, ErrConcurrentModification)
	}
	o.Version = expectedVersion + 1
	return nil
}

func (r *SQLiteObligationRepo) SetMilestone(ctx context.Context, obligationID string, field domain.MilestoneField, m domain.Milestone) error {
	query := `INSERT INTO obligation_milestones (obligation_id, field, reached_at, actor_id, actor_name)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(obligation_id, field) DO UPDATE
		SET reached_at = excluded.reached_at, actor_id = excluded.actor_id, actor_name = excluded.actor_name`
	_, err := r.db.ExecContext(ctx, query,
		obligationID, string(field), m.ReachedAt.UTC().Format(time.RFC3339), m.ActorID, m.ActorName)
	if err != nil {
		return fmt.Errorf("setting milestone %s: %w", field, err)
	}
	return nil
}

func (r *SQLiteObligationRepo) ClearMilestones(ctx context.Context, obligationID string, fields []domain.MilestoneField) error {
	for _, field := range fields {
		if _, err := r.db.ExecContext(ctx,
			`DELETE FROM obligation_milestones WHERE obligation_id = ? AND field = ?`,
			obligationID, string(field)); err != nil {
			return fmt.Errorf("clearing milestone %s: %w", field, err)
		}
	}
	return nil
}

func (r *SQLiteObligationRepo) queryObligations(ctx context.Context, query string, args ...any) ([]*domain.Obligation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing obligations: %w", err)
	}
	defer rows.Close()

	var obligations []*domain.Obligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		obligations = append(obligations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating obligations: %w", err)
	}
	for _, o := range obligations {
		if err := r.loadMilestones(ctx, o); err != nil {
			return nil, err
		}
	}
	return obligations, nil
}

func (r *SQLiteObligationRepo) loadMilestones(ctx context.Context, o *domain.Obligation) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT field, reached_at, actor_id, actor_name FROM obligation_milestones WHERE obligation_id = ?`, o.ID)
	if err != nil {
		return fmt.Errorf("loading milestones: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var field, reachedAtStr, actorID, actorName string
		if err := rows.Scan(&field, &reachedAtStr, &actorID, &actorName); err != nil {
			return fmt.Errorf("scanning milestone: %w", err)
		}
		reachedAt, err := time.Parse(time.RFC3339, reachedAtStr)
		if err != nil {
			return fmt.Errorf("parsing milestone reached_at: %w", err)
		}
		o.SetMilestone(domain.MilestoneField(field), domain.Milestone{
			ReachedAt: reachedAt,
			ActorID:   actorID,
			ActorName: actorName,
		})
	}
	return rows.Err()
}

func scanObligation(row rowScanner) (*domain.Obligation, error) {
	var o domain.Obligation
	var kindStr, sourceStr, stageStr string
	var periodStartStr, periodEndStr, dueDateStr string
	var dueUpdatedAtStr, reviewerStr sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&o.ID, &o.ClientID, &kindStr, &periodStartStr, &periodEndStr,
		&dueDateStr, &sourceStr, &o.DueUpdatedBy, &dueUpdatedAtStr,
		&stageStr, &reviewerStr, &o.Version, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning obligation: %w", err)
	}

	o.Kind = domain.ObligationKind(kindStr)
	o.DueSource = domain.DueDateSource(sourceStr)
	o.CurrentStage = domain.StageID(stageStr)
	o.DueUpdatedAt = parseNullableTime(dueUpdatedAtStr, time.RFC3339)
	if reviewerStr.Valid && reviewerStr.String != "" {
		rev := reviewerStr.String
		o.AssignedReviewerID = &rev
	}

	var parseErr error
	if o.PeriodStart, parseErr = time.Parse(dateLayout, periodStartStr); parseErr != nil {
		return nil, fmt.Errorf("parsing period_start: %w", parseErr)
	}
	if o.PeriodEnd, parseErr = time.Parse(dateLayout, periodEndStr); parseErr != nil {
		return nil, fmt.Errorf("parsing period_end: %w", parseErr)
	}
	if o.DueDate, parseErr = time.Parse(dateLayout, dueDateStr); parseErr != nil {
		return nil, fmt.Errorf("parsing due_date: %w", parseErr)
	}
	if o.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr); parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	if o.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr); parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return &o, nil
}

// aliased prefixes every column in a canonical column list with the given
// table alias for join queries.
func aliased(columns, alias string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
