package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/db"
	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
)

// clientColumns is the canonical SELECT column list for clients.
const clientColumns = `id, code, name, vat_quarter_group, year_end_month, year_end_day,
		registry_ref, active, created_at, updated_at`

// SQLiteClientRepo implements ClientRepo using a SQLite database.
type SQLiteClientRepo struct {
	db db.DBTX
}

// NewSQLiteClientRepo creates a new SQLiteClientRepo.
func NewSQLiteClientRepo(conn db.DBTX) *SQLiteClientRepo {
	return &SQLiteClientRepo{db: conn}
}

func (r *SQLiteClientRepo) Create(ctx context.Context, c *domain.Client) error {
	query := `INSERT INTO clients (id, code, name, vat_quarter_group, year_end_month, year_end_day,
		registry_ref, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Code,
		c.Name,
		quarterGroupToValue(c.VATQuarterGroup),
		int(c.YearEndMonth),
		c.YearEndDay,
		c.RegistryRef,
		boolToInt(c.Active),
		c.CreatedAt.Format(time.RFC3339),
		c.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting client: %w", err)
	}
	return nil
}

func (r *SQLiteClientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = ?`
	return r.scanClient(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteClientRepo) GetByCode(ctx context.Context, code string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE code = ?`
	return r.scanClient(r.db.QueryRowContext(ctx, query, code))
}

func (r *SQLiteClientRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY code`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		c, err := r.scanClientRow(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clients: %w", err)
	}
	return clients, nil
}

func (r *SQLiteClientRepo) Update(ctx context.Context, c *domain.Client) error {
	query := `UPDATE clients SET code = ?, name = ?, vat_quarter_group = ?, year_end_month = ?,
		year_end_day = ?, registry_ref = ?, active = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		c.Code,
		c.Name,
		quarterGroupToValue(c.VATQuarterGroup),
		int(c.YearEndMonth),
		c.YearEndDay,
		c.RegistryRef,
		boolToInt(c.Active),
		c.UpdatedAt.Format(time.RFC3339),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating client: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteClientRepo) scanClient(row *sql.Row) (*domain.Client, error) {
	c, err := scanClientFrom(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("client: %w", ErrNotFound)
	}
	return c, err
}

func (r *SQLiteClientRepo) scanClientRow(rows *sql.Rows) (*domain.Client, error) {
	return scanClientFrom(rows)
}

func scanClientFrom(row rowScanner) (*domain.Client, error) {
	var c domain.Client
	var groupStr sql.NullString
	var yearEndMonth, activeInt int
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&c.ID, &c.Code, &c.Name, &groupStr, &yearEndMonth, &c.YearEndDay,
		&c.RegistryRef, &activeInt, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning client: %w", err)
	}

	if groupStr.Valid && groupStr.String != "" {
		g := domain.QuarterGroup(groupStr.String)
		c.VATQuarterGroup = &g
	}
	c.YearEndMonth = time.Month(yearEndMonth)
	c.Active = intToBool(activeInt)

	var parseErr error
	c.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	c.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return &c, nil
}

func quarterGroupToValue(g *domain.QuarterGroup) interface{} {
	if g == nil {
		return nil
	}
	return string(*g)
}
