package bills

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/billboard/internal/client/models"
	"github.com/dmitrijs2005/billboard/internal/common"
	"github.com/dmitrijs2005/billboard/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const upsertBill = `
	INSERT INTO bills (id, bill_number, title, summary, seen_at)
	VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
		bill_number = COALESCE(excluded.bill_number, bills.bill_number),
		title       = excluded.title,
		summary     = excluded.summary,
		seen_at     = excluded.seen_at
`

// UpsertMany stores bills in one transaction when the repository holds a
// *sql.DB, or directly on the given DBTX otherwise.
func (r *SQLiteRepository) UpsertMany(ctx context.Context, bills []models.Bill) error {
	if len(bills) == 0 {
		return nil
	}

	write := func(ctx context.Context, tx dbx.DBTX) error {
		for _, b := range bills {
			var number sql.NullString
			if b.Number != nil {
				number = sql.NullString{String: *b.Number, Valid: true}
			}
			if _, err := tx.ExecContext(ctx, upsertBill, b.ID, number, b.Title, b.Summary); err != nil {
				return fmt.Errorf("failed to upsert bill %d: %w", b.ID, err)
			}
		}
		return nil
	}

	if db, ok := r.db.(*sql.DB); ok {
		return dbx.WithTx(ctx, db, nil, write)
	}
	return write(ctx, r.db)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Bill, error) {
	var (
		b      models.Bill
		number sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, bill_number, title, summary FROM bills WHERE id = ?`, id).
		Scan(&b.ID, &number, &b.Title, &b.Summary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill %d: %w", id, err)
	}
	if number.Valid {
		b.Number = &number.String
	}
	return &b, nil
}

// List returns the most recently seen bills first. A non-positive limit
// returns all of them.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]models.Bill, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, bill_number, title, summary
		FROM bills
		ORDER BY seen_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	result := []models.Bill{}
	for rows.Next() {
		var (
			b      models.Bill
			number sql.NullString
		)
		if err := rows.Scan(&b.ID, &number, &b.Title, &b.Summary); err != nil {
			return nil, fmt.Errorf("failed to scan bill row: %w", err)
		}
		if number.Valid {
			n := number.String
			b.Number = &n
		}
		result = append(result, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bill rows: %w", err)
	}

	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bills`); err != nil {
		return fmt.Errorf("failed to clear bills: %w", err)
	}
	return nil
}
