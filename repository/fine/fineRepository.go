// repository/fine/repo.go
package finerepo

import (
	"context"
	"database/sql"
	"time"

	"librarydesk/model"
)

type FineRow struct {
	FineID       int64            `json:"fine_id"`
	Amount       int64            `json:"amount"`
	Status       model.FineStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	PaidAt       *time.Time       `json:"paid_at,omitempty"`
	CheckoutID   int64            `json:"checkout_id"`
	BookID       int64            `json:"book_id"`
	BookTitle    string           `json:"book_title"`
	CheckedOutAt time.Time        `json:"checked_out_at"`
	DueDate      time.Time        `json:"due_date"`
	ReturnedAt   *time.Time       `json:"returned_at,omitempty"`
}

type Repo interface {
	// PayPending settles a caller-owned pending fine. Returns false when no
	// row matched: missing, foreign, or already paid all look the same.
	PayPending(ctx context.Context, fineID, userID int64, at time.Time) (bool, error)

	ListMine(ctx context.Context, userID int64) ([]FineRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) PayPending(ctx context.Context, fineID, userID int64, at time.Time) (bool, error) {
	const q = `
UPDATE fines
SET status = 'paid',
	paid_at = $3
WHERE id = $1
  AND user_id = $2
  AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, q, fineID, userID, at)
	if err != nil {
		return false, err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return aff > 0, nil
}

func (r *repo) ListMine(ctx context.Context, userID int64) ([]FineRow, error) {
	const q = `
SELECT
	f.id          AS fine_id,
	f.amount      AS amount,
	f.status      AS status,
	f.created_at  AS created_at,
	f.paid_at     AS paid_at,
	c.id          AS checkout_id,
	b.id          AS book_id,
	b.title       AS book_title,
	c.checked_out_at,
	c.due_date,
	c.returned_at
FROM fines f
JOIN checkouts c ON c.id = f.checkout_id
JOIN books b ON b.id = c.book_id
WHERE f.user_id = $1
ORDER BY f.created_at DESC, f.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FineRow
	for rows.Next() {
		var f FineRow
		if err := rows.Scan(
			&f.FineID, &f.Amount, &f.Status, &f.CreatedAt, &f.PaidAt,
			&f.CheckoutID, &f.BookID, &f.BookTitle,
			&f.CheckedOutAt, &f.DueDate, &f.ReturnedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
