// repository/checkout/repo.go
package checkoutrepo

import (
	"context"
	"database/sql"
	"time"
)

type HistoryRow struct {
	CheckoutID   int64      `json:"checkout_id"`
	BookID       int64      `json:"book_id"`
	BookTitle    string     `json:"book_title"`
	CheckedOutAt time.Time  `json:"checked_out_at"`
	DueDate      time.Time  `json:"due_date"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`
}

type Repo interface {
	HasOpen(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error)
	Insert(ctx context.Context, tx *sql.Tx, userID, bookID int64, due time.Time) (int64, error)

	// OldestOpenForUpdate locks the row so a concurrent return of the same
	// checkout blocks until this transaction finishes.
	OldestOpenForUpdate(ctx context.Context, tx *sql.Tx, userID, bookID int64) (id int64, due time.Time, err error)
	MarkReturned(ctx context.Context, tx *sql.Tx, checkoutID int64, at time.Time) error

	InsertFine(ctx context.Context, tx *sql.Tx, userID, checkoutID, amount int64) error

	ListMine(ctx context.Context, userID int64) ([]HistoryRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) HasOpen(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1 FROM checkouts
	WHERE user_id = $1 AND book_id = $2 AND returned_at IS NULL
)`
	var ok bool
	err := tx.QueryRowContext(ctx, q, userID, bookID).Scan(&ok)
	return ok, err
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, userID, bookID int64, due time.Time) (int64, error) {
	const q = `
INSERT INTO checkouts (user_id, book_id, due_date)
VALUES ($1,$2,$3)
RETURNING id`
	var id int64
	if err := tx.QueryRowContext(ctx, q, userID, bookID, due).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) OldestOpenForUpdate(ctx context.Context, tx *sql.Tx, userID, bookID int64) (int64, time.Time, error) {
	const q = `
SELECT id, due_date
FROM checkouts
WHERE user_id = $1
  AND book_id = $2
  AND returned_at IS NULL
ORDER BY checked_out_at
FOR UPDATE
LIMIT 1`
	var id int64
	var due time.Time
	err := tx.QueryRowContext(ctx, q, userID, bookID).Scan(&id, &due)
	return id, due, err
}

func (r *repo) MarkReturned(ctx context.Context, tx *sql.Tx, checkoutID int64, at time.Time) error {
	const q = `
UPDATE checkouts
SET returned_at = $2
WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, checkoutID, at)
	return err
}

func (r *repo) InsertFine(ctx context.Context, tx *sql.Tx, userID, checkoutID, amount int64) error {
	const q = `
INSERT INTO fines (user_id, checkout_id, amount, status)
VALUES ($1,$2,$3,'pending')`
	_, err := tx.ExecContext(ctx, q, userID, checkoutID, amount)
	return err
}

func (r *repo) ListMine(ctx context.Context, userID int64) ([]HistoryRow, error) {
	const q = `
SELECT
	c.id           AS checkout_id,
	c.book_id      AS book_id,
	b.title        AS book_title,
	c.checked_out_at,
	c.due_date,
	c.returned_at
FROM checkouts c
JOIN books b ON b.id = c.book_id
WHERE c.user_id = $1
ORDER BY (c.returned_at IS NULL) DESC, c.checked_out_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		var h HistoryRow
		if err := rows.Scan(
			&h.CheckoutID, &h.BookID, &h.BookTitle,
			&h.CheckedOutAt, &h.DueDate, &h.ReturnedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
