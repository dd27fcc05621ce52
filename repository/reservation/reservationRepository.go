// repository/reservation/repo.go
package reservationrepo

import (
	"context"
	"database/sql"
	"time"

	"librarydesk/model"
)

type ReservationRow struct {
	ReservationID int64                   `json:"reservation_id"`
	BookID        int64                   `json:"book_id"`
	BookTitle     string                  `json:"book_title"`
	AuthorName    *string                 `json:"author_name,omitempty"`
	ReservedAt    time.Time               `json:"reserved_at"`
	ExpiresAt     time.Time               `json:"expires_at"`
	Status        model.ReservationStatus `json:"status"`
}

type Repo interface {
	HasPending(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error)
	Insert(ctx context.Context, tx *sql.Tx, userID, bookID int64, expires time.Time) (*model.Reservation, error)

	// CancelPending flips a caller-owned pending reservation to cancelled.
	// Returns false when no such row matched.
	CancelPending(ctx context.Context, reservationID, userID int64) (bool, error)
	StatusOf(ctx context.Context, reservationID, userID int64) (model.ReservationStatus, error)

	// FulfillOldestPending promotes the oldest pending reservation for a book
	// inside the return transaction. found is false when the book has none.
	FulfillOldestPending(ctx context.Context, tx *sql.Tx, bookID int64) (reservationID, userID int64, found bool, err error)
	MarkNotified(ctx context.Context, reservationID int64) error

	ExpireDue(ctx context.Context, now time.Time) (int64, error)

	ListMine(ctx context.Context, userID int64) ([]ReservationRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) HasPending(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1 FROM reservations
	WHERE user_id = $1 AND book_id = $2 AND status = 'pending'
)`
	var ok bool
	err := tx.QueryRowContext(ctx, q, userID, bookID).Scan(&ok)
	return ok, err
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, userID, bookID int64, expires time.Time) (*model.Reservation, error) {
	const q = `
INSERT INTO reservations (user_id, book_id, expires_at, status)
VALUES ($1,$2,$3,'pending')
RETURNING id, reserved_at`
	res := &model.Reservation{
		UserID:    userID,
		BookID:    bookID,
		ExpiresAt: expires,
		Status:    model.ReservationPending,
	}
	if err := tx.QueryRowContext(ctx, q, userID, bookID, expires).Scan(&res.ID, &res.ReservedAt); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *repo) CancelPending(ctx context.Context, reservationID, userID int64) (bool, error) {
	const q = `
UPDATE reservations
SET status = 'cancelled'
WHERE id = $1
  AND user_id = $2
  AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, q, reservationID, userID)
	if err != nil {
		return false, err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return aff > 0, nil
}

func (r *repo) StatusOf(ctx context.Context, reservationID, userID int64) (model.ReservationStatus, error) {
	const q = `
SELECT status
FROM reservations
WHERE id = $1 AND user_id = $2`
	var s model.ReservationStatus
	err := r.db.QueryRowContext(ctx, q, reservationID, userID).Scan(&s)
	return s, err
}

func (r *repo) FulfillOldestPending(ctx context.Context, tx *sql.Tx, bookID int64) (int64, int64, bool, error) {
	const q = `
UPDATE reservations
SET status = 'fulfilled'
WHERE id = (
	SELECT id FROM reservations
	WHERE book_id = $1 AND status = 'pending'
	ORDER BY reserved_at
	FOR UPDATE SKIP LOCKED
	LIMIT 1
)
RETURNING id, user_id`
	var id, userID int64
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&id, &userID)
	if err == sql.ErrNoRows {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	return id, userID, true, nil
}

func (r *repo) MarkNotified(ctx context.Context, reservationID int64) error {
	const q = `
UPDATE reservations
SET notification_sent = TRUE
WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, reservationID)
	return err
}

func (r *repo) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	const q = `
UPDATE reservations
SET status = 'expired'
WHERE status = 'pending'
  AND expires_at < $1`
	res, err := r.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repo) ListMine(ctx context.Context, userID int64) ([]ReservationRow, error) {
	const q = `
SELECT
	r.id          AS reservation_id,
	r.book_id     AS book_id,
	b.title       AS book_title,
	a.name        AS author_name,
	r.reserved_at,
	r.expires_at,
	r.status
FROM reservations r
JOIN books b ON b.id = r.book_id
LEFT JOIN authors a ON a.id = b.author_id
WHERE r.user_id = $1
ORDER BY r.reserved_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReservationRow
	for rows.Next() {
		var row ReservationRow
		if err := rows.Scan(
			&row.ReservationID, &row.BookID, &row.BookTitle, &row.AuthorName,
			&row.ReservedAt, &row.ExpiresAt, &row.Status,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
