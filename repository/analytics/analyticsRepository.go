// repository/analytics/repo.go
package analyticsrepo

import (
	"context"
	"database/sql"
	"time"
)

type BookStats struct {
	Title        string `json:"title"`
	Checkouts    int64  `json:"checkouts"`
	Reservations int64  `json:"reservations"`
}

type MonthlyAmount struct {
	Month  string `json:"month"`
	Amount int64  `json:"amount"`
}

type FineStats struct {
	TotalAmount   int64           `json:"total_amount"`
	PaidAmount    int64           `json:"paid_amount"`
	PendingAmount int64           `json:"pending_amount"`
	MonthlyStats  []MonthlyAmount `json:"monthly_stats"`
}

type DailyActivity struct {
	Date         string `json:"date"`
	Checkouts    int64  `json:"checkouts"`
	Returns      int64  `json:"returns"`
	Reservations int64  `json:"reservations"`
}

type Repo interface {
	TopBooks(ctx context.Context, limit int) ([]BookStats, error)
	FineTotals(ctx context.Context) (*FineStats, error)
	DailyActivity(ctx context.Context, since time.Time) ([]DailyActivity, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) TopBooks(ctx context.Context, limit int) ([]BookStats, error) {
	const q = `
SELECT
	b.title,
	COUNT(DISTINCT c.id) AS checkouts,
	COUNT(DISTINCT res.id) AS reservations
FROM books b
LEFT JOIN checkouts c ON c.book_id = b.id
LEFT JOIN reservations res ON res.book_id = b.id
GROUP BY b.id, b.title
ORDER BY checkouts DESC, b.title
LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BookStats
	for rows.Next() {
		var s BookStats
		if err := rows.Scan(&s.Title, &s.Checkouts, &s.Reservations); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repo) FineTotals(ctx context.Context) (*FineStats, error) {
	const totals = `
SELECT
	COALESCE(SUM(amount), 0) AS total,
	COALESCE(SUM(amount) FILTER (WHERE status = 'paid'), 0) AS paid,
	COALESCE(SUM(amount) FILTER (WHERE status = 'pending'), 0) AS pending
FROM fines`
	st := &FineStats{}
	if err := r.db.QueryRowContext(ctx, totals).Scan(&st.TotalAmount, &st.PaidAmount, &st.PendingAmount); err != nil {
		return nil, err
	}

	const monthly = `
SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month,
	COALESCE(SUM(amount), 0) AS amount
FROM fines
GROUP BY 1
ORDER BY 1`
	rows, err := r.db.QueryContext(ctx, monthly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m MonthlyAmount
		if err := rows.Scan(&m.Month, &m.Amount); err != nil {
			return nil, err
		}
		st.MonthlyStats = append(st.MonthlyStats, m)
	}
	return st, rows.Err()
}

func (r *repo) DailyActivity(ctx context.Context, since time.Time) ([]DailyActivity, error) {
	const q = `
SELECT day, SUM(checkouts), SUM(returns), SUM(reservations)
FROM (
	SELECT to_char(checked_out_at, 'YYYY-MM-DD') AS day, 1 AS checkouts, 0 AS returns, 0 AS reservations
	FROM checkouts WHERE checked_out_at >= $1
	UNION ALL
	SELECT to_char(returned_at, 'YYYY-MM-DD'), 0, 1, 0
	FROM checkouts WHERE returned_at IS NOT NULL AND returned_at >= $1
	UNION ALL
	SELECT to_char(reserved_at, 'YYYY-MM-DD'), 0, 0, 1
	FROM reservations WHERE reserved_at >= $1
) activity
GROUP BY day
ORDER BY day`
	rows, err := r.db.QueryContext(ctx, q, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailyActivity
	for rows.Next() {
		var d DailyActivity
		if err := rows.Scan(&d.Date, &d.Checkouts, &d.Returns, &d.Reservations); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
