// repository/book/repo.go
package bookrepo

import (
	"context"
	"database/sql"

	"librarydesk/model"
)

type Repo interface {
	CreateAuthor(ctx context.Context, name string, bio *string) (int64, error)
	ListAuthors(ctx context.Context) ([]model.Author, error)

	CreateBook(ctx context.Context, title string, authorID *int64, isbn, genre *string, quantity int) (int64, error)
	Exists(ctx context.Context, bookID int64) (bool, error)
	Search(ctx context.Context, p model.SearchParams, callerID int64) ([]model.BookWithAuthor, error)

	// Inventory ledger. Both run inside the caller's transaction.
	DecrementAvailable(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	IncrementAvailable(ctx context.Context, tx *sql.Tx, bookID int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) CreateAuthor(ctx context.Context, name string, bio *string) (int64, error) {
	const q = `
INSERT INTO authors (name, bio)
VALUES ($1,$2)
RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, name, bio).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) ListAuthors(ctx context.Context) ([]model.Author, error) {
	const q = `SELECT id, name, bio FROM authors ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Author
	for rows.Next() {
		var a model.Author
		if err := rows.Scan(&a.ID, &a.Name, &a.Bio); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repo) CreateBook(ctx context.Context, title string, authorID *int64, isbn, genre *string, quantity int) (int64, error) {
	const q = `
INSERT INTO books (title, author_id, isbn, genre, quantity, available)
VALUES ($1,$2,$3,$4,$5,$5)
RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, title, authorID, isbn, genre, quantity).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) Exists(ctx context.Context, bookID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`
	var ok bool
	err := r.db.QueryRowContext(ctx, q, bookID).Scan(&ok)
	return ok, err
}

func (r *repo) Search(ctx context.Context, p model.SearchParams, callerID int64) ([]model.BookWithAuthor, error) {
	const q = `
SELECT
	b.id, b.title, b.author_id, b.isbn, b.genre, b.quantity, b.available, b.created_at,
	a.id, a.name,
	EXISTS (
		SELECT 1 FROM checkouts c
		WHERE c.book_id = b.id AND c.user_id = $4 AND c.returned_at IS NULL
	) AS checked_out_by_me
FROM books b
LEFT JOIN authors a ON a.id = b.author_id
WHERE ($1 = '' OR b.title ILIKE '%' || $1 || '%')
  AND ($2 = '' OR b.genre = $2)
  AND (NOT $3 OR b.available > 0)
ORDER BY b.title`
	rows, err := r.db.QueryContext(ctx, q, p.Query, p.Genre, p.AvailableOnly, callerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BookWithAuthor
	for rows.Next() {
		var b model.BookWithAuthor
		var authorID sql.NullInt64
		var authorName sql.NullString
		if err := rows.Scan(
			&b.ID, &b.Title, &b.AuthorID, &b.ISBN, &b.Genre, &b.Quantity, &b.Available, &b.CreatedAt,
			&authorID, &authorName, &b.CheckedOutByMe,
		); err != nil {
			return nil, err
		}
		if authorID.Valid {
			b.Author = &model.Author{ID: authorID.Int64, Name: authorName.String}
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DecrementAvailable takes one copy off the shelf. The WHERE guard plus the
// affected-row count is what keeps two concurrent checkouts from both
// claiming the last copy. Returns false when no copies are available.
func (r *repo) DecrementAvailable(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
	const q = `
UPDATE books
SET available = available - 1
WHERE id = $1
  AND available > 0`
	res, err := tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return false, err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return aff > 0, nil
}

// IncrementAvailable puts a copy back, capped at the owned quantity.
func (r *repo) IncrementAvailable(ctx context.Context, tx *sql.Tx, bookID int64) error {
	const q = `
UPDATE books
SET available = LEAST(available + 1, quantity)
WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, bookID)
	return err
}
