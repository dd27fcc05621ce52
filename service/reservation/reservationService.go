package reservationsvc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"librarydesk/model"
	reservationrepo "librarydesk/repository/reservation"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound ErrCode = "BOOK_NOT_FOUND"
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrDuplicateRes ErrCode = "DUPLICATE_RESERVATION"
	ErrInvalidState ErrCode = "INVALID_STATE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// ReservationRow = repository shape
type ReservationRow = reservationrepo.ReservationRow

type BookRepo interface {
	Exists(ctx context.Context, bookID int64) (bool, error)
}

type Repo interface {
	HasPending(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error)
	Insert(ctx context.Context, tx *sql.Tx, userID, bookID int64, expires time.Time) (*model.Reservation, error)
	CancelPending(ctx context.Context, reservationID, userID int64) (bool, error)
	StatusOf(ctx context.Context, reservationID, userID int64) (model.ReservationStatus, error)
	ListMine(ctx context.Context, userID int64) ([]ReservationRow, error)
}

type Service interface {
	// Reserve: place a pending hold. Availability is deliberately not
	// required to be zero; users may queue for a book they expect to be gone.
	Reserve(ctx context.Context, userID, bookID int64) (*model.Reservation, error)

	// Cancel: pending → cancelled, caller-owned only.
	Cancel(ctx context.Context, userID, reservationID int64) error

	// MyReservations: list holds for a user with book and author.
	MyReservations(ctx context.Context, userID int64) ([]ReservationRow, error)
}

// ----- Service implementation -----

type service struct {
	db *sql.DB
	r  Repo
	br BookRepo

	holdWindow time.Duration
	now        func() time.Time
}

func New(db *sql.DB, r Repo, br BookRepo, holdWindow time.Duration) Service {
	return &service{db: db, r: r, br: br, holdWindow: holdWindow, now: time.Now}
}

func (s *service) Reserve(ctx context.Context, userID, bookID int64) (*model.Reservation, error) {
	exists, err := s.br.Exists(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, makeErr(ErrBookNotFound)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	pending, err := s.r.HasPending(ctx, tx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if pending {
		err = makeErr(ErrDuplicateRes)
		return nil, err
	}

	expires := s.now().UTC().Add(s.holdWindow)
	res, err := s.r.Insert(ctx, tx, userID, bookID, expires)
	if err != nil {
		// The partial unique index catches the race the in-tx check cannot.
		if isUniqueViolation(err) {
			err = makeErr(ErrDuplicateRes)
		}
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) Cancel(ctx context.Context, userID, reservationID int64) error {
	ok, err := s.r.CancelPending(ctx, reservationID, userID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	// Nothing matched: missing/foreign row vs. wrong status.
	if _, err := s.r.StatusOf(ctx, reservationID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return makeErr(ErrInvalidState)
}

func (s *service) MyReservations(ctx context.Context, userID int64) ([]ReservationRow, error) {
	return s.r.ListMine(ctx, userID)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
