package checkoutsvc

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	checkoutrepo "librarydesk/repository/checkout"
	notifierrepo "librarydesk/repository/notifier"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound      ErrCode = "BOOK_NOT_FOUND"
	ErrUnavailable       ErrCode = "UNAVAILABLE"
	ErrAlreadyCheckedOut ErrCode = "ALREADY_CHECKED_OUT"
	ErrNoActiveCheckout  ErrCode = "NO_ACTIVE_CHECKOUT"
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

// dto

type Created struct {
	CheckoutID int64
	DueDate    time.Time
}

type Returned struct {
	CheckoutID int64
	ReturnedAt time.Time
	// FineAmount is zero when the book came back on time.
	FineAmount int64
}

// HistoryRow = repository shape
type HistoryRow = checkoutrepo.HistoryRow

// Policy holds the lending configuration constants.
type Policy struct {
	LoanPeriod    time.Duration
	OverdueUnit   time.Duration
	FineRateCents int64
}

type BookRepo interface {
	Exists(ctx context.Context, bookID int64) (bool, error)
	DecrementAvailable(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	IncrementAvailable(ctx context.Context, tx *sql.Tx, bookID int64) error
}

type Repo interface {
	HasOpen(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error)
	Insert(ctx context.Context, tx *sql.Tx, userID, bookID int64, due time.Time) (int64, error)
	OldestOpenForUpdate(ctx context.Context, tx *sql.Tx, userID, bookID int64) (int64, time.Time, error)
	MarkReturned(ctx context.Context, tx *sql.Tx, checkoutID int64, at time.Time) error
	InsertFine(ctx context.Context, tx *sql.Tx, userID, checkoutID, amount int64) error
	ListMine(ctx context.Context, userID int64) ([]HistoryRow, error)
}

type ReservationRepo interface {
	FulfillOldestPending(ctx context.Context, tx *sql.Tx, bookID int64) (reservationID, userID int64, found bool, err error)
	MarkNotified(ctx context.Context, reservationID int64) error
}

type Service interface {
	// Checkout: claim one copy and open a loan (all-or-nothing).
	Checkout(ctx context.Context, userID, bookID int64) (*Created, error)

	// Return: close the open loan, restock the copy, assess any overdue fine
	// and promote the oldest pending reservation in one transaction.
	Return(ctx context.Context, userID, bookID int64) (*Returned, error)

	// MyCheckouts: list loans for a user, open ones first.
	MyCheckouts(ctx context.Context, userID int64) ([]HistoryRow, error)
}

// ----- Service implementation -----

type service struct {
	db  *sql.DB
	r   Repo
	br  BookRepo
	rr  ReservationRepo
	n   notifierrepo.Repo
	p   Policy
	log *slog.Logger

	now func() time.Time
}

func New(db *sql.DB, r Repo, br BookRepo, rr ReservationRepo, n notifierrepo.Repo, p Policy, log *slog.Logger) Service {
	return &service{db: db, r: r, br: br, rr: rr, n: n, p: p, log: log, now: time.Now}
}

func (s *service) Checkout(ctx context.Context, userID, bookID int64) (*Created, error) {
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

	open, err := s.r.HasOpen(ctx, tx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if open {
		err = makeErr(ErrAlreadyCheckedOut)
		return nil, err
	}

	got, err := s.br.DecrementAvailable(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if !got {
		err = makeErr(ErrUnavailable)
		return nil, err
	}

	due := s.now().UTC().Add(s.p.LoanPeriod)
	id, err := s.r.Insert(ctx, tx, userID, bookID, due)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &Created{CheckoutID: id, DueDate: due}, nil
}

func (s *service) Return(ctx context.Context, userID, bookID int64) (*Returned, error) {
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

	checkoutID, due, err := s.r.OldestOpenForUpdate(ctx, tx, userID, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = makeErr(ErrNoActiveCheckout)
		}
		return nil, err
	}

	returnedAt := s.now().UTC()
	if err = s.r.MarkReturned(ctx, tx, checkoutID, returnedAt); err != nil {
		return nil, err
	}
	if err = s.br.IncrementAvailable(ctx, tx, bookID); err != nil {
		return nil, err
	}

	fine := FineAmount(returnedAt, due, s.p.OverdueUnit, s.p.FineRateCents)
	if fine > 0 {
		if err = s.r.InsertFine(ctx, tx, userID, checkoutID, fine); err != nil {
			return nil, err
		}
	}

	resID, resUserID, fulfilled, err := s.rr.FulfillOldestPending(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	if fulfilled {
		s.notifyFulfilled(ctx, notifierrepo.Event{
			ReservationID: resID,
			UserID:        resUserID,
			BookID:        bookID,
		})
	}
	return &Returned{CheckoutID: checkoutID, ReturnedAt: returnedAt, FineAmount: fine}, nil
}

// notifyFulfilled is best-effort: the return already committed, a lost
// notification must not fail it.
func (s *service) notifyFulfilled(ctx context.Context, ev notifierrepo.Event) {
	if s.n == nil {
		return
	}
	if err := s.n.ReservationFulfilled(ctx, ev); err != nil {
		s.log.Warn("reservation notification failed", "reservation_id", ev.ReservationID, "err", err)
		return
	}
	if err := s.rr.MarkNotified(ctx, ev.ReservationID); err != nil {
		s.log.Warn("mark notified failed", "reservation_id", ev.ReservationID, "err", err)
	}
}

func (s *service) MyCheckouts(ctx context.Context, userID int64) ([]HistoryRow, error) {
	return s.r.ListMine(ctx, userID)
}

// FineAmount computes the fine in cents for a return at returnedAt against
// dueDate: full overdue units elapsed times the per-unit rate, zero when the
// book came back on or before the due date.
func FineAmount(returnedAt, dueDate time.Time, unit time.Duration, rateCents int64) int64 {
	if unit <= 0 || !returnedAt.After(dueDate) {
		return 0
	}
	units := int64(returnedAt.Sub(dueDate) / unit)
	return units * rateCents
}
