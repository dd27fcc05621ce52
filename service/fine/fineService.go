package finesvc

import (
	"context"
	"errors"
	"time"

	finerepo "librarydesk/repository/fine"
)

type ErrCode string

const (
	ErrNotFound ErrCode = "NOT_FOUND"
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

// FineRow = repository shape
type FineRow = finerepo.FineRow

type Repo interface {
	PayPending(ctx context.Context, fineID, userID int64, at time.Time) (bool, error)
	ListMine(ctx context.Context, userID int64) ([]FineRow, error)
}

type Service interface {
	// Pay: pending → paid. A missing, foreign or already-paid fine all fail
	// with NOT_FOUND; the status guard in the update is the idempotency check.
	Pay(ctx context.Context, userID, fineID int64) error

	// MyFines: list fines for a user, newest first.
	MyFines(ctx context.Context, userID int64) ([]FineRow, error)
}

type service struct {
	r   Repo
	now func() time.Time
}

func New(r Repo) Service { return &service{r: r, now: time.Now} }

func (s *service) Pay(ctx context.Context, userID, fineID int64) error {
	ok, err := s.r.PayPending(ctx, fineID, userID, s.now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNotFound)
	}
	return nil
}

func (s *service) MyFines(ctx context.Context, userID int64) ([]FineRow, error) {
	return s.r.ListMine(ctx, userID)
}
