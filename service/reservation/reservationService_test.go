package reservationsvc

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"librarydesk/model"
)

// --- fake sql.DB (state lives in the repo fake) ---

type fakeDriver struct{}
type fakeConn struct{}
type fakeTx struct{}
type fakeConnector struct{}

func (fakeDriver) Open(string) (driver.Conn, error)  { return fakeConn{}, nil }
func (fakeConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("unexpected Prepare") }
func (fakeConn) Close() error                        { return nil }
func (fakeConn) Begin() (driver.Tx, error)           { return fakeTx{}, nil }
func (fakeTx) Commit() error                         { return nil }
func (fakeTx) Rollback() error                       { return nil }

func (fakeConnector) Connect(context.Context) (driver.Conn, error) { return fakeConn{}, nil }
func (fakeConnector) Driver() driver.Driver                        { return fakeDriver{} }

func newFakeDB() *sql.DB { return sql.OpenDB(fakeConnector{}) }

// --- fakes ---

type bookFake struct{ exists bool }

func (b *bookFake) Exists(ctx context.Context, bookID int64) (bool, error) {
	return b.exists, nil
}

type storedRes struct {
	id      int64
	userID  int64
	bookID  int64
	status  model.ReservationStatus
	expires time.Time
}

type repoFake struct {
	mu     sync.Mutex
	nextID int64
	rows   []*storedRes
}

func (r *repoFake) HasPending(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.userID == userID && row.bookID == bookID && row.status == model.ReservationPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *repoFake) Insert(ctx context.Context, tx *sql.Tx, userID, bookID int64, expires time.Time) (*model.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.rows = append(r.rows, &storedRes{
		id: r.nextID, userID: userID, bookID: bookID,
		status: model.ReservationPending, expires: expires,
	})
	return &model.Reservation{
		ID: r.nextID, UserID: userID, BookID: bookID,
		ExpiresAt: expires, Status: model.ReservationPending,
	}, nil
}

func (r *repoFake) CancelPending(ctx context.Context, reservationID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.id == reservationID && row.userID == userID && row.status == model.ReservationPending {
			row.status = model.ReservationCancelled
			return true, nil
		}
	}
	return false, nil
}

func (r *repoFake) StatusOf(ctx context.Context, reservationID, userID int64) (model.ReservationStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.id == reservationID && row.userID == userID {
			return row.status, nil
		}
	}
	return "", sql.ErrNoRows
}

func (r *repoFake) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, row := range r.rows {
		if row.status == model.ReservationPending && row.expires.Before(now) {
			row.status = model.ReservationExpired
			n++
		}
	}
	return n, nil
}

func (r *repoFake) ListMine(ctx context.Context, userID int64) ([]ReservationRow, error) {
	return nil, nil
}

const holdWindow = 72 * time.Hour

func newTestService(bf *bookFake, rf *repoFake) *service {
	return New(newFakeDB(), rf, bf, holdWindow).(*service)
}

// --- tests ---

func TestReserve_BookNotFound(t *testing.T) {
	s := newTestService(&bookFake{exists: false}, &repoFake{})

	_, err := s.Reserve(context.Background(), 1, 99)
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestReserve_Success_SetsExpiry(t *testing.T) {
	rf := &repoFake{}
	s := newTestService(&bookFake{exists: true}, rf)

	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return t0 }

	res, err := s.Reserve(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Equal(t, model.ReservationPending, res.Status)
	require.Equal(t, t0.Add(holdWindow), res.ExpiresAt)
}

func TestReserve_DuplicatePending(t *testing.T) {
	rf := &repoFake{}
	s := newTestService(&bookFake{exists: true}, rf)

	_, err := s.Reserve(context.Background(), 1, 7)
	require.NoError(t, err)

	_, err = s.Reserve(context.Background(), 1, 7)
	require.Equal(t, ErrDuplicateRes, Code(err))
	require.Len(t, rf.rows, 1)
}

func TestReserve_SameBookDifferentUsers(t *testing.T) {
	rf := &repoFake{}
	s := newTestService(&bookFake{exists: true}, rf)

	_, err := s.Reserve(context.Background(), 1, 7)
	require.NoError(t, err)
	_, err = s.Reserve(context.Background(), 2, 7)
	require.NoError(t, err)
	require.Len(t, rf.rows, 2)
}

func TestCancel_Lifecycle(t *testing.T) {
	rf := &repoFake{}
	s := newTestService(&bookFake{exists: true}, rf)

	res, err := s.Reserve(context.Background(), 1, 7)
	require.NoError(t, err)

	require.NoError(t, s.Cancel(context.Background(), 1, res.ID))

	// second cancel: row exists but is no longer pending
	err = s.Cancel(context.Background(), 1, res.ID)
	require.Equal(t, ErrInvalidState, Code(err))
}

func TestCancel_NotFoundAndNotOwner(t *testing.T) {
	rf := &repoFake{}
	s := newTestService(&bookFake{exists: true}, rf)

	err := s.Cancel(context.Background(), 1, 12345)
	require.Equal(t, ErrNotFound, Code(err))

	res, err2 := s.Reserve(context.Background(), 1, 7)
	require.NoError(t, err2)

	// another user's reservation looks like it does not exist
	err = s.Cancel(context.Background(), 2, res.ID)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestSweeper_ExpiresOnlyDuePending(t *testing.T) {
	rf := &repoFake{}
	s := newTestService(&bookFake{exists: true}, rf)

	fresh, err := s.Reserve(context.Background(), 1, 7)
	require.NoError(t, err)
	stale, err := s.Reserve(context.Background(), 2, 7)
	require.NoError(t, err)

	// age the second reservation past its window
	rf.rows[1].expires = time.Now().UTC().Add(-time.Minute)

	sw := NewSweeper(rf, slog.New(slog.DiscardHandler))
	n, err := sw.ExpireDue(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	st, err := rf.StatusOf(context.Background(), stale.ID, 2)
	require.NoError(t, err)
	require.Equal(t, model.ReservationExpired, st)

	st, err = rf.StatusOf(context.Background(), fresh.ID, 1)
	require.NoError(t, err)
	require.Equal(t, model.ReservationPending, st)
}
