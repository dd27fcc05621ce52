package checkoutsvc

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

	notifierrepo "librarydesk/repository/notifier"
)

// --- fake sql.DB: transactions are plumbing here, the fakes hold the state ---

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

// --- stateful repo fakes ---

type bookFake struct {
	mu        sync.Mutex
	exists    bool
	available int
	quantity  int
}

func (b *bookFake) Exists(ctx context.Context, bookID int64) (bool, error) {
	return b.exists, nil
}

func (b *bookFake) DecrementAvailable(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.available <= 0 {
		return false, nil
	}
	b.available--
	return true, nil
}

func (b *bookFake) IncrementAvailable(ctx context.Context, tx *sql.Tx, bookID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.available < b.quantity {
		b.available++
	}
	return nil
}

type openLoan struct {
	id     int64
	userID int64
	bookID int64
	due    time.Time
}

type fineRec struct {
	userID     int64
	checkoutID int64
	amount     int64
}

type checkoutFake struct {
	mu     sync.Mutex
	nextID int64
	open   []openLoan
	fines  []fineRec
}

func (f *checkoutFake) HasOpen(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.open {
		if l.userID == userID && l.bookID == bookID {
			return true, nil
		}
	}
	return false, nil
}

func (f *checkoutFake) Insert(ctx context.Context, tx *sql.Tx, userID, bookID int64, due time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.open = append(f.open, openLoan{id: f.nextID, userID: userID, bookID: bookID, due: due})
	return f.nextID, nil
}

func (f *checkoutFake) OldestOpenForUpdate(ctx context.Context, tx *sql.Tx, userID, bookID int64) (int64, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.open {
		if l.userID == userID && l.bookID == bookID {
			return l.id, l.due, nil
		}
	}
	return 0, time.Time{}, sql.ErrNoRows
}

func (f *checkoutFake) MarkReturned(ctx context.Context, tx *sql.Tx, checkoutID int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.open {
		if l.id == checkoutID {
			f.open = append(f.open[:i], f.open[i+1:]...)
			return nil
		}
	}
	return errors.New("checkout not open")
}

func (f *checkoutFake) InsertFine(ctx context.Context, tx *sql.Tx, userID, checkoutID, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fines = append(f.fines, fineRec{userID: userID, checkoutID: checkoutID, amount: amount})
	return nil
}

func (f *checkoutFake) ListMine(ctx context.Context, userID int64) ([]HistoryRow, error) {
	return nil, nil
}

type reservationFake struct {
	mu        sync.Mutex
	pendingID int64
	userID    int64
	notified  []int64
}

func (r *reservationFake) FulfillOldestPending(ctx context.Context, tx *sql.Tx, bookID int64) (int64, int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pendingID == 0 {
		return 0, 0, false, nil
	}
	id, uid := r.pendingID, r.userID
	r.pendingID = 0
	return id, uid, true, nil
}

func (r *reservationFake) MarkNotified(ctx context.Context, reservationID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notified = append(r.notified, reservationID)
	return nil
}

type notifierFake struct {
	mu     sync.Mutex
	events []notifierrepo.Event
	fail   bool
}

func (n *notifierFake) ReservationFulfilled(ctx context.Context, ev notifierrepo.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("webhook down")
	}
	n.events = append(n.events, ev)
	return nil
}

// --- helpers ---

var testPolicy = Policy{
	LoanPeriod:    14 * 24 * time.Hour,
	OverdueUnit:   time.Hour, // compressed unit for tests
	FineRateCents: 50,
}

func newTestService(bf *bookFake, cf *checkoutFake, rf *reservationFake, nf *notifierFake) *service {
	log := slog.New(slog.DiscardHandler)
	s := New(newFakeDB(), cf, bf, rf, nf, testPolicy, log).(*service)
	return s
}

// --- tests ---

func TestCheckout_BookNotFound(t *testing.T) {
	s := newTestService(&bookFake{exists: false}, &checkoutFake{}, &reservationFake{}, &notifierFake{})

	_, err := s.Checkout(context.Background(), 1, 99)
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestCheckout_Unavailable_NoSideEffects(t *testing.T) {
	bf := &bookFake{exists: true, available: 0, quantity: 2}
	cf := &checkoutFake{}
	s := newTestService(bf, cf, &reservationFake{}, &notifierFake{})

	_, err := s.Checkout(context.Background(), 1, 7)
	require.Equal(t, ErrUnavailable, Code(err))
	require.Equal(t, 0, bf.available)
	require.Empty(t, cf.open)
}

func TestCheckout_AlreadyCheckedOut(t *testing.T) {
	bf := &bookFake{exists: true, available: 2, quantity: 2}
	cf := &checkoutFake{}
	s := newTestService(bf, cf, &reservationFake{}, &notifierFake{})

	_, err := s.Checkout(context.Background(), 1, 7)
	require.NoError(t, err)

	_, err = s.Checkout(context.Background(), 1, 7)
	require.Equal(t, ErrAlreadyCheckedOut, Code(err))
	require.Equal(t, 1, bf.available)
	require.Len(t, cf.open, 1)
}

func TestCheckout_Success_SetsDueDate(t *testing.T) {
	bf := &bookFake{exists: true, available: 1, quantity: 1}
	cf := &checkoutFake{}
	s := newTestService(bf, cf, &reservationFake{}, &notifierFake{})

	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return t0 }

	out, err := s.Checkout(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Equal(t, t0.Add(testPolicy.LoanPeriod), out.DueDate)
	require.Equal(t, 0, bf.available)
}

func TestReturn_NoActiveCheckout(t *testing.T) {
	bf := &bookFake{exists: true, available: 1, quantity: 1}
	s := newTestService(bf, &checkoutFake{}, &reservationFake{}, &notifierFake{})

	_, err := s.Return(context.Background(), 1, 7)
	require.Equal(t, ErrNoActiveCheckout, Code(err))
	require.Equal(t, 1, bf.available)
}

func TestReturn_OnTime_NoFine(t *testing.T) {
	bf := &bookFake{exists: true, available: 1, quantity: 1}
	cf := &checkoutFake{}
	s := newTestService(bf, cf, &reservationFake{}, &notifierFake{})

	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return t0 }
	_, err := s.Checkout(context.Background(), 1, 7)
	require.NoError(t, err)

	s.now = func() time.Time { return t0.Add(testPolicy.LoanPeriod) } // exactly on due
	out, err := s.Return(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Zero(t, out.FineAmount)
	require.Empty(t, cf.fines)
	require.Equal(t, 1, bf.available)
}

func TestReturn_Overdue_CreatesFine(t *testing.T) {
	bf := &bookFake{exists: true, available: 1, quantity: 1}
	cf := &checkoutFake{}
	s := newTestService(bf, cf, &reservationFake{}, &notifierFake{})

	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return t0 }
	_, err := s.Checkout(context.Background(), 1, 7)
	require.NoError(t, err)

	// 3.5 overdue units elapse: only full units count.
	late := t0.Add(testPolicy.LoanPeriod).Add(3*testPolicy.OverdueUnit + 30*time.Minute)
	s.now = func() time.Time { return late }

	out, err := s.Return(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Equal(t, int64(3*testPolicy.FineRateCents), out.FineAmount)
	require.Len(t, cf.fines, 1)
	require.Equal(t, out.FineAmount, cf.fines[0].amount)
}

func TestReturn_FulfillsOldestReservation(t *testing.T) {
	bf := &bookFake{exists: true, available: 1, quantity: 1}
	cf := &checkoutFake{}
	rf := &reservationFake{pendingID: 11, userID: 42}
	nf := &notifierFake{}
	s := newTestService(bf, cf, rf, nf)

	_, err := s.Checkout(context.Background(), 1, 7)
	require.NoError(t, err)

	_, err = s.Return(context.Background(), 1, 7)
	require.NoError(t, err)

	require.Len(t, nf.events, 1)
	require.Equal(t, int64(11), nf.events[0].ReservationID)
	require.Equal(t, int64(42), nf.events[0].UserID)
	require.Equal(t, []int64{11}, rf.notified)
}

func TestReturn_NotificationFailureDoesNotFailReturn(t *testing.T) {
	bf := &bookFake{exists: true, available: 1, quantity: 1}
	rf := &reservationFake{pendingID: 11, userID: 42}
	nf := &notifierFake{fail: true}
	s := newTestService(bf, &checkoutFake{}, rf, nf)

	_, err := s.Checkout(context.Background(), 1, 7)
	require.NoError(t, err)

	_, err = s.Return(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Empty(t, rf.notified)
}

func TestConcurrentCheckouts_ExactlyKSucceed(t *testing.T) {
	const copies = 3
	const callers = 8

	bf := &bookFake{exists: true, available: copies, quantity: copies}
	cf := &checkoutFake{}
	s := newTestService(bf, cf, &reservationFake{}, &notifierFake{})

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// distinct users so the per-user guard stays out of the way
			_, errs[i] = s.Checkout(context.Background(), int64(i+1), 7)
		}(i)
	}
	wg.Wait()

	var ok, unavailable int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case Code(err) == ErrUnavailable:
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, copies, ok)
	require.Equal(t, callers-copies, unavailable)
	require.Equal(t, 0, bf.available)
	require.Len(t, cf.open, copies)
}

// The worked example: two copies, three users, one late return.
func TestLendingLifecycle(t *testing.T) {
	bf := &bookFake{exists: true, available: 2, quantity: 2}
	cf := &checkoutFake{}
	s := newTestService(bf, cf, &reservationFake{}, &notifierFake{})

	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return t0 }

	_, err := s.Checkout(context.Background(), 1, 7) // user A
	require.NoError(t, err)
	require.Equal(t, 1, bf.available)

	_, err = s.Checkout(context.Background(), 2, 7) // user B
	require.NoError(t, err)
	require.Equal(t, 0, bf.available)

	_, err = s.Checkout(context.Background(), 3, 7) // user C
	require.Equal(t, ErrUnavailable, Code(err))

	// A returns 10 units late at rate 50.
	s.now = func() time.Time {
		return t0.Add(testPolicy.LoanPeriod).Add(10 * testPolicy.OverdueUnit)
	}
	out, err := s.Return(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Equal(t, int64(500), out.FineAmount)
	require.Equal(t, 1, bf.available)
}

func TestFineAmount(t *testing.T) {
	due := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	unit := 24 * time.Hour

	cases := []struct {
		name string
		ret  time.Time
		want int64
	}{
		{"early", due.Add(-time.Hour), 0},
		{"exactly on due", due, 0},
		{"under one unit", due.Add(23 * time.Hour), 0},
		{"one unit", due.Add(24 * time.Hour), 50},
		{"three and a half units", due.Add(84 * time.Hour), 150},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, FineAmount(tc.ret, due, unit, 50))
		})
	}
}
