package analyticssvc

import (
	"context"
	"time"

	analyticsrepo "librarydesk/repository/analytics"
)

const (
	topBooksLimit  = 10
	activityWindow = 30 * 24 * time.Hour
)

type BookStats = analyticsrepo.BookStats
type FineStats = analyticsrepo.FineStats
type DailyActivity = analyticsrepo.DailyActivity

type Repo interface {
	TopBooks(ctx context.Context, limit int) ([]BookStats, error)
	FineTotals(ctx context.Context) (*FineStats, error)
	DailyActivity(ctx context.Context, since time.Time) ([]DailyActivity, error)
}

// Service is read-only rollups; failures are plain storage errors.
type Service interface {
	BookStats(ctx context.Context) ([]BookStats, error)
	FineStats(ctx context.Context) (*FineStats, error)
	ActivityStats(ctx context.Context) ([]DailyActivity, error)
}

type service struct {
	r   Repo
	now func() time.Time
}

func New(r Repo) Service { return &service{r: r, now: time.Now} }

func (s *service) BookStats(ctx context.Context) ([]BookStats, error) {
	return s.r.TopBooks(ctx, topBooksLimit)
}

func (s *service) FineStats(ctx context.Context) (*FineStats, error) {
	return s.r.FineTotals(ctx)
}

func (s *service) ActivityStats(ctx context.Context) ([]DailyActivity, error) {
	return s.r.DailyActivity(ctx, s.now().UTC().Add(-activityWindow))
}
