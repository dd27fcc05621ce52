package reservationsvc

import (
	"context"
	"log/slog"
	"time"
)

type SweepRepo interface {
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

type Sweeper interface {
	ExpireDue(ctx context.Context) (int64, error)

	// Run sweeps on every tick until ctx is done.
	Run(ctx context.Context, interval time.Duration)
}

type sweeper struct {
	r   SweepRepo
	log *slog.Logger
}

func NewSweeper(r SweepRepo, log *slog.Logger) Sweeper { return &sweeper{r: r, log: log} }

func (s *sweeper) ExpireDue(ctx context.Context) (int64, error) {
	return s.r.ExpireDue(ctx, time.Now().UTC())
}

func (s *sweeper) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.ExpireDue(ctx)
			if err != nil {
				s.log.Error("reservation sweep failed", "err", err)
				continue
			}
			if n > 0 {
				s.log.Info("expired reservations", "count", n)
			}
		}
	}
}
