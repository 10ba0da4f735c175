package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"telcobridge.dev/gateway/common/logger"
	"telcobridge.dev/gateway/internal/model"
	"telcobridge.dev/gateway/internal/store"
)

// sweepExpired deletes every ACTIVE subscription whose expire time has
// passed. One failing record does not stop the rest of the pass.
func sweepExpired[D any](ctx context.Context, st *store.Store[D], del func(context.Context, string, model.TerminationReason) error) error {
	subs, err := st.List(ctx)
	if err != nil {
		return fmt.Errorf("listing subscriptions: %w", err)
	}

	now := time.Now().UTC()
	for _, sub := range subs {
		if sub.Status != model.StatusActive || !sub.Expired(now) {
			continue
		}
		ctx := logger.WithLogFields(ctx, logger.LogFields{SubscriptionID: logger.Ptr(sub.ID)})
		slog.InfoContext(ctx, "sweeping expired subscription")
		if err := del(ctx, sub.ID, model.TerminationSubscriptionExpired); err != nil {
			slog.ErrorContext(ctx, "failed to delete expired subscription", "error", err)
		}
	}
	return nil
}

func (g *Geofencing) Sweep(ctx context.Context) error {
	return sweepExpired(ctx, g.store, g.Delete)
}

func (r *Roaming) Sweep(ctx context.Context) error {
	return sweepExpired(ctx, r.store, r.Delete)
}

func (r *Reachability) Sweep(ctx context.Context) error {
	return sweepExpired(ctx, r.store, r.Delete)
}

// SweepTarget is one domain's expiry sweep.
type SweepTarget struct {
	Domain string
	Sweep  func(context.Context) error
}

// Sweeper runs each domain's expiry sweep on a fixed interval. A failed pass
// is logged and the schedule keeps running; the sweeper stops only on
// Shutdown.
type Sweeper struct {
	scheduler gocron.Scheduler
}

func NewSweeper(interval time.Duration, targets ...SweepTarget) (*Sweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}

	for _, target := range targets {
		_, err := scheduler.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(func() { runSweep(target) }),
			gocron.WithName("sweep-"+target.Domain),
		)
		if err != nil {
			return nil, fmt.Errorf("scheduling %s sweep: %w", target.Domain, err)
		}
	}

	return &Sweeper{scheduler: scheduler}, nil
}

func runSweep(target SweepTarget) {
	ctx := logger.WithLogFields(context.Background(), logger.LogFields{
		Component: "gateway.subscription.sweeper",
		Domain:    logger.Ptr(target.Domain),
	})
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic in expiry sweep", "panic", r)
		}
	}()
	if err := target.Sweep(ctx); err != nil {
		slog.ErrorContext(ctx, "expiry sweep failed", "error", err)
	}
}

func (s *Sweeper) Start() {
	s.scheduler.Start()
}

func (s *Sweeper) Shutdown() error {
	return s.scheduler.Shutdown()
}
