package jobs

import (
	"context"
	"log/slog"
	"time"
)

const (
	// DefaultGuestCartTTL is how long an untouched guest cart and its history survive (30 days)
	DefaultGuestCartTTL = 30 * 24 * time.Hour

	// DefaultPruneInterval is how often we sweep for stale guest carts (1 hour)
	DefaultPruneInterval = time.Hour

	// DefaultIdleEviction is how long a cart stays in memory without requests (30 minutes)
	DefaultIdleEviction = 30 * time.Minute
)

// SessionPruner deletes persisted guest state older than a cutoff.
type SessionPruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// IdleEvicter drops in-memory carts that have not been requested recently.
type IdleEvicter interface {
	EvictIdle(cutoff time.Time) int
}

type GuestCartPrunerConfig struct {
	TTL          time.Duration
	Interval     time.Duration
	IdleEviction time.Duration
}

type GuestCartPruner struct {
	sessions SessionPruner
	carts    IdleEvicter
	cfg      GuestCartPrunerConfig
	now      func() time.Time
	ticker   *time.Ticker
	done     chan bool
	stopped  chan struct{}
}

func NewGuestCartPruner(sessions SessionPruner, carts IdleEvicter, cfg GuestCartPrunerConfig) *GuestCartPruner {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultGuestCartTTL
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPruneInterval
	}
	if cfg.IdleEviction <= 0 {
		cfg.IdleEviction = DefaultIdleEviction
	}
	return &GuestCartPruner{
		sessions: sessions,
		carts:    carts,
		cfg:      cfg,
		now:      time.Now,
		done:     make(chan bool),
		stopped:  make(chan struct{}),
	}
}

// Start begins the guest cart pruning background job
func (p *GuestCartPruner) Start(ctx context.Context) {
	slog.Info("starting guest cart pruner", "interval", p.cfg.Interval, "ttl", p.cfg.TTL)

	// Run immediately on start
	p.RunOnce(ctx)

	p.ticker = time.NewTicker(p.cfg.Interval)

	go func() {
		defer close(p.stopped)
		for {
			select {
			case <-p.ticker.C:
				p.RunOnce(ctx)
			case <-ctx.Done():
				slog.Info("guest cart pruner stopped", "reason", ctx.Err())
				return
			case <-p.done:
				slog.Info("guest cart pruner stopped")
				return
			}
		}
	}()
}

// Stop stops the background job and waits for it to exit
func (p *GuestCartPruner) Stop() {
	if p.ticker == nil {
		return
	}
	p.ticker.Stop()
	select {
	case <-p.stopped:
	default:
		close(p.done)
		<-p.stopped
	}
}

// RunOnce performs a single sweep. Failures are logged; the next tick retries.
func (p *GuestCartPruner) RunOnce(ctx context.Context) {
	now := p.now()

	if p.carts != nil {
		if n := p.carts.EvictIdle(now.Add(-p.cfg.IdleEviction)); n > 0 {
			slog.Debug("evicted idle carts from memory", "count", n)
		}
	}

	removed, err := p.sessions.PruneBefore(ctx, now.Add(-p.cfg.TTL))
	if err != nil {
		slog.Error("failed to prune stale guest carts", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("pruned stale guest carts", "rows", removed)
	}
}
