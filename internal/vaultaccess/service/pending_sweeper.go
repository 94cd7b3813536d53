package service

import (
	"context"
	"log"
	"time"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store"
)

// PendingSweeper periodically fails face records stuck in PENDING —
// the reconciliation path for crashes between record creation and the
// comparison call, and for verdicts that never arrived. It runs as a
// background goroutine and is safe to stop via its context or the
// Stop method.
//
// A MaxAge of 0 disables sweeping entirely.
type PendingSweeper struct {
	faces    store.FaceStore
	maxAge   time.Duration
	interval time.Duration
	logger   *log.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// SweeperConfig holds the parameters for NewPendingSweeper.
type SweeperConfig struct {
	// MaxAge is how long a record may stay PENDING before the sweep
	// fails it. 0 disables the sweeper.
	MaxAge time.Duration

	// Interval is how often the sweep runs. Defaults to 30s.
	Interval time.Duration
}

// NewPendingSweeper creates a sweeper but does not start it.
// Call Start to begin the background loop.
func NewPendingSweeper(fs store.FaceStore, cfg SweeperConfig, logger *log.Logger) *PendingSweeper {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &PendingSweeper{
		faces:    fs,
		maxAge:   cfg.MaxAge,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins the background sweep loop. It runs an immediate sweep
// on startup to reconcile records left PENDING by a previous run, then
// repeats on the configured interval. The loop exits when ctx is
// cancelled or Stop is called.
func (p *PendingSweeper) Start(ctx context.Context) {
	if p.maxAge <= 0 {
		p.logger.Printf("pending sweeper disabled (max age=0)")
		close(p.done)
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)

	go p.loop(ctx)

	p.logger.Printf("pending sweeper started (max age=%s, interval=%s)", p.maxAge, p.interval)
}

// Stop signals the sweeper to exit and waits for it to finish.
func (p *PendingSweeper) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	<-p.done
}

func (p *PendingSweeper) loop(ctx context.Context) {
	defer close(p.done)

	p.sweep(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *PendingSweeper) sweep(ctx context.Context) {
	now := time.Now().UTC()
	cutoff := now.Add(-p.maxAge)
	failed, err := p.faces.FailStale(ctx, cutoff, now)
	if err != nil {
		p.logger.Printf("pending sweep error: %v", err)
		return
	}
	if failed > 0 {
		p.logger.Printf("pending sweep: failed %d records older than %s",
			failed, cutoff.Format(time.RFC3339))
	}
}
