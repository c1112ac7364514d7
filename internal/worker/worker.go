package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/util"
)

// Evictable is a ledger backend that supports bulk expiry. The Redis
// backend expires keys natively and never needs a sweeper.
type Evictable interface {
	EvictBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// ExpiryWorker drops pending orders whose Pix was never paid. Without it
// an abandoned order would sit in the ledger forever.
type ExpiryWorker struct {
	ledger   Evictable
	ttl      time.Duration
	interval time.Duration
	logger   *zap.Logger
}

// NewExpiryWorker creates a new expiry worker
func NewExpiryWorker(ledger Evictable, ttl, interval time.Duration) *ExpiryWorker {
	return &ExpiryWorker{
		ledger:   ledger,
		ttl:      ttl,
		interval: interval,
		logger:   util.GetLogger(),
	}
}

// Start sweeps on a fixed interval until ctx is cancelled.
func (w *ExpiryWorker) Start(ctx context.Context) {
	w.logger.Info("Starting expiry worker",
		zap.Duration("ttl", w.ttl),
		zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping expiry worker")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	evicted, err := w.ledger.EvictBefore(ctx, time.Now().Add(-w.ttl))
	if err != nil {
		w.logger.Error("Expiry sweep failed", zap.Error(err))
		return
	}
	if evicted > 0 {
		util.PendingOrdersEvictedTotal.Add(float64(evicted))
		w.logger.Info("Evicted expired pending orders", zap.Int("count", evicted))
	}
}
