// Package profit_accrual_worker periodically recomputes accrued profit
// for every user holding active investments and writes it through to
// their cached profile.
package profit_accrual_worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/accrual"
	"github.com/emires65/simpleprofit-dao-trader/pkg/metrics"
)

// Worker drives the accrual engine on a fixed interval
type Worker struct {
	accrualService *accrual.Service
	interval       time.Duration
	logger         *zap.Logger
	stopCh         chan struct{}
}

func NewWorker(accrualService *accrual.Service, interval time.Duration, logger *zap.Logger) *Worker {
	return &Worker{
		accrualService: accrualService,
		interval:       interval,
		logger:         logger,
		stopCh:         make(chan struct{}),
	}
}

// Start begins the worker processing loop. It runs one pass immediately
// so a restart does not leave profits stale for a full interval.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting profit accrual worker",
		zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runPass(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Profit accrual worker stopped (context cancelled)")
			return
		case <-w.stopCh:
			w.logger.Info("Profit accrual worker stopped")
			return
		case <-ticker.C:
			w.runPass(ctx)
		}
	}
}

// Stop signals the worker to stop
func (w *Worker) Stop() {
	close(w.stopCh)
}

func (w *Worker) runPass(ctx context.Context) {
	start := time.Now()

	failures, err := w.accrualService.AccrueAll(ctx, start.UTC())
	duration := time.Since(start)
	metrics.AccrualDuration.Observe(duration.Seconds())

	switch {
	case err != nil:
		metrics.AccrualRunsTotal.WithLabelValues("error").Inc()
		w.logger.Error("Accrual pass aborted",
			zap.Error(err),
			zap.Duration("duration", duration))
	case failures > 0:
		metrics.AccrualRunsTotal.WithLabelValues("partial").Inc()
		w.logger.Warn("Accrual pass completed with failures",
			zap.Int("failures", failures),
			zap.Duration("duration", duration))
	default:
		metrics.AccrualRunsTotal.WithLabelValues("success").Inc()
		w.logger.Debug("Accrual pass completed",
			zap.Duration("duration", duration))
	}
}
