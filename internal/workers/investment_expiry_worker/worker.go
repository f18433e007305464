// Package investment_expiry_worker closes investments whose term has
// elapsed so they stop accruing.
package investment_expiry_worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/investing"
)

const expiryBatchSize = 500

// Worker expires matured investments on a daily schedule
type Worker struct {
	investingService *investing.Service
	schedule         string
	logger           *zap.Logger
	cron             *cron.Cron
}

// NewWorker creates an expiry worker. schedule is a cron expression;
// daily just after midnight UTC is the expected shape ("5 0 * * *").
func NewWorker(investingService *investing.Service, schedule string, logger *zap.Logger) *Worker {
	return &Worker{
		investingService: investingService,
		schedule:         schedule,
		logger:           logger,
		cron:             cron.New(cron.WithLocation(time.UTC)),
	}
}

// Start registers the schedule and runs a catch-up pass immediately, so
// positions that matured while the service was down are closed without
// waiting for the next tick.
func (w *Worker) Start(ctx context.Context) error {
	w.runPass(ctx)

	_, err := w.cron.AddFunc(w.schedule, func() {
		w.runPass(ctx)
	})
	if err != nil {
		return err
	}

	w.cron.Start()
	w.logger.Info("Investment expiry worker started",
		zap.String("schedule", w.schedule))
	return nil
}

// Stop halts the schedule and waits for a running pass to finish
func (w *Worker) Stop() {
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	w.logger.Info("Investment expiry worker stopped")
}

func (w *Worker) runPass(ctx context.Context) {
	for {
		closed, err := w.investingService.ExpireMatured(ctx, time.Now().UTC(), expiryBatchSize)
		if err != nil {
			w.logger.Error("Investment expiry pass failed", zap.Error(err))
			return
		}
		if closed > 0 {
			w.logger.Info("Expired matured investments", zap.Int("closed", closed))
		}
		if closed < expiryBatchSize {
			return
		}
	}
}
