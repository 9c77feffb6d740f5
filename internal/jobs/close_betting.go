package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fitcoin-challenge/internal/metrics"
	"fitcoin-challenge/pkg/logger"
)

const closeBettingJobName = "close_betting"

// OpenWagerCloser refunds open wagers once the challenge has ended
type OpenWagerCloser interface {
	CloseOpenWagers(ctx context.Context) (int, error)
}

// CloseBettingJob refunds and cancels unmatched wagers after the challenge end date
type CloseBettingJob struct {
	wagers  OpenWagerCloser
	timeout time.Duration
}

// NewCloseBettingJob creates a new close-betting job
func NewCloseBettingJob(wagers OpenWagerCloser) *CloseBettingJob {
	return &CloseBettingJob{
		wagers:  wagers,
		timeout: time.Minute,
	}
}

func (j *CloseBettingJob) Name() string {
	return closeBettingJobName
}

// Run performs one pass. Safe to call repeatedly; wagers already closed are skipped.
func (j *CloseBettingJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	refunded, err := j.wagers.CloseOpenWagers(ctx)
	metrics.RecordJobRun(closeBettingJobName, err == nil)
	if err != nil {
		logger.Log.Error("[CloseBetting] failed to close open wagers",
			zap.Int("refunded", refunded),
			zap.Error(err),
		)
		return
	}
	if refunded > 0 {
		logger.Log.Info("[CloseBetting] refunded open wagers", zap.Int("refunded", refunded))
	}
}
