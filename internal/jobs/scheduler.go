package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"fitcoin-challenge/pkg/logger"
)

// Job is a unit of scheduled background work
type Job interface {
	Name() string
	Run()
}

// Scheduler runs jobs on cron specs
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cronLogger{}))),
	}
}

// Register schedules job on spec, e.g. "@every 5m" or "0 * * * *"
func (s *Scheduler) Register(spec string, job Job) error {
	if _, err := s.cron.AddJob(spec, cron.FuncJob(job.Run)); err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name(), err)
	}
	logger.Log.Info("job scheduled", zap.String("job", job.Name()), zap.String("spec", spec))
	return nil
}

// Start begins running scheduled jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and returns a context that is done once running jobs finish
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// cronLogger adapts the zap logger to cron's logging interface
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Log.Sugar().Debugw(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
