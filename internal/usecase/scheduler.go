package usecase

import (
	"context"
	"log/slog"
	"time"

	"SmartRecover/internal/ports"
)

// Scheduler wires the interval driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	request  func(trigger time.Time) (Request, bool)
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs. request is evaluated on
// every trigger so each run can reload its inputs; returning false skips that trigger.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, request func(time.Time) (Request, bool), logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, pipeline: pipeline, request: request, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil || s.request == nil {
		return nil
	}

	job := func(trigger time.Time) {
		req, ok := s.request(trigger)
		if !ok {
			s.logger.Warn("scheduled run skipped", "trigger", trigger)
			return
		}
		report, err := s.pipeline.Run(ctx, req)
		if err != nil {
			s.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
			return
		}
		s.logger.Info("scheduled run done",
			"trigger", trigger,
			"run_id", report.Summary.RunID,
			"processed", report.Summary.Processed,
			"errors", report.Summary.ErrorsCount,
		)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
