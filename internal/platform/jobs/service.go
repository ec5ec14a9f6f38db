package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
)

const (
	JobPayslipRender    = "boletas.render"
	JobPlanillaGenerate = "planilla.generate"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"

	defaultQueueSize = 128
)

var ErrQueueFull = errors.New("job queue full")

type RunFunc func(context.Context) (any, error)

// RunStore persists one row per job execution.
type RunStore interface {
	StartRun(ctx context.Context, companyID, jobType string) (string, error)
	FinishRun(ctx context.Context, runID, status string, detailsJSON []byte) error
}

// Service is a buffered in-process queue drained by a single worker.
type Service struct {
	store   RunStore
	queue   chan job
	running atomic.Bool
}

type job struct {
	Type      string
	CompanyID string
	Run       RunFunc
}

func New(store RunStore, queueSize int) *Service {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Service{store: store, queue: make(chan job, queueSize)}
}

// Run drains the queue until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.running.Store(true)
	defer s.running.Store(false)
	slog.Info("job worker started", "queueSize", cap(s.queue))
	for {
		select {
		case <-ctx.Done():
			slog.Info("job worker stopped", "pending", len(s.queue))
			return nil
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "companyId", j.CompanyID, "err", err)
			}
		}
	}
}

func (s *Service) Enqueue(jobType, companyID string, run RunFunc) error {
	select {
	case s.queue <- job{Type: jobType, CompanyID: companyID, Run: run}:
		return nil
	default:
		slog.Warn("job queue full", "jobType", jobType, "companyId", companyID)
		return ErrQueueFull
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, companyID string, run RunFunc) (any, error) {
	return s.runJob(ctx, job{Type: jobType, CompanyID: companyID, Run: run})
}

// Running reports whether the worker loop is active.
func (s *Service) Running() bool {
	return s.running.Load()
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.store != nil {
		id, err := s.store.StartRun(ctx, j.CompanyID, j.Type)
		if err != nil {
			slog.Warn("job run insert failed", "jobType", j.Type, "err", err)
		}
		runID = id
	}

	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		details = map[string]any{"error": err.Error(), "result": details}
	}
	if runID == "" {
		return details, err
	}

	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if updErr := s.store.FinishRun(ctx, runID, status, detailsJSON); updErr != nil {
		slog.Warn("job run update failed", "runId", runID, "err", updErr)
	}
	return details, err
}
