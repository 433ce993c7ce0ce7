// Package scheduler runs named background jobs on cron expressions.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"anoa.com/careerhub/pkg/logger"
	"github.com/robfig/cron/v3"
)

var ErrUnknownJob = errors.New("unknown job")

// Job is a unit of background work. An empty Schedule registers the job for
// on-demand runs only.
type Job interface {
	Name() string
	Schedule() string
	Execute(ctx context.Context) error
}

type Scheduler struct {
	cron *cron.Cron
	mu   sync.RWMutex
	jobs []Job
}

func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Register adds job and schedules it when it has a schedule.
func (s *Scheduler) Register(job Job) error {
	if schedule := job.Schedule(); schedule != "" {
		if _, err := s.cron.AddFunc(schedule, func() { s.run(context.Background(), job) }); err != nil {
			return fmt.Errorf("schedule %s with %q: %w", job.Name(), schedule, err)
		}
		logger.Info().Str("job", job.Name()).Str("schedule", schedule).Msg("job scheduled")
	} else {
		logger.Info().Str("job", job.Name()).Msg("job registered for on-demand runs")
	}

	s.mu.Lock()
	s.jobs = append(s.jobs, job)
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	logger.Info().Str("job", job.Name()).Msg("job started")
	if err := job.Execute(ctx); err != nil {
		logger.Error().Err(err).Str("job", job.Name()).Msg("job failed")
		return err
	}
	logger.Info().Str("job", job.Name()).Msg("job completed")
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info().Int("jobs", len(s.Jobs())).Msg("scheduler started")
}

// Stop halts scheduling and waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
	logger.Info().Msg("scheduler stopped")
}

// RunNow executes the named job synchronously.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, job := range s.jobs {
		if job.Name() == name {
			return s.run(ctx, job)
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownJob, name)
}

func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}
