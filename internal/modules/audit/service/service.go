package service

import (
	"context"
	"sync"
	"time"

	pointsDto "anoa.com/careerhub/internal/modules/points/dto"
	pointsService "anoa.com/careerhub/internal/modules/points/service"
	voteDto "anoa.com/careerhub/internal/modules/vote/dto"
	voteService "anoa.com/careerhub/internal/modules/vote/service"
	"anoa.com/careerhub/pkg/logger"
)

const JobName = "ledger-audit"

// Report lists denormalized counters that disagree with their ledgers.
type Report struct {
	StartedAt   time.Time               `json:"started_at"`
	FinishedAt  time.Time               `json:"finished_at"`
	AutoFix     bool                    `json:"auto_fix"`
	VoteDrift   []voteDto.ItemDrift     `json:"vote_drift"`
	PointsDrift []pointsDto.PointsDrift `json:"points_drift"`
	Repaired    int                     `json:"repaired"`
}

func (r *Report) Clean() bool {
	return len(r.VoteDrift) == 0 && len(r.PointsDrift) == 0
}

type AuditService interface {
	Run(ctx context.Context) (*Report, error)
	LastReport() *Report
}

type auditService struct {
	votes   voteService.VoteService
	points  pointsService.PointsService
	autoFix bool

	mu   sync.RWMutex
	last *Report
}

// NewAuditService builds the reconciliation audit. With autoFix set, vote
// counters are rewritten from the ledger. Points drift is only reported
// because user totals may be seeded outside the point log.
func NewAuditService(votes voteService.VoteService, points pointsService.PointsService, autoFix bool) AuditService {
	return &auditService{votes: votes, points: points, autoFix: autoFix}
}

func (s *auditService) Run(ctx context.Context) (*Report, error) {
	report := &Report{StartedAt: time.Now().UTC(), AutoFix: s.autoFix}

	voteDrift, err := s.votes.FindDrift(ctx)
	if err != nil {
		return nil, err
	}
	report.VoteDrift = voteDrift

	if s.autoFix {
		for _, d := range voteDrift {
			res, err := s.votes.ReconcileItem(ctx, voteDto.ReconcileRequest{ItemID: d.ItemID, ItemType: d.ItemType, Fix: true})
			if err != nil {
				logger.Error().Err(err).Str("item_id", d.ItemID.String()).Msg("vote counter repair failed")
				continue
			}
			if res.Fixed {
				report.Repaired++
			}
		}
	}

	pointsDrift, err := s.points.FindDrift(ctx)
	if err != nil {
		return nil, err
	}
	report.PointsDrift = pointsDrift
	report.FinishedAt = time.Now().UTC()

	event := logger.Info()
	if !report.Clean() {
		event = logger.Warn()
	}
	event.
		Int("vote_drift", len(report.VoteDrift)).
		Int("points_drift", len(report.PointsDrift)).
		Int("repaired", report.Repaired).
		Msg("ledger audit finished")

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	return report, nil
}

func (s *auditService) LastReport() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Job adapts the audit to the background scheduler.
type Job struct {
	svc      AuditService
	schedule string
}

func NewJob(svc AuditService, schedule string) *Job {
	return &Job{svc: svc, schedule: schedule}
}

func (j *Job) Name() string     { return JobName }
func (j *Job) Schedule() string { return j.schedule }

func (j *Job) Execute(ctx context.Context) error {
	_, err := j.svc.Run(ctx)
	return err
}
