package service

import (
	"context"
	"fmt"

	"anoa.com/careerhub/internal/entity"
	pointsDto "anoa.com/careerhub/internal/modules/points/dto"
	pointsRepo "anoa.com/careerhub/internal/modules/points/repository"
	"anoa.com/careerhub/internal/scoring"
	"anoa.com/careerhub/pkg/apperror"
	"anoa.com/careerhub/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is a qualifying activity that earns points.
type Event struct {
	UserID uuid.UUID
	Type   string
	// Difficulty of the parent question; read for answer_created only.
	Difficulty     string
	ReferenceID    uuid.UUID
	ReferenceTable string
}

// BadgeEvaluator is re-run after every points change.
type BadgeEvaluator interface {
	Evaluate(ctx context.Context, userID uuid.UUID, points int) ([]entity.Badge, error)
}

type PointsService interface {
	// ApplyEvent adds the event's points and then re-evaluates badges.
	ApplyEvent(ctx context.Context, ev Event) (int, error)
	// ApplyEventTx adds the event's points inside tx. The caller must call
	// EvaluateBadges once tx has committed.
	ApplyEventTx(ctx context.Context, tx *gorm.DB, ev Event) (int, error)
	EvaluateBadges(ctx context.Context, userID uuid.UUID, total int) ([]entity.Badge, error)
	SetPoints(ctx context.Context, userID uuid.UUID, points int) (*pointsDto.PointsResponse, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]entity.PointLog, error)
	GetLeaderboard(ctx context.Context, limit int) ([]pointsDto.LeaderboardEntry, error)
	FindDrift(ctx context.Context) ([]pointsDto.PointsDrift, error)
}

type pointsService struct {
	repo   pointsRepo.PointsRepository
	badges BadgeEvaluator
	rules  scoring.Rules
}

func NewPointsService(repo pointsRepo.PointsRepository, badges BadgeEvaluator, rules scoring.Rules) PointsService {
	return &pointsService{
		repo:   repo,
		badges: badges,
		rules:  rules,
	}
}

func (s *pointsService) ApplyEvent(ctx context.Context, ev Event) (int, error) {
	total, err := s.apply(ctx, s.repo, ev)
	if err != nil {
		return 0, err
	}

	if _, err := s.EvaluateBadges(ctx, ev.UserID, total); err != nil {
		return total, err
	}
	return total, nil
}

func (s *pointsService) ApplyEventTx(ctx context.Context, tx *gorm.DB, ev Event) (int, error) {
	return s.apply(ctx, s.repo.WithTx(tx), ev)
}

func (s *pointsService) apply(ctx context.Context, repo pointsRepo.PointsRepository, ev Event) (int, error) {
	if ev.UserID == uuid.Nil {
		return 0, fmt.Errorf("user id is required: %w", apperror.ErrInvalidInput)
	}
	delta, err := s.rules.Delta(ev.Type, ev.Difficulty)
	if err != nil {
		return 0, fmt.Errorf("%v: %w", err, apperror.ErrInvalidInput)
	}

	entry := &entity.PointLog{
		UserID:         ev.UserID,
		EventType:      ev.Type,
		Points:         delta,
		ReferenceTable: ev.ReferenceTable,
	}
	if ev.ReferenceID != uuid.Nil {
		entry.ReferenceID = ev.ReferenceID.String()
	}

	total, err := repo.ApplyDelta(ctx, entry)
	if err != nil {
		return 0, fmt.Errorf("apply %s points to user %s: %w", ev.Type, ev.UserID, apperror.FromDB(err))
	}

	logger.Debug().
		Str("user_id", ev.UserID.String()).
		Str("event", ev.Type).
		Int("delta", delta).
		Int("total", total).
		Msg("points applied")

	return total, nil
}

func (s *pointsService) EvaluateBadges(ctx context.Context, userID uuid.UUID, total int) ([]entity.Badge, error) {
	if s.badges == nil {
		return nil, nil
	}
	awarded, err := s.badges.Evaluate(ctx, userID, total)
	if err != nil {
		return awarded, fmt.Errorf("evaluate badges for user %s: %w", userID, err)
	}
	return awarded, nil
}

// SetPoints is the administrative override. It still logs the difference and
// re-evaluates badges so possession stays consistent with the new total.
func (s *pointsService) SetPoints(ctx context.Context, userID uuid.UUID, points int) (*pointsDto.PointsResponse, error) {
	if points < 0 {
		return nil, fmt.Errorf("points must not be negative: %w", apperror.ErrInvalidInput)
	}

	previous, err := s.repo.SetPoints(ctx, userID, points, scoring.EventAdminAdjustment)
	if err != nil {
		return nil, fmt.Errorf("set points for user %s: %w", userID, apperror.FromDB(err))
	}

	logger.Info().
		Str("user_id", userID.String()).
		Int("previous", previous).
		Int("points", points).
		Msg("points set by administrator")

	resp := &pointsDto.PointsResponse{
		UserID:         userID,
		PreviousPoints: previous,
		Points:         points,
		BadgesAwarded:  []string{},
	}

	awarded, err := s.EvaluateBadges(ctx, userID, points)
	for _, b := range awarded {
		resp.BadgesAwarded = append(resp.BadgesAwarded, b.Name)
	}
	if err != nil {
		return resp, err
	}
	return resp, nil
}

func (s *pointsService) History(ctx context.Context, userID uuid.UUID, limit int) ([]entity.PointLog, error) {
	logs, err := s.repo.History(ctx, userID, limit)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	return logs, nil
}

func (s *pointsService) GetLeaderboard(ctx context.Context, limit int) ([]pointsDto.LeaderboardEntry, error) {
	users, err := s.repo.GetTopUsers(ctx, limit)
	if err != nil {
		return nil, apperror.FromDB(err)
	}

	entries := make([]pointsDto.LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, pointsDto.LeaderboardEntry{
			Position:      i + 1,
			UserID:        u.ID,
			Name:          u.Name,
			JobTitle:      u.JobTitle,
			Points:        u.Points,
			BadgeProgress: s.rules.Progress(u.Points),
		})
	}
	return entries, nil
}

func (s *pointsService) FindDrift(ctx context.Context) ([]pointsDto.PointsDrift, error) {
	rows, err := s.repo.FindDrift(ctx)
	if err != nil {
		return nil, apperror.FromDB(err)
	}

	out := make([]pointsDto.PointsDrift, 0, len(rows))
	for _, r := range rows {
		out = append(out, pointsDto.PointsDrift{
			UserID:  r.UserID,
			Stored:  r.Stored,
			Derived: r.Derived,
			Drift:   r.Stored - r.Derived,
		})
	}
	return out, nil
}
