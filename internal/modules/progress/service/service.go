package service

import (
	"context"
	"fmt"

	"anoa.com/careerhub/internal/entity"
	badgeService "anoa.com/careerhub/internal/modules/badge/service"
	progressDto "anoa.com/careerhub/internal/modules/progress/dto"
	progressRepo "anoa.com/careerhub/internal/modules/progress/repository"
	skillService "anoa.com/careerhub/internal/modules/skill/service"
	roleRepo "anoa.com/careerhub/internal/modules/targetrole/repository"
	userRepo "anoa.com/careerhub/internal/modules/user/repository"
	"anoa.com/careerhub/internal/scoring"
	"anoa.com/careerhub/pkg/apperror"
	"github.com/google/uuid"
)

const recentLimit = 5

// ProgressService recomputes role progress from raw activity on every call.
type ProgressService interface {
	RoleProgress(ctx context.Context, userID, roleID uuid.UUID) (*progressDto.RoleProgress, error)
	Dashboard(ctx context.Context, userID uuid.UUID) (*progressDto.Dashboard, error)
}

type progressService struct {
	repo         progressRepo.ProgressRepository
	userRepo     userRepo.UserRepository
	roleRepo     roleRepo.TargetRoleRepository
	skillService skillService.SkillService
	badgeService badgeService.BadgeService
	rules        scoring.Rules
}

func NewProgressService(
	repo progressRepo.ProgressRepository,
	userRepo userRepo.UserRepository,
	roleRepo roleRepo.TargetRoleRepository,
	skillService skillService.SkillService,
	badgeService badgeService.BadgeService,
	rules scoring.Rules,
) ProgressService {
	return &progressService{
		repo:         repo,
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		skillService: skillService,
		badgeService: badgeService,
		rules:        rules,
	}
}

type activity struct {
	answers   []entity.Answer
	questions []entity.Question
}

func (s *progressService) loadActivity(ctx context.Context, userID uuid.UUID) (*activity, error) {
	answers, err := s.repo.AnswersByUser(ctx, userID)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	questions, err := s.repo.PublishedQuestionsByUser(ctx, userID)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	return &activity{answers: answers, questions: questions}, nil
}

func (s *progressService) RoleProgress(ctx context.Context, userID, roleID uuid.UUID) (*progressDto.RoleProgress, error) {
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("target role %s: %w", roleID, apperror.FromDB(err))
	}
	if role.UserID != userID {
		return nil, fmt.Errorf("target role %s: %w", roleID, apperror.ErrNotFound)
	}

	act, err := s.loadActivity(ctx, userID)
	if err != nil {
		return nil, err
	}

	skills, err := s.roleRepo.SkillsByRoles(ctx, userID, []uuid.UUID{roleID})
	if err != nil {
		return nil, apperror.FromDB(err)
	}

	return s.roleProgress(ctx, role, skills, act)
}

func (s *progressService) roleProgress(ctx context.Context, role *entity.UserTargetRole, skills []entity.UserSkill, act *activity) (*progressDto.RoleProgress, error) {
	names := make([]string, 0, len(skills))
	for _, sk := range skills {
		if sk.TargetRoleID == role.ID {
			names = append(names, sk.SkillName)
		}
	}
	names = entity.NormalizeTags(names)

	score := ComputeRolePoints(s.rules, names, act.answers, act.questions)

	recentQuestions, err := s.repo.RecentQuestionsTagged(ctx, names, recentLimit)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	recentAnswers, err := s.repo.RecentAnswersTagged(ctx, role.UserID, names, recentLimit)
	if err != nil {
		return nil, apperror.FromDB(err)
	}

	out := &progressDto.RoleProgress{
		RoleID:            role.ID,
		RoleName:          role.RoleName,
		Timeline:          role.Timeline,
		Skills:            names,
		RolePoints:        score.Points,
		MatchingAnswers:   score.MatchingAnswers,
		MatchingQuestions: score.MatchingQuestions,
		RecentQuestions:   make([]progressDto.QuestionSummary, 0, len(recentQuestions)),
		RecentAnswers:     make([]progressDto.AnswerSummary, 0, len(recentAnswers)),
	}
	for _, q := range recentQuestions {
		out.RecentQuestions = append(out.RecentQuestions, progressDto.NewQuestionSummary(q))
	}
	for _, a := range recentAnswers {
		out.RecentAnswers = append(out.RecentAnswers, progressDto.NewAnswerSummary(a))
	}
	return out, nil
}

func (s *progressService) Dashboard(ctx context.Context, userID uuid.UUID) (*progressDto.Dashboard, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, apperror.FromDB(err))
	}

	skills, err := s.skillService.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	badges, err := s.badgeService.UserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}

	roles, err := s.roleRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.FromDB(err)
	}

	act, err := s.loadActivity(ctx, userID)
	if err != nil {
		return nil, err
	}

	dashboard := &progressDto.Dashboard{
		User: progressDto.UserSummary{
			ID:         user.ID,
			Name:       user.Name,
			JobTitle:   user.JobTitle,
			BandLevel:  user.BandLevel,
			Department: user.Department,
		},
		Points:        user.Points,
		BadgeProgress: s.rules.Progress(user.Points),
		Badges:        badges,
		Skills:        skills,
		TargetRoles:   make([]progressDto.RoleProgress, 0, len(roles)),
	}

	for i := range roles {
		rp, err := s.roleProgress(ctx, &roles[i], skills, act)
		if err != nil {
			return nil, err
		}
		dashboard.TargetRoles = append(dashboard.TargetRoles, *rp)
	}

	return dashboard, nil
}
