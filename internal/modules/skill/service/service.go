package service

import (
	"context"
	"fmt"

	"anoa.com/careerhub/internal/entity"
	skillDto "anoa.com/careerhub/internal/modules/skill/dto"
	skillRepo "anoa.com/careerhub/internal/modules/skill/repository"
	roleRepo "anoa.com/careerhub/internal/modules/targetrole/repository"
	userRepo "anoa.com/careerhub/internal/modules/user/repository"
	"anoa.com/careerhub/pkg/apperror"
	"github.com/google/uuid"
)

type SkillService interface {
	// RecordAnswer runs on answer creation for each tag of the answered question.
	RecordAnswer(ctx context.Context, authorID, roleID uuid.UUID, tags []string) error
	// RecordVoteReceived runs when an answer gains a new upvote.
	RecordVoteReceived(ctx context.Context, authorID, roleID uuid.UUID, tags []string) error

	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserSkill, error)
	AddSkills(ctx context.Context, req skillDto.AddSkillsRequest) ([]entity.UserSkill, error)
	UpdateSkill(ctx context.Context, id uuid.UUID, req skillDto.UpdateSkillRequest) (*entity.UserSkill, error)
	DeleteSkill(ctx context.Context, id uuid.UUID) error
}

type skillService struct {
	repo     skillRepo.SkillRepository
	userRepo userRepo.UserRepository
	roleRepo roleRepo.TargetRoleRepository
}

func NewSkillService(repo skillRepo.SkillRepository, userRepo userRepo.UserRepository, roleRepo roleRepo.TargetRoleRepository) SkillService {
	return &skillService{
		repo:     repo,
		userRepo: userRepo,
		roleRepo: roleRepo,
	}
}

func (s *skillService) RecordAnswer(ctx context.Context, authorID, roleID uuid.UUID, tags []string) error {
	tags = entity.NormalizeTags(tags)
	if len(tags) == 0 {
		return nil
	}
	if err := s.repo.IncrementAnswered(ctx, authorID, roleID, tags); err != nil {
		return fmt.Errorf("record answered skills: %w", apperror.FromDB(err))
	}
	return nil
}

func (s *skillService) RecordVoteReceived(ctx context.Context, authorID, roleID uuid.UUID, tags []string) error {
	tags = entity.NormalizeTags(tags)
	if len(tags) == 0 {
		return nil
	}
	if err := s.repo.IncrementVotes(ctx, authorID, roleID, tags); err != nil {
		return fmt.Errorf("record voted skills: %w", apperror.FromDB(err))
	}
	return nil
}

func (s *skillService) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserSkill, error) {
	skills, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	return skills, nil
}

// AddSkills creates zero-progress skill records. Names are de-duplicated
// case-insensitively; names the user already has are skipped.
func (s *skillService) AddSkills(ctx context.Context, req skillDto.AddSkillsRequest) ([]entity.UserSkill, error) {
	names := entity.NormalizeTags(req.SkillNames)
	if req.AuthorID == uuid.Nil || len(names) == 0 {
		return nil, fmt.Errorf("authorId and at least one skill name are required: %w", apperror.ErrInvalidInput)
	}

	exists, err := s.userRepo.Exists(ctx, req.AuthorID)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	if !exists {
		return nil, fmt.Errorf("user %s: %w", req.AuthorID, apperror.ErrNotFound)
	}

	roleID := uuid.Nil
	if req.TargetRoleID != nil && *req.TargetRoleID != uuid.Nil {
		role, err := s.roleRepo.FindByID(ctx, *req.TargetRoleID)
		if err != nil {
			return nil, fmt.Errorf("target role %s: %w", *req.TargetRoleID, apperror.FromDB(err))
		}
		if role.UserID != req.AuthorID {
			return nil, fmt.Errorf("target role %s: %w", role.ID, apperror.ErrNotFound)
		}
		roleID = role.ID
	}

	skills := make([]entity.UserSkill, 0, len(names))
	for _, name := range names {
		skills = append(skills, entity.UserSkill{
			AuthorID:     req.AuthorID,
			SkillName:    name,
			TargetRoleID: roleID,
			Level:        1,
		})
	}

	created, err := s.repo.CreateIfAbsent(ctx, skills)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	return created, nil
}

// UpdateSkill raises the supplied counters. The write never lowers a
// column, so increments that land between the read and the write survive.
func (s *skillService) UpdateSkill(ctx context.Context, id uuid.UUID, req skillDto.UpdateSkillRequest) (*entity.UserSkill, error) {
	skill, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("skill %s: %w", id, apperror.FromDB(err))
	}

	counters := make(map[string]int, 3)
	if err := raise(counters, "level", skill.Level, req.Level); err != nil {
		return nil, err
	}
	if err := raise(counters, "questions_answered", skill.QuestionsAnswered, req.QuestionsAnswered); err != nil {
		return nil, err
	}
	if err := raise(counters, "votes_received", skill.VotesReceived, req.VotesReceived); err != nil {
		return nil, err
	}

	if len(counters) > 0 {
		if err := s.repo.RaiseCounters(ctx, id, counters); err != nil {
			return nil, fmt.Errorf("skill %s: %w", id, apperror.FromDB(err))
		}
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("skill %s: %w", id, apperror.FromDB(err))
	}
	return updated, nil
}

// raise records next for column unless it would lower current.
func raise(counters map[string]int, column string, current int, next *int) error {
	if next == nil {
		return nil
	}
	if *next < current {
		return fmt.Errorf("%s cannot decrease from %d to %d: %w", column, current, *next, apperror.ErrInvalidInput)
	}
	counters[column] = *next
	return nil
}

func (s *skillService) DeleteSkill(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperror.FromDB(err)
	}
	if !deleted {
		return fmt.Errorf("skill not found: %w", apperror.ErrNotFound)
	}
	return nil
}
