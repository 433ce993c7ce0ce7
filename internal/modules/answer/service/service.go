package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"anoa.com/careerhub/internal/entity"
	answerDto "anoa.com/careerhub/internal/modules/answer/dto"
	answerRepo "anoa.com/careerhub/internal/modules/answer/repository"
	pointsService "anoa.com/careerhub/internal/modules/points/service"
	questionRepo "anoa.com/careerhub/internal/modules/question/repository"
	skillService "anoa.com/careerhub/internal/modules/skill/service"
	roleService "anoa.com/careerhub/internal/modules/targetrole/service"
	userRepo "anoa.com/careerhub/internal/modules/user/repository"
	"anoa.com/careerhub/internal/scoring"
	"anoa.com/careerhub/pkg/apperror"
	"anoa.com/careerhub/pkg/logger"
	"anoa.com/careerhub/pkg/sanitize"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EditWindow       = 24 * time.Hour
	minContentLength = 10
	maxContentLength = 3000
)

type AnswerService interface {
	CreateAnswer(ctx context.Context, req answerDto.CreateAnswerRequest) (*entity.Answer, error)
	AcceptAnswer(ctx context.Context, answerID uuid.UUID) (*entity.Answer, error)
	UpdateAnswer(ctx context.Context, answerID uuid.UUID, req answerDto.UpdateAnswerRequest) (*entity.Answer, error)
	ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]entity.Answer, error)
}

type answerService struct {
	db            *gorm.DB
	repo          answerRepo.AnswerRepository
	questionRepo  questionRepo.QuestionRepository
	userRepo      userRepo.UserRepository
	roleService   roleService.TargetRoleService
	pointsService pointsService.PointsService
	skillService  skillService.SkillService
}

func NewAnswerService(
	db *gorm.DB,
	repo answerRepo.AnswerRepository,
	questionRepo questionRepo.QuestionRepository,
	userRepo userRepo.UserRepository,
	roleService roleService.TargetRoleService,
	pointsService pointsService.PointsService,
	skillService skillService.SkillService,
) AnswerService {
	return &answerService{
		db:            db,
		repo:          repo,
		questionRepo:  questionRepo,
		userRepo:      userRepo,
		roleService:   roleService,
		pointsService: pointsService,
		skillService:  skillService,
	}
}

// CreateAnswer stores the answer, then awards difficulty points and skill
// progress. The three steps are not one transaction: a failure after the
// insert is reported as internal and leaves the answer in place.
func (s *answerService) CreateAnswer(ctx context.Context, req answerDto.CreateAnswerRequest) (*entity.Answer, error) {
	if sanitize.PlainText(req.Content) == "" {
		return nil, fmt.Errorf("content is required: %w", apperror.ErrInvalidInput)
	}

	exists, err := s.userRepo.Exists(ctx, req.AuthorID)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	if !exists {
		return nil, fmt.Errorf("author %s: %w", req.AuthorID, apperror.ErrNotFound)
	}

	question, err := s.questionRepo.FindByID(ctx, req.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("question %s: %w", req.QuestionID, apperror.FromDB(err))
	}
	if question.Status != entity.QuestionStatusPublished {
		return nil, fmt.Errorf("question %s is not published: %w", question.ID, apperror.ErrBadRequest)
	}

	if req.TargetRoleID != nil && *req.TargetRoleID != uuid.Nil {
		if _, err := s.roleService.GetOwnedRole(ctx, req.AuthorID, *req.TargetRoleID); err != nil {
			return nil, err
		}
	} else {
		req.TargetRoleID = nil
	}

	answer := &entity.Answer{
		QuestionID:   question.ID,
		AuthorID:     req.AuthorID,
		Content:      req.Content,
		TargetRoleID: req.TargetRoleID,
	}
	if err := s.repo.Create(ctx, answer); err != nil {
		return nil, apperror.FromDB(err)
	}

	if _, err := s.pointsService.ApplyEvent(ctx, pointsService.Event{
		UserID:         answer.AuthorID,
		Type:           scoring.EventAnswerCreated,
		Difficulty:     question.Difficulty,
		ReferenceID:    answer.ID,
		ReferenceTable: "answers",
	}); err != nil {
		return answer, s.partial(answer, "points", err)
	}

	if err := s.skillService.RecordAnswer(ctx, answer.AuthorID, answer.SkillScope(), question.TagNames()); err != nil {
		return answer, s.partial(answer, "skills", err)
	}

	return answer, nil
}

func (s *answerService) partial(answer *entity.Answer, step string, err error) error {
	logger.Error().Err(err).
		Str("answer_id", answer.ID.String()).
		Str("step", step).
		Msg("answer stored but scoring incomplete")
	return fmt.Errorf("%w: answer stored, %s not applied: %w", apperror.ErrInternal, step, err)
}

// AcceptAnswer makes the answer the single accepted one for its question and
// awards the author. Accepting the already accepted answer changes nothing.
func (s *answerService) AcceptAnswer(ctx context.Context, answerID uuid.UUID) (*entity.Answer, error) {
	answer, err := s.repo.FindByID(ctx, answerID)
	if err != nil {
		return nil, fmt.Errorf("answer %s: %w", answerID, apperror.FromDB(err))
	}

	var (
		total    int
		accepted bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if _, err := txRepo.LockQuestion(ctx, answer.QuestionID); err != nil {
			return err
		}

		current, err := txRepo.FindByID(ctx, answerID)
		if err != nil {
			return err
		}
		if current.IsAccepted {
			return nil
		}

		if err := txRepo.SetAccepted(ctx, answer.QuestionID, answerID); err != nil {
			return err
		}

		total, err = s.pointsService.ApplyEventTx(ctx, tx, pointsService.Event{
			UserID:         answer.AuthorID,
			Type:           scoring.EventAnswerAccepted,
			ReferenceID:    answer.ID,
			ReferenceTable: "answers",
		})
		if err != nil {
			return err
		}
		accepted = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("accept answer %s: %w", answerID, apperror.FromDB(err))
	}

	answer.IsAccepted = true
	if accepted {
		if answer.Question != nil {
			answer.Question.IsSolved = true
		}
		if _, err := s.pointsService.EvaluateBadges(ctx, answer.AuthorID, total); err != nil {
			return answer, fmt.Errorf("%w: %w", apperror.ErrInternal, err)
		}
	}
	return answer, nil
}

func (s *answerService) UpdateAnswer(ctx context.Context, answerID uuid.UUID, req answerDto.UpdateAnswerRequest) (*entity.Answer, error) {
	answer, err := s.repo.FindByID(ctx, answerID)
	if err != nil {
		return nil, fmt.Errorf("answer %s: %w", answerID, apperror.FromDB(err))
	}

	if answer.AuthorID != req.AuthorID {
		return nil, fmt.Errorf("only the author may edit this answer: %w", apperror.ErrForbidden)
	}
	if time.Since(answer.CreatedAt) > EditWindow {
		return nil, fmt.Errorf("editing window of %s has expired: %w", EditWindow, apperror.ErrForbidden)
	}

	length := utf8.RuneCountInString(sanitize.PlainText(req.Content))
	if length < minContentLength || length > maxContentLength {
		return nil, fmt.Errorf("answer must be between %d and %d characters: %w",
			minContentLength, maxContentLength, apperror.ErrInvalidInput)
	}

	if err := s.repo.UpdateContent(ctx, answerID, req.Content); err != nil {
		return nil, apperror.FromDB(err)
	}
	answer.Content = req.Content
	return answer, nil
}

func (s *answerService) ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]entity.Answer, error) {
	if _, err := s.questionRepo.FindByID(ctx, questionID); err != nil {
		return nil, fmt.Errorf("question %s: %w", questionID, apperror.FromDB(err))
	}

	answers, err := s.repo.ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	return answers, nil
}
