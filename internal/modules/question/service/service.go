package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/careerhub/internal/entity"
	pointsService "anoa.com/careerhub/internal/modules/points/service"
	questionDto "anoa.com/careerhub/internal/modules/question/dto"
	questionRepo "anoa.com/careerhub/internal/modules/question/repository"
	userRepo "anoa.com/careerhub/internal/modules/user/repository"
	"anoa.com/careerhub/internal/scoring"
	"anoa.com/careerhub/pkg/apperror"
	"anoa.com/careerhub/pkg/sanitize"
	"github.com/google/uuid"
)

type QuestionService interface {
	CreateQuestion(ctx context.Context, req questionDto.CreateQuestionRequest) (*questionDto.QuestionResponse, error)
	PublishQuestion(ctx context.Context, id uuid.UUID) (*questionDto.QuestionResponse, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (*questionDto.QuestionResponse, error)
	// UpdateQuestion edits content fields for the author. Status changes go
	// through PublishQuestion; no points move.
	UpdateQuestion(ctx context.Context, id uuid.UUID, req questionDto.UpdateQuestionRequest) (*questionDto.QuestionResponse, error)
	// DeleteQuestion removes the question, its answers and their votes.
	// Points already awarded stay with their owners.
	DeleteQuestion(ctx context.Context, id, authorID uuid.UUID) error
	ListByAuthor(ctx context.Context, authorID uuid.UUID, status string) ([]questionDto.QuestionResponse, error)
}

type questionService struct {
	repo          questionRepo.QuestionRepository
	userRepo      userRepo.UserRepository
	pointsService pointsService.PointsService
	rules         scoring.Rules
}

func NewQuestionService(repo questionRepo.QuestionRepository, userRepo userRepo.UserRepository, pointsService pointsService.PointsService, rules scoring.Rules) QuestionService {
	return &questionService{
		repo:          repo,
		userRepo:      userRepo,
		pointsService: pointsService,
		rules:         rules,
	}
}

func (s *questionService) CreateQuestion(ctx context.Context, req questionDto.CreateQuestionRequest) (*questionDto.QuestionResponse, error) {
	question := &entity.Question{
		AuthorID:   req.AuthorID,
		Title:      sanitize.PlainText(req.Title),
		Content:    strings.TrimSpace(req.Content),
		Difficulty: strings.TrimSpace(req.Difficulty),
		Status:     req.Status,
	}
	if question.Status == "" {
		question.Status = entity.QuestionStatusDraft
	}
	for _, tag := range entity.NormalizeTags(req.Tags) {
		question.Tags = append(question.Tags, entity.QuestionTag{Tag: tag})
	}

	if err := s.validate(question); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.Exists(ctx, req.AuthorID)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	if !exists {
		return nil, fmt.Errorf("author %s: %w", req.AuthorID, apperror.ErrNotFound)
	}

	if err := s.repo.Create(ctx, question); err != nil {
		return nil, apperror.FromDB(err)
	}

	resp := questionDto.NewQuestionResponse(question)
	if question.Status == entity.QuestionStatusPublished {
		if err := s.awardPublished(ctx, question); err != nil {
			return &resp, err
		}
	}
	return &resp, nil
}

// PublishQuestion moves a draft to published. Only the call that performs
// the transition awards points.
func (s *questionService) PublishQuestion(ctx context.Context, id uuid.UUID) (*questionDto.QuestionResponse, error) {
	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("question %s: %w", id, apperror.FromDB(err))
	}
	if question.Status == entity.QuestionStatusPublished {
		return nil, fmt.Errorf("question already published: %w", apperror.ErrConflict)
	}

	question.Status = entity.QuestionStatusPublished
	if err := s.validate(question); err != nil {
		return nil, err
	}

	flipped, err := s.repo.MarkPublished(ctx, id)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	if !flipped {
		return nil, fmt.Errorf("question already published: %w", apperror.ErrConflict)
	}

	resp := questionDto.NewQuestionResponse(question)
	if err := s.awardPublished(ctx, question); err != nil {
		return &resp, err
	}
	return &resp, nil
}

func (s *questionService) GetQuestion(ctx context.Context, id uuid.UUID) (*questionDto.QuestionResponse, error) {
	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("question %s: %w", id, apperror.FromDB(err))
	}
	resp := questionDto.NewQuestionResponse(question)
	return &resp, nil
}

func (s *questionService) UpdateQuestion(ctx context.Context, id uuid.UUID, req questionDto.UpdateQuestionRequest) (*questionDto.QuestionResponse, error) {
	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("question %s: %w", id, apperror.FromDB(err))
	}
	if question.AuthorID != req.AuthorID {
		return nil, fmt.Errorf("only the author can edit this question: %w", apperror.ErrForbidden)
	}

	if req.Title != nil {
		question.Title = sanitize.PlainText(*req.Title)
	}
	if req.Content != nil {
		question.Content = strings.TrimSpace(*req.Content)
	}
	if req.Difficulty != nil {
		question.Difficulty = strings.TrimSpace(*req.Difficulty)
	}
	replaceTags := req.Tags != nil
	if replaceTags {
		question.Tags = question.Tags[:0]
		for _, tag := range entity.NormalizeTags(req.Tags) {
			question.Tags = append(question.Tags, entity.QuestionTag{QuestionID: question.ID, Tag: tag})
		}
	}

	if err := s.validate(question); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, question, replaceTags); err != nil {
		return nil, fmt.Errorf("question %s: %w", id, apperror.FromDB(err))
	}

	resp := questionDto.NewQuestionResponse(question)
	return &resp, nil
}

func (s *questionService) DeleteQuestion(ctx context.Context, id, authorID uuid.UUID) error {
	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("question %s: %w", id, apperror.FromDB(err))
	}
	if question.AuthorID != authorID {
		return fmt.Errorf("only the author can delete this question: %w", apperror.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("question %s: %w", id, apperror.FromDB(err))
	}
	return nil
}

func (s *questionService) ListByAuthor(ctx context.Context, authorID uuid.UUID, status string) ([]questionDto.QuestionResponse, error) {
	if status == "" {
		status = entity.QuestionStatusPublished
	}
	if status != entity.QuestionStatusDraft && status != entity.QuestionStatusPublished {
		return nil, fmt.Errorf("unknown status %q: %w", status, apperror.ErrInvalidInput)
	}

	exists, err := s.userRepo.Exists(ctx, authorID)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	if !exists {
		return nil, fmt.Errorf("author %s: %w", authorID, apperror.ErrNotFound)
	}

	questions, err := s.repo.ListByAuthor(ctx, authorID, status)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	return questionDto.NewQuestionResponses(questions), nil
}

func (s *questionService) validate(q *entity.Question) error {
	var errs []error
	if q.AuthorID == uuid.Nil {
		errs = append(errs, errors.New("authorId is required"))
	}
	if q.Status != entity.QuestionStatusDraft && q.Status != entity.QuestionStatusPublished {
		errs = append(errs, fmt.Errorf("unknown status %q", q.Status))
	}
	if q.Difficulty != "" && !s.rules.IsDifficulty(q.Difficulty) {
		errs = append(errs, fmt.Errorf("unknown difficulty %q", q.Difficulty))
	}
	if q.Status == entity.QuestionStatusPublished {
		if q.Title == "" {
			errs = append(errs, errors.New("title is required to publish"))
		}
		if q.Content == "" {
			errs = append(errs, errors.New("content is required to publish"))
		}
		if len(q.Tags) == 0 {
			errs = append(errs, errors.New("at least one tag is required to publish"))
		}
		if q.Difficulty == "" {
			errs = append(errs, errors.New("difficulty is required to publish"))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

func (s *questionService) awardPublished(ctx context.Context, q *entity.Question) error {
	_, err := s.pointsService.ApplyEvent(ctx, pointsService.Event{
		UserID:         q.AuthorID,
		Type:           scoring.EventQuestionPublished,
		ReferenceID:    q.ID,
		ReferenceTable: "questions",
	})
	return err
}
