package repository

import (
	"context"

	"anoa.com/careerhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository interface {
	WithTx(tx *gorm.DB) AnswerRepository
	Create(ctx context.Context, answer *entity.Answer) error
	// FindByID loads the answer with its question and the question's tags.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Answer, error)
	ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]entity.Answer, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string) error
	LockQuestion(ctx context.Context, questionID uuid.UUID) (*entity.Question, error)
	// SetAccepted makes answerID the only accepted answer of its question
	// and marks the question solved.
	SetAccepted(ctx context.Context, questionID, answerID uuid.UUID) error
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) WithTx(tx *gorm.DB) AnswerRepository {
	return &answerRepository{db: tx}
}

func (r *answerRepository) Create(ctx context.Context, answer *entity.Answer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(answer).Error
}

func (r *answerRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Answer, error) {
	var answer entity.Answer
	err := r.db.WithContext(ctx).
		Preload("Question.Tags").
		First(&answer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerRepository) ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]entity.Answer, error) {
	var answers []entity.Answer
	err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("is_accepted desc").
		Order("votes desc").
		Order("created_at asc").
		Find(&answers).Error
	return answers, err
}

func (r *answerRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Answer{}).
		Where("id = ?", id).
		Update("content", content).Error
}

func (r *answerRepository) LockQuestion(ctx context.Context, questionID uuid.UUID) (*entity.Question, error) {
	var question entity.Question
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&question, "id = ?", questionID).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *answerRepository) SetAccepted(ctx context.Context, questionID, answerID uuid.UUID) error {
	db := r.db.WithContext(ctx)

	if err := db.Model(&entity.Answer{}).
		Where("question_id = ? AND id <> ? AND is_accepted = ?", questionID, answerID, true).
		Update("is_accepted", false).Error; err != nil {
		return err
	}

	result := db.Model(&entity.Answer{}).
		Where("id = ? AND question_id = ?", answerID, questionID).
		Update("is_accepted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return db.Model(&entity.Question{}).
		Where("id = ?", questionID).
		Update("is_solved", true).Error
}
