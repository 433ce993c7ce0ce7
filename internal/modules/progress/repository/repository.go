package repository

import (
	"context"

	"anoa.com/careerhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressRepository reads raw activity. It never writes.
type ProgressRepository interface {
	// AnswersByUser returns every answer of the user with its question and tags.
	AnswersByUser(ctx context.Context, userID uuid.UUID) ([]entity.Answer, error)
	PublishedQuestionsByUser(ctx context.Context, userID uuid.UUID) ([]entity.Question, error)
	RecentQuestionsTagged(ctx context.Context, tags []string, limit int) ([]entity.Question, error)
	RecentAnswersTagged(ctx context.Context, userID uuid.UUID, tags []string, limit int) ([]entity.Answer, error)
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) taggedQuestionIDs(tags []string) *gorm.DB {
	return r.db.Model(&entity.QuestionTag{}).Select("question_id").Where("tag IN ?", tags)
}

func (r *progressRepository) AnswersByUser(ctx context.Context, userID uuid.UUID) ([]entity.Answer, error) {
	var answers []entity.Answer
	err := r.db.WithContext(ctx).
		Preload("Question.Tags").
		Where("author_id = ?", userID).
		Order("created_at asc").
		Order("id asc").
		Find(&answers).Error
	return answers, err
}

func (r *progressRepository) PublishedQuestionsByUser(ctx context.Context, userID uuid.UUID) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("author_id = ? AND status = ?", userID, entity.QuestionStatusPublished).
		Order("created_at asc").
		Order("id asc").
		Find(&questions).Error
	return questions, err
}

func (r *progressRepository) RecentQuestionsTagged(ctx context.Context, tags []string, limit int) ([]entity.Question, error) {
	var questions []entity.Question
	if len(tags) == 0 {
		return questions, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("status = ?", entity.QuestionStatusPublished).
		Where("id IN (?)", r.taggedQuestionIDs(tags)).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&questions).Error
	return questions, err
}

func (r *progressRepository) RecentAnswersTagged(ctx context.Context, userID uuid.UUID, tags []string, limit int) ([]entity.Answer, error) {
	var answers []entity.Answer
	if len(tags) == 0 {
		return answers, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Question").
		Where("author_id = ?", userID).
		Where("question_id IN (?)", r.taggedQuestionIDs(tags)).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&answers).Error
	return answers, err
}
