package repository

import (
	"context"

	"anoa.com/careerhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionRepository interface {
	Create(ctx context.Context, question *entity.Question) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Question, error)
	// MarkPublished flips draft to published and reports whether this call did it.
	MarkPublished(ctx context.Context, id uuid.UUID) (bool, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, status string) ([]entity.Question, error)
	// Update writes title, content and difficulty. When replaceTags is set the
	// tag rows are swapped for question.Tags in the same transaction.
	Update(ctx context.Context, question *entity.Question, replaceTags bool) error
	// Delete removes the question with its tags, its answers and every vote
	// cast on either.
	Delete(ctx context.Context, id uuid.UUID) error
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, question *entity.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *questionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Question, error) {
	var question entity.Question
	err := r.db.WithContext(ctx).
		Preload("Tags").
		First(&question, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) MarkPublished(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.Question{}).
		Where("id = ? AND status = ?", id, entity.QuestionStatusDraft).
		Update("status", entity.QuestionStatusPublished)
	return result.RowsAffected == 1, result.Error
}

func (r *questionRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, status string) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("author_id = ? AND status = ?", authorID, status).
		Order("created_at desc").
		Order("id desc").
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) Update(ctx context.Context, question *entity.Question, replaceTags bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(question).
			Select("title", "content", "difficulty", "updated_at").
			Updates(question)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if !replaceTags {
			return nil
		}

		if err := tx.Where("question_id = ?", question.ID).Delete(&entity.QuestionTag{}).Error; err != nil {
			return err
		}
		for i := range question.Tags {
			question.Tags[i].QuestionID = question.ID
		}
		if len(question.Tags) == 0 {
			return nil
		}
		return tx.Create(&question.Tags).Error
	})
}

func (r *questionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Vote casting locks the voted row; holding the question and its
		// answers keeps new votes out until the rows are gone.
		var question entity.Question
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&question, "id = ?", id).Error; err != nil {
			return err
		}
		var answers []entity.Answer
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("question_id = ?", id).
			Find(&answers).Error; err != nil {
			return err
		}

		answerIDs := tx.Model(&entity.Answer{}).Select("id").Where("question_id = ?", id)
		if err := tx.Where("item_type = ? AND item_id IN (?)", entity.ItemTypeAnswer, answerIDs).Delete(&entity.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_type = ? AND item_id = ?", entity.ItemTypeQuestion, id).Delete(&entity.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&entity.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&entity.QuestionTag{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.Question{}).Error
	})
}
