package repository

import (
	"context"
	"fmt"
	"time"

	"anoa.com/careerhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var skillKey = []clause.Column{{Name: "author_id"}, {Name: "skill_name"}, {Name: "target_role_id"}}

type SkillRepository interface {
	// IncrementAnswered upserts each (author, tag, role) record: new rows
	// start at level 1 with one answer, existing rows gain one of each.
	IncrementAnswered(ctx context.Context, authorID, roleID uuid.UUID, tags []string) error
	// IncrementVotes upserts each (author, tag, role) record and adds one
	// received vote without touching the level.
	IncrementVotes(ctx context.Context, authorID, roleID uuid.UUID, tags []string) error

	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserSkill, error)
	// CreateIfAbsent inserts the skills that do not exist yet and returns those.
	CreateIfAbsent(ctx context.Context, skills []entity.UserSkill) ([]entity.UserSkill, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.UserSkill, error)
	// RaiseCounters sets each named column to the larger of its stored value
	// and the given one, in a single UPDATE. Columns not named are untouched.
	RaiseCounters(ctx context.Context, id uuid.UUID, counters map[string]int) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type skillRepository struct {
	db *gorm.DB
}

func NewSkillRepository(db *gorm.DB) SkillRepository {
	return &skillRepository{db: db}
}

func (r *skillRepository) IncrementAnswered(ctx context.Context, authorID, roleID uuid.UUID, tags []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, tag := range tags {
			skill := entity.UserSkill{
				AuthorID:          authorID,
				SkillName:         tag,
				TargetRoleID:      roleID,
				Level:             1,
				QuestionsAnswered: 1,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: skillKey,
				DoUpdates: clause.Assignments(map[string]interface{}{
					"questions_answered": gorm.Expr("user_skills.questions_answered + 1"),
					"level":              gorm.Expr("user_skills.level + 1"),
					"updated_at":         time.Now(),
				}),
			}).Create(&skill).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *skillRepository) IncrementVotes(ctx context.Context, authorID, roleID uuid.UUID, tags []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, tag := range tags {
			skill := entity.UserSkill{
				AuthorID:      authorID,
				SkillName:     tag,
				TargetRoleID:  roleID,
				Level:         1,
				VotesReceived: 1,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: skillKey,
				DoUpdates: clause.Assignments(map[string]interface{}{
					"votes_received": gorm.Expr("user_skills.votes_received + 1"),
					"updated_at":     time.Now(),
				}),
			}).Create(&skill).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *skillRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserSkill, error) {
	var skills []entity.UserSkill
	err := r.db.WithContext(ctx).
		Where("author_id = ?", userID).
		Order("skill_name asc").
		Order("created_at asc").
		Find(&skills).Error
	return skills, err
}

func (r *skillRepository) CreateIfAbsent(ctx context.Context, skills []entity.UserSkill) ([]entity.UserSkill, error) {
	created := make([]entity.UserSkill, 0, len(skills))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range skills {
			result := tx.Clauses(clause.OnConflict{Columns: skillKey, DoNothing: true}).Create(&skills[i])
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 1 {
				created = append(created, skills[i])
			}
		}
		return nil
	})
	return created, err
}

func (r *skillRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.UserSkill, error) {
	var skill entity.UserSkill
	if err := r.db.WithContext(ctx).First(&skill, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &skill, nil
}

var counterColumns = map[string]bool{
	"level":              true,
	"questions_answered": true,
	"votes_received":     true,
}

func (r *skillRepository) RaiseCounters(ctx context.Context, id uuid.UUID, counters map[string]int) error {
	updates := map[string]interface{}{"updated_at": time.Now()}
	for col, value := range counters {
		if !counterColumns[col] {
			return fmt.Errorf("unknown skill counter %q", col)
		}
		// SQLite has no GREATEST.
		updates[col] = gorm.Expr("CASE WHEN "+col+" < ? THEN ? ELSE "+col+" END", value, value)
	}

	result := r.db.WithContext(ctx).
		Model(&entity.UserSkill{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *skillRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&entity.UserSkill{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}
