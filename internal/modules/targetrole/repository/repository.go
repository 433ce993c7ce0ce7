package repository

import (
	"context"

	"anoa.com/careerhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TargetRoleRepository interface {
	Create(ctx context.Context, role *entity.UserTargetRole) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.UserTargetRole, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserTargetRole, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	// SkillsByRoles returns userID's skills scoped to any of roleIDs.
	SkillsByRoles(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) ([]entity.UserSkill, error)
}

type targetRoleRepository struct {
	db *gorm.DB
}

func NewTargetRoleRepository(db *gorm.DB) TargetRoleRepository {
	return &targetRoleRepository{db: db}
}

func (r *targetRoleRepository) Create(ctx context.Context, role *entity.UserTargetRole) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *targetRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.UserTargetRole, error) {
	var role entity.UserTargetRole
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *targetRoleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserTargetRole, error) {
	var roles []entity.UserTargetRole
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Order("id asc").
		Find(&roles).Error
	return roles, err
}

func (r *targetRoleRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&entity.UserTargetRole{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

func (r *targetRoleRepository) SkillsByRoles(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) ([]entity.UserSkill, error) {
	var skills []entity.UserSkill
	if len(roleIDs) == 0 {
		return skills, nil
	}
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND target_role_id IN ?", userID, roleIDs).
		Order("skill_name asc").
		Find(&skills).Error
	return skills, err
}
