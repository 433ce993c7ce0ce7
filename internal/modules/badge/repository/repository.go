package repository

import (
	"context"

	"anoa.com/careerhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Badge, error)
	FindByNames(ctx context.Context, names []string) ([]entity.Badge, error)
	ListCatalog(ctx context.Context) ([]entity.Badge, error)
	ListUserBadges(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error)
	// Award inserts the (user, badge) pair if absent and reports whether a row was created.
	Award(ctx context.Context, userID, badgeID uuid.UUID) (bool, error)
	UpdateImage(ctx context.Context, id uuid.UUID, imageURL string) error
}

type badgeRepository struct {
	db *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Badge, error) {
	var badge entity.Badge
	if err := r.db.WithContext(ctx).First(&badge, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &badge, nil
}

func (r *badgeRepository) FindByNames(ctx context.Context, names []string) ([]entity.Badge, error) {
	var badges []entity.Badge
	if len(names) == 0 {
		return badges, nil
	}
	err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&badges).Error
	return badges, err
}

func (r *badgeRepository) ListCatalog(ctx context.Context) ([]entity.Badge, error) {
	var badges []entity.Badge
	err := r.db.WithContext(ctx).Order("threshold asc").Find(&badges).Error
	return badges, err
}

func (r *badgeRepository) ListUserBadges(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error) {
	var userBadges []entity.UserBadge
	err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("awarded_at asc").
		Find(&userBadges).Error
	return userBadges, err
}

func (r *badgeRepository) Award(ctx context.Context, userID, badgeID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).
		Create(&entity.UserBadge{UserID: userID, BadgeID: badgeID})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *badgeRepository) UpdateImage(ctx context.Context, id uuid.UUID, imageURL string) error {
	return r.db.WithContext(ctx).Model(&entity.Badge{}).Where("id = ?", id).Update("image", imageURL).Error
}
