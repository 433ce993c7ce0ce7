package repository

import (
	"context"

	"anoa.com/careerhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PointsDrift is a user whose stored total disagrees with the point log.
type PointsDrift struct {
	UserID  uuid.UUID
	Stored  int
	Derived int
}

type PointsRepository interface {
	// WithTx binds the repository to an open transaction.
	WithTx(tx *gorm.DB) PointsRepository
	// ApplyDelta increments users.points by entry.Points, appends entry to
	// the point log and returns the new total. Fails with
	// gorm.ErrRecordNotFound for an unknown user.
	ApplyDelta(ctx context.Context, entry *entity.PointLog) (int, error)
	// SetPoints overwrites the total under a row lock and logs the difference.
	SetPoints(ctx context.Context, userID uuid.UUID, points int, eventType string) (previous int, err error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]entity.PointLog, error)
	GetTopUsers(ctx context.Context, limit int) ([]entity.User, error)
	FindDrift(ctx context.Context) ([]PointsDrift, error)
}

type pointsRepository struct {
	db *gorm.DB
}

func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &pointsRepository{db: db}
}

func (r *pointsRepository) WithTx(tx *gorm.DB) PointsRepository {
	return &pointsRepository{db: tx}
}

func (r *pointsRepository) ApplyDelta(ctx context.Context, entry *entity.PointLog) (int, error) {
	var total int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.User{}).
			Where("id = ?", entry.UserID).
			Update("points", gorm.Expr("points + ?", entry.Points))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		var user entity.User
		if err := tx.Select("points").First(&user, "id = ?", entry.UserID).Error; err != nil {
			return err
		}
		total = user.Points
		return nil
	})
	return total, err
}

func (r *pointsRepository) SetPoints(ctx context.Context, userID uuid.UUID, points int, eventType string) (int, error) {
	var previous int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user entity.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "points").
			First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		previous = user.Points

		if err := tx.Model(&entity.User{}).Where("id = ?", userID).Update("points", points).Error; err != nil {
			return err
		}

		if delta := points - previous; delta != 0 {
			return tx.Create(&entity.PointLog{
				UserID:         userID,
				EventType:      eventType,
				Points:         delta,
				ReferenceID:    userID.String(),
				ReferenceTable: "users",
			}).Error
		}
		return nil
	})
	return previous, err
}

func (r *pointsRepository) History(ctx context.Context, userID uuid.UUID, limit int) ([]entity.PointLog, error) {
	var logs []entity.PointLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *pointsRepository) GetTopUsers(ctx context.Context, limit int) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Order("points desc").
		Order("created_at asc").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *pointsRepository) FindDrift(ctx context.Context) ([]PointsDrift, error) {
	var rows []PointsDrift
	err := r.db.WithContext(ctx).
		Table("users AS u").
		Select("u.id AS user_id, u.points AS stored, COALESCE(SUM(pl.points), 0) AS derived").
		Joins("LEFT JOIN point_logs pl ON pl.user_id = u.id").
		Group("u.id, u.points").
		Having("u.points <> COALESCE(SUM(pl.points), 0)").
		Scan(&rows).Error
	return rows, err
}
