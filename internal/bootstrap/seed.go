package bootstrap

import (
	"context"

	"anoa.com/careerhub/internal/entity"
	"anoa.com/careerhub/internal/scoring"
	"anoa.com/careerhub/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.UserTargetRole{},
		&entity.Question{},
		&entity.QuestionTag{},
		&entity.Answer{},
		&entity.Vote{},
		&entity.UserSkill{},
		&entity.Badge{},
		&entity.UserBadge{},
		&entity.PointLog{},
		&entity.Notification{},
	)
}

// SeedBadges inserts any catalog badge from rules that is not present yet.
// Existing rows are left untouched so uploaded artwork survives restarts.
func SeedBadges(ctx context.Context, db *gorm.DB, rules scoring.Rules) error {
	for _, b := range rules.Badges {
		badge := entity.Badge{
			Name:        b.Name,
			Description: b.Description,
			Image:       b.Image,
			Threshold:   b.Threshold,
		}

		result := db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&badge)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 1 {
			logger.Info().Str("badge", b.Name).Int("threshold", b.Threshold).Msg("seeded badge")
		}
	}

	return nil
}
