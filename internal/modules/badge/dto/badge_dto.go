package dto

import (
	"time"

	"anoa.com/careerhub/internal/entity"
	"github.com/google/uuid"
)

type UserBadgeResponse struct {
	BadgeID     uuid.UUID `json:"badge_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Threshold   int       `json:"threshold"`
	AwardedAt   time.Time `json:"awarded_at"`
}

func NewUserBadgeResponse(ub entity.UserBadge) UserBadgeResponse {
	return UserBadgeResponse{
		BadgeID:     ub.BadgeID,
		Name:        ub.Badge.Name,
		Description: ub.Badge.Description,
		Image:       ub.Badge.Image,
		Threshold:   ub.Badge.Threshold,
		AwardedAt:   ub.AwardedAt,
	}
}
