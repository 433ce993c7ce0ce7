package dto

import (
	"anoa.com/careerhub/internal/scoring"
	"github.com/google/uuid"
)

// LeaderboardEntry is one ranked user. Position is 1-based.
type LeaderboardEntry struct {
	Position      int                   `json:"position"`
	UserID        uuid.UUID             `json:"user_id"`
	Name          string                `json:"name"`
	JobTitle      string                `json:"job_title"`
	Points        int                   `json:"points"`
	BadgeProgress scoring.BadgeProgress `json:"badge_progress"`
}

type SetPointsRequest struct {
	Points *int `json:"points" binding:"required,gte=0"`
}

type PointsResponse struct {
	UserID         uuid.UUID `json:"user_id"`
	PreviousPoints int       `json:"previous_points"`
	Points         int       `json:"points"`
	BadgesAwarded  []string  `json:"badges_awarded"`
}

type PointsDrift struct {
	UserID  uuid.UUID `json:"user_id"`
	Stored  int       `json:"stored"`
	Derived int       `json:"derived"`
	Drift   int       `json:"drift"`
}
