package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointLog is the append-only history of point changes. Summing Points per
// user reproduces users.points.
type PointLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;index:idx_point_logs_user_date,priority:1;not null" json:"user_id"`
	EventType      string    `gorm:"size:50;not null" json:"event_type"`
	Points         int       `gorm:"not null" json:"points"`
	ReferenceID    string    `gorm:"size:36" json:"reference_id"`
	ReferenceTable string    `gorm:"size:50" json:"reference_table"`
	CreatedAt      time.Time `gorm:"index:idx_point_logs_user_date,priority:2" json:"created_at"`
}

type UserSkill struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_skills_key,priority:1" json:"author_id"`
	SkillName         string    `gorm:"size:100;not null;uniqueIndex:idx_user_skills_key,priority:2" json:"skill_name"`
	TargetRoleID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_skills_key,priority:3" json:"target_role_id"`
	Level             int       `gorm:"not null;default:1" json:"level"`
	QuestionsAnswered int       `gorm:"not null;default:0" json:"questions_answered"`
	VotesReceived     int       `gorm:"not null;default:0" json:"votes_received"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *UserSkill) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}

type Badge struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"type:text" json:"image"`
	Threshold   int       `gorm:"not null" json:"threshold"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (b *Badge) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID, err = uuid.NewV7()
	}
	return
}

// UserBadge rows are only ever inserted.
type UserBadge struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_badges_pair,priority:1" json:"user_id"`
	BadgeID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_badges_pair,priority:2" json:"badge_id"`
	Badge     Badge     `gorm:"foreignKey:BadgeID" json:"badge"`
	AwardedAt time.Time `gorm:"not null" json:"awarded_at"`
}

func (ub *UserBadge) BeforeCreate(tx *gorm.DB) (err error) {
	if ub.ID == uuid.Nil {
		ub.ID, err = uuid.NewV7()
	}
	if ub.AwardedAt.IsZero() {
		ub.AwardedAt = time.Now()
	}
	return
}

// NormalizeTag is applied to question tags and skill names so both sides of
// a tag/skill comparison agree.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags normalizes, drops blanks and de-duplicates while keeping order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
