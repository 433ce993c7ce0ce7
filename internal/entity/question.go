package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DifficultyJunior = "Junior"
	DifficultyMid    = "Mid"
	DifficultySenior = "Senior"

	QuestionStatusDraft     = "draft"
	QuestionStatusPublished = "published"
)

type Question struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"author_id"`
	Title      string        `gorm:"size:255" json:"title"`
	Content    string        `gorm:"type:text" json:"content"`
	Difficulty string        `gorm:"size:10" json:"difficulty"`
	Status     string        `gorm:"size:20;not null;default:draft;index" json:"status"`
	Votes      int           `gorm:"not null;default:0" json:"votes"`
	IsSolved   bool          `gorm:"not null;default:false" json:"is_solved"`
	Tags       []QuestionTag `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time     `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) (err error) {
	if q.ID == uuid.Nil {
		q.ID, err = uuid.NewV7()
	}
	return
}

// TagNames returns the question's tags in insertion order.
func (q *Question) TagNames() []string {
	names := make([]string, 0, len(q.Tags))
	for _, t := range q.Tags {
		names = append(names, t.Tag)
	}
	return names
}

// QuestionTag stores one tag per row so tag-overlap filters stay plain SQL.
type QuestionTag struct {
	QuestionID uuid.UUID `gorm:"type:uuid;primaryKey" json:"question_id"`
	Tag        string    `gorm:"size:100;primaryKey;index" json:"tag"`
}

type Answer struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"question_id"`
	Question     *Question  `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"question,omitempty"`
	AuthorID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	Content      string     `gorm:"type:text" json:"content"`
	Votes        int        `gorm:"not null;default:0" json:"votes"`
	IsAccepted   bool       `gorm:"not null;default:false" json:"is_accepted"`
	TargetRoleID *uuid.UUID `gorm:"type:uuid" json:"target_role_id,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Answer) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}

// SkillScope is the target role key used for skill records; uuid.Nil when unscoped.
func (a *Answer) SkillScope() uuid.UUID {
	if a.TargetRoleID == nil {
		return uuid.Nil
	}
	return *a.TargetRoleID
}
