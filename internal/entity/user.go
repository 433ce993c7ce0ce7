package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AccountTypeUser  = "user"
	AccountTypeAdmin = "admin"
)

// User mirrors the identity system's record. Points is owned by the points module.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	JobTitle    string    `gorm:"size:100" json:"job_title"`
	BandLevel   string    `gorm:"size:20" json:"band_level"`
	Department  string    `gorm:"size:100" json:"department"`
	AccountType string    `gorm:"size:20;not null;default:user" json:"account_type"`
	Points      int       `gorm:"not null;default:0" json:"points"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	return
}

// UserTargetRole is a career goal declared by a user. Skills scoped to it
// carry its ID in UserSkill.TargetRoleID.
type UserTargetRole struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	RoleName  string    `gorm:"size:100;not null" json:"role_name"`
	Timeline  string    `gorm:"size:50" json:"timeline"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *UserTargetRole) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
