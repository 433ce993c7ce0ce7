package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ItemTypeQuestion = "question"
	ItemTypeAnswer   = "answer"

	VoteTypeUp   = "upvote"
	VoteTypeDown = "downvote"
)

// Vote is one ledger row. At most one exists per (voter, item, item type).
type Vote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VoterID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_voter_item,priority:1" json:"voter_id"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_voter_item,priority:2;index:idx_votes_item,priority:1" json:"item_id"`
	ItemType  string    `gorm:"size:20;not null;uniqueIndex:idx_votes_voter_item,priority:3;index:idx_votes_item,priority:2" json:"item_type"`
	VoteType  string    `gorm:"size:10;not null" json:"vote_type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID, err = uuid.NewV7()
	}
	return
}

// Weight is the signed contribution of a vote type to an item counter.
func Weight(voteType string) int {
	if voteType == VoteTypeDown {
		return -1
	}
	return 1
}

// ItemTable maps an item type to the table holding its counter.
func ItemTable(itemType string) (string, bool) {
	switch itemType {
	case ItemTypeQuestion:
		return "questions", true
	case ItemTypeAnswer:
		return "answers", true
	default:
		return "", false
	}
}
