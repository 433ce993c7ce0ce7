package dto

import "github.com/google/uuid"

type CastVoteRequest struct {
	VoterID  uuid.UUID `json:"voterId" binding:"required"`
	ItemID   uuid.UUID `json:"itemId" binding:"required"`
	ItemType string    `json:"itemType" binding:"required,oneof=question answer"`
	VoteType string    `json:"voteType" binding:"required,oneof=upvote downvote"`
}

type CastVoteResponse struct {
	Message      string  `json:"message"`
	Outcome      string  `json:"outcome"`
	VoterVote    *string `json:"voterVote"`
	NewVoteCount int     `json:"newVoteCount"`
}

type VoteCountQuery struct {
	ItemID   string `form:"itemId" binding:"required,uuid"`
	ItemType string `form:"itemType" binding:"required,oneof=question answer"`
}

type VoterVoteQuery struct {
	VoterID  string `form:"voterId" binding:"required,uuid"`
	ItemID   string `form:"itemId" binding:"required,uuid"`
	ItemType string `form:"itemType" binding:"required,oneof=question answer"`
}

type VoteCountResponse struct {
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
	Total     int64 `json:"total"`
}

type ReconcileRequest struct {
	ItemID   uuid.UUID `json:"itemId" binding:"required"`
	ItemType string    `json:"itemType" binding:"required,oneof=question answer"`
	Fix      bool      `json:"fix"`
}

type ReconcileResponse struct {
	ItemID   uuid.UUID `json:"itemId"`
	ItemType string    `json:"itemType"`
	Stored   int       `json:"stored"`
	Derived  int       `json:"derived"`
	Drift    int       `json:"drift"`
	Fixed    bool      `json:"fixed"`
}

type ItemDrift struct {
	ItemID   uuid.UUID `json:"itemId"`
	ItemType string    `json:"itemType"`
	Stored   int       `json:"stored"`
	Derived  int       `json:"derived"`
}
