package dto

import "github.com/google/uuid"

type AddSkillsRequest struct {
	AuthorID     uuid.UUID  `json:"authorId" binding:"required"`
	TargetRoleID *uuid.UUID `json:"targetRoleId"`
	SkillNames   []string   `json:"skillNames" binding:"required,min=1,dive,required,max=100"`
}

// UpdateSkillRequest fields are optional; counters may only grow.
type UpdateSkillRequest struct {
	Level             *int `json:"level" binding:"omitempty,gte=1"`
	QuestionsAnswered *int `json:"questionsAnswered" binding:"omitempty,gte=0"`
	VotesReceived     *int `json:"votesReceived" binding:"omitempty,gte=0"`
}
