package dto

import "github.com/google/uuid"

type CreateAnswerRequest struct {
	QuestionID   uuid.UUID  `json:"questionId" binding:"required"`
	AuthorID     uuid.UUID  `json:"authorId" binding:"required"`
	Content      string     `json:"content" binding:"required"`
	TargetRoleID *uuid.UUID `json:"targetRoleId"`
}

type UpdateAnswerRequest struct {
	AuthorID uuid.UUID `json:"authorId" binding:"required"`
	Content  string    `json:"content" binding:"required"`
}
