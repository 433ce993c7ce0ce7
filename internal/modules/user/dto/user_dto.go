package dto

import "github.com/google/uuid"

type CreateUserRequest struct {
	ID          *uuid.UUID `json:"id"`
	Email       string     `json:"email" binding:"required,email"`
	Name        string     `json:"name" binding:"required,max=100"`
	JobTitle    string     `json:"jobTitle" binding:"max=100"`
	BandLevel   string     `json:"bandLevel" binding:"max=20"`
	Department  string     `json:"department" binding:"max=100"`
	AccountType string     `json:"accountType" binding:"omitempty,oneof=user admin"`
}

// UpdateProfileRequest only touches the fields that are present.
type UpdateProfileRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=1,max=100"`
	JobTitle   *string `json:"jobTitle" binding:"omitempty,max=100"`
	BandLevel  *string `json:"bandLevel" binding:"omitempty,max=20"`
	Department *string `json:"department" binding:"omitempty,max=100"`
}
