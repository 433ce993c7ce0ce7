package dto

import (
	"anoa.com/careerhub/internal/entity"
	"github.com/google/uuid"
)

type AddTargetRoleRequest struct {
	UserID   uuid.UUID `json:"userId" binding:"required"`
	RoleName string    `json:"roleName" binding:"required,max=100"`
	Timeline string    `json:"timeline" binding:"max=50"`
}

type TargetRoleWithSkills struct {
	entity.UserTargetRole
	Skills []entity.UserSkill `json:"skills"`
}
