package http

import (
	"net/http"

	roleDto "anoa.com/careerhub/internal/modules/targetrole/dto"
	roleService "anoa.com/careerhub/internal/modules/targetrole/service"
	"anoa.com/careerhub/pkg/response"
	"anoa.com/careerhub/pkg/validator"
	"github.com/gin-gonic/gin"
)

type TargetRoleHandler struct {
	service roleService.TargetRoleService
}

func NewTargetRoleHandler(service roleService.TargetRoleService) *TargetRoleHandler {
	return &TargetRoleHandler{service: service}
}

func (h *TargetRoleHandler) AddRole(c *gin.Context) {
	var req roleDto.AddTargetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	role, err := h.service.AddRole(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": role})
}

func (h *TargetRoleHandler) ListRoles(c *gin.Context) {
	userID, err := response.ParamUUID(c, "userId")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	roles, err := h.service.ListRoles(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": roles})
}

func (h *TargetRoleHandler) ListRolesWithSkills(c *gin.Context) {
	userID, err := response.ParamUUID(c, "userId")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	roles, err := h.service.ListRolesWithSkills(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": roles})
}

func (h *TargetRoleHandler) DeleteRole(c *gin.Context) {
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteRole(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Target role deleted successfully"})
}
