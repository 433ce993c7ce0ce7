package http

import (
	"net/http"

	skillDto "anoa.com/careerhub/internal/modules/skill/dto"
	skillService "anoa.com/careerhub/internal/modules/skill/service"
	"anoa.com/careerhub/pkg/response"
	"anoa.com/careerhub/pkg/validator"
	"github.com/gin-gonic/gin"
)

type SkillHandler struct {
	service skillService.SkillService
}

func NewSkillHandler(service skillService.SkillService) *SkillHandler {
	return &SkillHandler{service: service}
}

func (h *SkillHandler) ListSkills(c *gin.Context) {
	userID, err := response.ParamUUID(c, "userId")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	skills, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": skills})
}

func (h *SkillHandler) AddSkills(c *gin.Context) {
	var req skillDto.AddSkillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	created, err := h.service.AddSkills(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Skills added", "data": created})
}

func (h *SkillHandler) UpdateSkill(c *gin.Context) {
	id, err := response.ParamUUID(c, "skillId")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req skillDto.UpdateSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	skill, err := h.service.UpdateSkill(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": skill})
}

func (h *SkillHandler) DeleteSkill(c *gin.Context) {
	id, err := response.ParamUUID(c, "skillId")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteSkill(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Skill deleted successfully"})
}
