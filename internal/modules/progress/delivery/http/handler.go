package http

import (
	"net/http"

	progressService "anoa.com/careerhub/internal/modules/progress/service"
	"anoa.com/careerhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	service progressService.ProgressService
}

func NewProgressHandler(service progressService.ProgressService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

func (h *ProgressHandler) GetDashboard(c *gin.Context) {
	userID, err := response.ParamUUID(c, "userId")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	dashboard, err := h.service.Dashboard(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dashboard})
}

func (h *ProgressHandler) GetRoleProgress(c *gin.Context) {
	userID, err := response.ParamUUID(c, "userId")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	roleID, err := response.ParamUUID(c, "roleId")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	progress, err := h.service.RoleProgress(c.Request.Context(), userID, roleID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": progress})
}
