package http

import (
	"net/http"
	"strconv"

	pointsDto "anoa.com/careerhub/internal/modules/points/dto"
	pointsService "anoa.com/careerhub/internal/modules/points/service"
	"anoa.com/careerhub/pkg/response"
	"anoa.com/careerhub/pkg/validator"
	"github.com/gin-gonic/gin"
)

type PointsHandler struct {
	service pointsService.PointsService
}

func NewPointsHandler(service pointsService.PointsService) *PointsHandler {
	return &PointsHandler{service: service}
}

func (h *PointsHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	leaderboard, err := h.service.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": leaderboard})
}

func (h *PointsHandler) GetHistory(c *gin.Context) {
	userID, err := response.ParamUUID(c, "userId")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	logs, err := h.service.History(c.Request.Context(), userID, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": logs})
}

func (h *PointsHandler) SetPoints(c *gin.Context) {
	userID, err := response.ParamUUID(c, "userId")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req pointsDto.SetPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.SetPoints(c.Request.Context(), userID, *req.Points)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
