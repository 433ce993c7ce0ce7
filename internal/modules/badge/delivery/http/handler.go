package http

import (
	"net/http"

	badgeService "anoa.com/careerhub/internal/modules/badge/service"
	"anoa.com/careerhub/pkg/response"
	"github.com/gin-gonic/gin"
)

const maxBadgeImageSize = 2 << 20

type BadgeHandler struct {
	service badgeService.BadgeService
}

func NewBadgeHandler(service badgeService.BadgeService) *BadgeHandler {
	return &BadgeHandler{service: service}
}

func (h *BadgeHandler) GetCatalog(c *gin.Context) {
	badges, err := h.service.Catalog(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": badges})
}

func (h *BadgeHandler) GetUserBadges(c *gin.Context) {
	userID, err := response.ParamUUID(c, "userId")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	badges, err := h.service.UserBadges(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": badges})
}

// UploadImage accepts a multipart "image" field.
func (h *BadgeHandler) UploadImage(c *gin.Context) {
	badgeID, err := response.ParamUUID(c, "badgeId")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if fileHeader.Size > maxBadgeImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image must be at most 2MB"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}
	defer file.Close()

	badge, err := h.service.UploadImage(c.Request.Context(), badgeID, file, fileHeader.Filename)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": badge})
}
