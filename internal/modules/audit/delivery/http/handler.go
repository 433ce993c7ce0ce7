package http

import (
	"net/http"

	auditService "anoa.com/careerhub/internal/modules/audit/service"
	"anoa.com/careerhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	service auditService.AuditService
}

func NewAuditHandler(service auditService.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// RunAudit runs a fresh audit unless ?cached=true asks for the last report.
func (h *AuditHandler) RunAudit(c *gin.Context) {
	if c.Query("cached") == "true" {
		if last := h.service.LastReport(); last != nil {
			c.JSON(http.StatusOK, gin.H{"data": last})
			return
		}
	}

	report, err := h.service.Run(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}
