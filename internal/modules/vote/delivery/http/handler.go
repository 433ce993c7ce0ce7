package http

import (
	"net/http"

	voteDto "anoa.com/careerhub/internal/modules/vote/dto"
	voteRepo "anoa.com/careerhub/internal/modules/vote/repository"
	voteService "anoa.com/careerhub/internal/modules/vote/service"
	"anoa.com/careerhub/pkg/response"
	"anoa.com/careerhub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VoteHandler struct {
	service voteService.VoteService
}

func NewVoteHandler(service voteService.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

func (h *VoteHandler) CastVote(c *gin.Context) {
	var req voteDto.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.CastVote(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	status := http.StatusOK
	if resp.Outcome == voteRepo.OutcomeRecorded {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

func (h *VoteHandler) GetVoteCount(c *gin.Context) {
	var query voteDto.VoteCountQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	counts, err := h.service.GetVoteCount(c.Request.Context(), uuid.MustParse(query.ItemID), query.ItemType)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, counts)
}

func (h *VoteHandler) GetVoterVote(c *gin.Context) {
	var query voteDto.VoterVoteQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	vote, err := h.service.GetVoterVote(c.Request.Context(), uuid.MustParse(query.VoterID), uuid.MustParse(query.ItemID), query.ItemType)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"voterVote": vote}})
}

func (h *VoteHandler) Reconcile(c *gin.Context) {
	var req voteDto.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.ReconcileItem(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
