package http

import (
	"net/http"

	answerDto "anoa.com/careerhub/internal/modules/answer/dto"
	answerService "anoa.com/careerhub/internal/modules/answer/service"
	"anoa.com/careerhub/pkg/response"
	"anoa.com/careerhub/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AnswerHandler struct {
	service answerService.AnswerService
}

func NewAnswerHandler(service answerService.AnswerService) *AnswerHandler {
	return &AnswerHandler{service: service}
}

func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	var req answerDto.CreateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	answer, err := h.service.CreateAnswer(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": answer})
}

func (h *AnswerHandler) ListByQuestion(c *gin.Context) {
	questionID, err := response.ParamUUID(c, "questionId")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	answers, err := h.service.ListByQuestion(c.Request.Context(), questionID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": answers})
}

func (h *AnswerHandler) AcceptAnswer(c *gin.Context) {
	answerID, err := response.ParamUUID(c, "answerId")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	answer, err := h.service.AcceptAnswer(c.Request.Context(), answerID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Answer accepted successfully", "data": answer})
}

func (h *AnswerHandler) UpdateAnswer(c *gin.Context) {
	answerID, err := response.ParamUUID(c, "answerId")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req answerDto.UpdateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	answer, err := h.service.UpdateAnswer(c.Request.Context(), answerID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Answer updated successfully", "data": answer})
}
