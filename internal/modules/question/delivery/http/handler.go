package http

import (
	"net/http"

	questionDto "anoa.com/careerhub/internal/modules/question/dto"
	questionService "anoa.com/careerhub/internal/modules/question/service"
	"anoa.com/careerhub/pkg/response"
	"anoa.com/careerhub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QuestionHandler struct {
	service questionService.QuestionService
}

func NewQuestionHandler(service questionService.QuestionService) *QuestionHandler {
	return &QuestionHandler{service: service}
}

func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req questionDto.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	question, err := h.service.CreateQuestion(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": question})
}

func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	question, err := h.service.GetQuestion(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": question})
}

func (h *QuestionHandler) PublishQuestion(c *gin.Context) {
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	question, err := h.service.PublishQuestion(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": question})
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req questionDto.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	question, err := h.service.UpdateQuestion(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question updated successfully", "data": question})
}

func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query questionDto.DeleteQuestionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.DeleteQuestion(c.Request.Context(), id, uuid.MustParse(query.AuthorID)); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted"})
}

func (h *QuestionHandler) ListByAuthor(c *gin.Context) {
	userID, err := response.ParamUUID(c, "userId")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query questionDto.ListQuestionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	questions, err := h.service.ListByAuthor(c.Request.Context(), userID, query.Status)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": questions})
}
