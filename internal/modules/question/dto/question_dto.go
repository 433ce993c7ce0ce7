package dto

import (
	"time"

	"anoa.com/careerhub/internal/entity"
	"github.com/google/uuid"
)

type CreateQuestionRequest struct {
	AuthorID   uuid.UUID `json:"authorId" binding:"required"`
	Title      string    `json:"title" binding:"max=255"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	Difficulty string    `json:"difficulty"`
	Status     string    `json:"status" binding:"omitempty,oneof=draft published"`
}

// UpdateQuestionRequest leaves nil fields unchanged. A non-nil Tags replaces
// the whole tag set.
type UpdateQuestionRequest struct {
	AuthorID   uuid.UUID `json:"authorId" binding:"required"`
	Title      *string   `json:"title" binding:"omitempty,max=255"`
	Content    *string   `json:"content"`
	Tags       []string  `json:"tags"`
	Difficulty *string   `json:"difficulty"`
}

type DeleteQuestionQuery struct {
	AuthorID string `form:"authorId" binding:"required,uuid"`
}

type ListQuestionsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=draft published"`
}

type QuestionResponse struct {
	ID         uuid.UUID `json:"id"`
	AuthorID   uuid.UUID `json:"author_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	Difficulty string    `json:"difficulty"`
	Status     string    `json:"status"`
	Votes      int       `json:"votes"`
	IsSolved   bool      `json:"is_solved"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewQuestionResponse(q *entity.Question) QuestionResponse {
	return QuestionResponse{
		ID:         q.ID,
		AuthorID:   q.AuthorID,
		Title:      q.Title,
		Content:    q.Content,
		Tags:       q.TagNames(),
		Difficulty: q.Difficulty,
		Status:     q.Status,
		Votes:      q.Votes,
		IsSolved:   q.IsSolved,
		CreatedAt:  q.CreatedAt,
	}
}

func NewQuestionResponses(questions []entity.Question) []QuestionResponse {
	out := make([]QuestionResponse, 0, len(questions))
	for i := range questions {
		out = append(out, NewQuestionResponse(&questions[i]))
	}
	return out
}
