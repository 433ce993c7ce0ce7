package dto

import (
	"time"

	"anoa.com/careerhub/internal/entity"
	badgeDto "anoa.com/careerhub/internal/modules/badge/dto"
	"anoa.com/careerhub/internal/scoring"
	"github.com/google/uuid"
)

type QuestionSummary struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Tags       []string  `json:"tags"`
	Difficulty string    `json:"difficulty"`
	Votes      int       `json:"votes"`
	IsSolved   bool      `json:"is_solved"`
	CreatedAt  time.Time `json:"created_at"`
}

type AnswerSummary struct {
	ID            uuid.UUID `json:"id"`
	QuestionID    uuid.UUID `json:"question_id"`
	QuestionTitle string    `json:"question_title"`
	Votes         int       `json:"votes"`
	IsAccepted    bool      `json:"is_accepted"`
	CreatedAt     time.Time `json:"created_at"`
}

type RoleProgress struct {
	RoleID            uuid.UUID         `json:"role_id"`
	RoleName          string            `json:"role_name"`
	Timeline          string            `json:"timeline"`
	Skills            []string          `json:"skills"`
	RolePoints        int               `json:"role_points"`
	MatchingAnswers   int               `json:"matching_answers"`
	MatchingQuestions int               `json:"matching_questions"`
	RecentQuestions   []QuestionSummary `json:"recent_questions"`
	RecentAnswers     []AnswerSummary   `json:"recent_answers"`
}

type UserSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	JobTitle   string    `json:"job_title"`
	BandLevel  string    `json:"band_level"`
	Department string    `json:"department"`
}

type Dashboard struct {
	User          UserSummary                  `json:"user"`
	Points        int                          `json:"points"`
	BadgeProgress scoring.BadgeProgress        `json:"badge_progress"`
	Badges        []badgeDto.UserBadgeResponse `json:"badges"`
	Skills        []entity.UserSkill           `json:"skills"`
	TargetRoles   []RoleProgress               `json:"target_roles"`
}

func NewQuestionSummary(q entity.Question) QuestionSummary {
	return QuestionSummary{
		ID:         q.ID,
		Title:      q.Title,
		Tags:       q.TagNames(),
		Difficulty: q.Difficulty,
		Votes:      q.Votes,
		IsSolved:   q.IsSolved,
		CreatedAt:  q.CreatedAt,
	}
}

func NewAnswerSummary(a entity.Answer) AnswerSummary {
	s := AnswerSummary{
		ID:         a.ID,
		QuestionID: a.QuestionID,
		Votes:      a.Votes,
		IsAccepted: a.IsAccepted,
		CreatedAt:  a.CreatedAt,
	}
	if a.Question != nil {
		s.QuestionTitle = a.Question.Title
	}
	return s
}
