package service

import (
	"slices"
	"testing"

	"anoa.com/careerhub/internal/entity"
	"anoa.com/careerhub/internal/scoring"
	"github.com/stretchr/testify/assert"
)

func question(difficulty, status string, tags ...string) *entity.Question {
	q := &entity.Question{Difficulty: difficulty, Status: status}
	for _, t := range tags {
		q.Tags = append(q.Tags, entity.QuestionTag{Tag: t})
	}
	return q
}

func fixtureActivity() ([]entity.Answer, []entity.Question) {
	answers := []entity.Answer{
		{Question: question(entity.DifficultySenior, entity.QuestionStatusPublished, "sql"), Votes: 3, IsAccepted: true},
		{Question: question(entity.DifficultyMid, entity.QuestionStatusPublished, "SQL", "postgres"), Votes: -1},
		{Question: question(entity.DifficultyJunior, entity.QuestionStatusPublished, "go"), Votes: 10, IsAccepted: true},
		{Votes: 4}, // question not loaded
	}
	questions := []entity.Question{
		*question(entity.DifficultyJunior, entity.QuestionStatusPublished, "postgres"),
		*question(entity.DifficultyJunior, entity.QuestionStatusDraft, "sql"),
		*question(entity.DifficultyJunior, entity.QuestionStatusPublished, "python"),
	}
	return answers, questions
}

func TestComputeRolePoints(t *testing.T) {
	rules := scoring.DefaultRules()
	answers, questions := fixtureActivity()

	got := ComputeRolePoints(rules, []string{"sql", " Postgres "}, answers, questions)

	// (30 + 3*2 + 25) + (20 - 1*2) + 5
	assert.Equal(t, 84, got.Points)
	assert.Equal(t, 2, got.MatchingAnswers)
	assert.Equal(t, 1, got.MatchingQuestions)
}

func TestComputeRolePoints_EmptySkillSet(t *testing.T) {
	answers, questions := fixtureActivity()
	assert.Zero(t, ComputeRolePoints(scoring.DefaultRules(), nil, answers, questions))
	assert.Zero(t, ComputeRolePoints(scoring.DefaultRules(), []string{" "}, answers, questions))
}

func TestComputeRolePoints_Deterministic(t *testing.T) {
	rules := scoring.DefaultRules()
	answers, questions := fixtureActivity()
	skills := []string{"go", "sql"}

	first := ComputeRolePoints(rules, skills, answers, questions)
	second := ComputeRolePoints(rules, skills, answers, questions)
	assert.Equal(t, first, second)

	slices.Reverse(answers)
	slices.Reverse(questions)
	slices.Reverse(skills)
	assert.Equal(t, first, ComputeRolePoints(rules, skills, answers, questions))
}

func TestComputeRolePoints_InjectedRules(t *testing.T) {
	rules := scoring.DefaultRules()
	rules.AnswerByDifficulty = map[string]int{"Junior": 1, "Mid": 2, "Senior": 3}
	rules.UpvoteReceived = 0
	rules.AnswerAccepted = 100
	rules.QuestionPublished = 0

	answers, questions := fixtureActivity()
	got := ComputeRolePoints(rules, []string{"sql"}, answers, questions)
	assert.Equal(t, 3+100+2, got.Points)
}
