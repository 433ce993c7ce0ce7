package service

import (
	"anoa.com/careerhub/internal/entity"
	"anoa.com/careerhub/internal/scoring"
)

// RolePoints is the result of scoring a user's activity against a skill set.
type RolePoints struct {
	Points            int
	MatchingAnswers   int
	MatchingQuestions int
}

// ComputeRolePoints scores the answers and published questions whose tags
// intersect skillSet. Answers must carry their Question with Tags loaded.
// The result depends only on its arguments.
func ComputeRolePoints(rules scoring.Rules, skillSet []string, answers []entity.Answer, questions []entity.Question) RolePoints {
	set := make(map[string]struct{}, len(skillSet))
	for _, s := range entity.NormalizeTags(skillSet) {
		set[s] = struct{}{}
	}

	var out RolePoints
	if len(set) == 0 {
		return out
	}

	for _, a := range answers {
		if a.Question == nil || !intersects(set, a.Question.Tags) {
			continue
		}
		out.MatchingAnswers++
		out.Points += rules.AnswerPoints(a.Question.Difficulty) + a.Votes*rules.UpvoteReceived
		if a.IsAccepted {
			out.Points += rules.AnswerAccepted
		}
	}

	for _, q := range questions {
		if q.Status != entity.QuestionStatusPublished || !intersects(set, q.Tags) {
			continue
		}
		out.MatchingQuestions++
		out.Points += rules.QuestionPublished
	}

	return out
}

func intersects(set map[string]struct{}, tags []entity.QuestionTag) bool {
	for _, t := range tags {
		if _, ok := set[entity.NormalizeTag(t.Tag)]; ok {
			return true
		}
	}
	return false
}
