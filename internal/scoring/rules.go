// Package scoring holds the point and badge tables. Services receive a Rules
// value at construction time; nothing reads the tables from globals.
package scoring

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Event types written to point_logs.
const (
	EventQuestionPublished = "question_published"
	EventAnswerCreated     = "answer_created"
	EventAnswerAccepted    = "answer_accepted"
	EventUpvoteReceived    = "upvote_received"
	EventAdminAdjustment   = "admin_adjustment"
)

type BadgeRule struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Image       string `yaml:"image" json:"image"`
	Threshold   int    `yaml:"threshold" json:"threshold"`
}

type Rules struct {
	QuestionPublished  int            `yaml:"question_published"`
	AnswerAccepted     int            `yaml:"answer_accepted"`
	UpvoteReceived     int            `yaml:"upvote_received"`
	AnswerByDifficulty map[string]int `yaml:"answer_by_difficulty"`
	// DefaultDifficulty prices answers to questions with a missing or unknown difficulty.
	DefaultDifficulty string      `yaml:"default_difficulty"`
	Badges            []BadgeRule `yaml:"badges"`
}

func DefaultRules() Rules {
	return Rules{
		QuestionPublished: 5,
		AnswerAccepted:    25,
		UpvoteReceived:    2,
		AnswerByDifficulty: map[string]int{
			"Junior": 10,
			"Mid":    20,
			"Senior": 30,
		},
		DefaultDifficulty: "Junior",
		Badges: []BadgeRule{
			{Name: "Achiever I", Threshold: 100, Description: "Earned 100 points by sharing knowledge", Image: "/badges/achiever-1.png"},
			{Name: "Achiever II", Threshold: 250, Description: "Earned 250 points by sharing knowledge", Image: "/badges/achiever-2.png"},
			{Name: "Career Mastery", Threshold: 500, Description: "Earned 500 points and mastered the craft", Image: "/badges/career-mastery.png"},
		},
	}
}

// LoadRules overlays the YAML file at path onto DefaultRules. An empty path
// returns the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read scoring rules: %w", err)
	}

	var overlay Rules
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return Rules{}, fmt.Errorf("parse scoring rules: %w", err)
	}

	if overlay.QuestionPublished != 0 {
		rules.QuestionPublished = overlay.QuestionPublished
	}
	if overlay.AnswerAccepted != 0 {
		rules.AnswerAccepted = overlay.AnswerAccepted
	}
	if overlay.UpvoteReceived != 0 {
		rules.UpvoteReceived = overlay.UpvoteReceived
	}
	for k, v := range overlay.AnswerByDifficulty {
		rules.AnswerByDifficulty[k] = v
	}
	if overlay.DefaultDifficulty != "" {
		rules.DefaultDifficulty = overlay.DefaultDifficulty
	}
	if len(overlay.Badges) > 0 {
		rules.Badges = overlay.Badges
	}

	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules.normalized(), nil
}

func (r Rules) Validate() error {
	var errs []error

	if len(r.AnswerByDifficulty) == 0 {
		errs = append(errs, errors.New("answer_by_difficulty must not be empty"))
	}
	if _, ok := r.AnswerByDifficulty[r.DefaultDifficulty]; !ok {
		errs = append(errs, fmt.Errorf("default_difficulty %q has no points entry", r.DefaultDifficulty))
	}

	seen := make(map[string]bool, len(r.Badges))
	for _, b := range r.Badges {
		name := strings.TrimSpace(b.Name)
		if name == "" {
			errs = append(errs, errors.New("badge name must not be empty"))
			continue
		}
		if b.Threshold <= 0 {
			errs = append(errs, fmt.Errorf("badge %q threshold must be positive", name))
		}
		if seen[strings.ToLower(name)] {
			errs = append(errs, fmt.Errorf("duplicate badge %q", name))
		}
		seen[strings.ToLower(name)] = true
	}

	return errors.Join(errs...)
}

// normalized returns a copy with badges sorted ascending by threshold.
func (r Rules) normalized() Rules {
	badges := make([]BadgeRule, len(r.Badges))
	copy(badges, r.Badges)
	sort.SliceStable(badges, func(i, j int) bool { return badges[i].Threshold < badges[j].Threshold })
	r.Badges = badges
	return r
}

// AnswerPoints prices an answer by the parent question's difficulty.
func (r Rules) AnswerPoints(difficulty string) int {
	if p, ok := r.AnswerByDifficulty[difficulty]; ok {
		return p
	}
	return r.AnswerByDifficulty[r.DefaultDifficulty]
}

// Delta returns the points for a fixed event. difficulty is only read for
// EventAnswerCreated.
func (r Rules) Delta(event, difficulty string) (int, error) {
	switch event {
	case EventQuestionPublished:
		return r.QuestionPublished, nil
	case EventAnswerCreated:
		return r.AnswerPoints(difficulty), nil
	case EventAnswerAccepted:
		return r.AnswerAccepted, nil
	case EventUpvoteReceived:
		return r.UpvoteReceived, nil
	default:
		return 0, fmt.Errorf("unknown point event %q", event)
	}
}

// EarnedBadges lists every badge whose threshold is at or below points.
func (r Rules) EarnedBadges(points int) []BadgeRule {
	var earned []BadgeRule
	for _, b := range r.normalized().Badges {
		if b.Threshold <= points {
			earned = append(earned, b)
		}
	}
	return earned
}

// IsDifficulty reports whether d has a points entry.
func (r Rules) IsDifficulty(d string) bool {
	_, ok := r.AnswerByDifficulty[d]
	return ok
}
