package scoring

import "math"

const MaxLevel = "Max Level"

// BadgeProgress describes how far a user is from the next badge threshold.
type BadgeProgress struct {
	CurrentBadge  string  `json:"current_badge"`
	NextBadge     string  `json:"next_badge"`
	CurrentPoints int     `json:"current_points"`
	TargetPoints  int     `json:"target_points"`
	Progress      float64 `json:"progress"` // 0-100, two decimals
}

// Progress computes badge progress for a points total. Users below the first
// threshold have an empty CurrentBadge.
func (r Rules) Progress(points int) BadgeProgress {
	status := BadgeProgress{CurrentPoints: points}
	badges := r.normalized().Badges

	if len(badges) == 0 {
		status.NextBadge = MaxLevel
		status.Progress = 100
		return status
	}

	next := -1
	for i, b := range badges {
		if points >= b.Threshold {
			status.CurrentBadge = b.Name
			continue
		}
		next = i
		break
	}

	if next == -1 {
		last := badges[len(badges)-1]
		status.NextBadge = MaxLevel
		status.TargetPoints = last.Threshold
		status.Progress = 100
		return status
	}

	status.NextBadge = badges[next].Name
	status.TargetPoints = badges[next].Threshold
	if points > 0 {
		status.Progress = float64(points) / float64(status.TargetPoints) * 100
	}
	status.Progress = math.Round(status.Progress*100) / 100

	return status
}
