package format

import "strings"

// Grade buckets a 1-5 score for display.
type Grade int

const (
	GradePoor Grade = iota
	GradeFair
	GradeGood
)

// Grade icons. The colour circles are two columns wide in every terminal
// that renders emoji.
const (
	GoodIcon = "\U0001F7E2" // green circle
	FairIcon = "\U0001F7E1" // yellow circle
	PoorIcon = "\U0001F534" // red circle
)

// GradeOf buckets score: 4 and above is good, 3 and above fair.
func GradeOf(score float64) Grade {
	switch {
	case score >= 4:
		return GradeGood
	case score >= 3:
		return GradeFair
	default:
		return GradePoor
	}
}

// Icon returns the emoji for g.
func (g Grade) Icon() string {
	switch g {
	case GradeGood:
		return GoodIcon
	case GradeFair:
		return FairIcon
	default:
		return PoorIcon
	}
}

// ScoreBar draws score on a 0-max scale as width cells of filled and empty
// blocks, rounding to the nearest cell.
func ScoreBar(score, max float64, width int) string {
	if width <= 0 || max <= 0 {
		return ""
	}
	filled := int(score/max*float64(width) + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
