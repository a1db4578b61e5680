// Package thresholds maps metric values to 1-5 scores through ordered range tables.
package thresholds

// Range admits values in [Min, Max]. A nil bound is open.
type Range struct {
	Min   *float64
	Max   *float64
	Score int
}

// Table is an ordered list of ranges. Order is priority: ranges may overlap and
// the first match wins.
type Table []Range

// FallbackScore is returned when no range in a table admits the value.
const FallbackScore = 1

// Admits reports whether v lies inside the range (inclusive bounds).
func (r Range) Admits(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// ScoreByThresholds returns the score of the first range admitting value.
func ScoreByThresholds(value float64, table Table) int {
	for _, r := range table {
		if r.Admits(value) {
			return r.Score
		}
	}
	return FallbackScore
}

// AtMost builds a range with only an upper bound.
func AtMost(max float64, score int) Range {
	return Range{Max: &max, Score: score}
}

// AtLeast builds a range with only a lower bound.
func AtLeast(min float64, score int) Range {
	return Range{Min: &min, Score: score}
}

// Between builds a range with both bounds.
func Between(min, max float64, score int) Range {
	return Range{Min: &min, Max: &max, Score: score}
}

// Any builds an unbounded range.
func Any(score int) Range {
	return Range{Score: score}
}
