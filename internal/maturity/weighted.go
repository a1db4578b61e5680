// Package maturity combines per-signal scores into category scores (M1 to M4)
// and the overall maturity of a change request.
package maturity

import "math"

// WeightedItem is a 1-5 score with a non-negative weight.
type WeightedItem struct {
	Score  int     `json:"score"`
	Weight float64 `json:"weight"`
}

// WeightedAvg returns sum(score*weight)/sum(weight), or 0 when the total weight
// is 0. Uniform scores average to themselves exactly.
func WeightedAvg(items []WeightedItem) float64 {
	var sum, total float64
	first, uniform := 0, true
	for _, it := range items {
		if it.Weight <= 0 {
			continue
		}
		if total == 0 {
			first = it.Score
		} else if it.Score != first {
			uniform = false
		}
		sum += float64(it.Score) * it.Weight
		total += it.Weight
	}
	if total == 0 {
		return 0
	}
	if uniform {
		return float64(first)
	}
	return sum / total
}

// Round1 rounds to one decimal place for display.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
