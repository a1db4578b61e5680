package maturity

import (
	"math"

	"github.com/spiffcs/prscore/internal/thresholds"
)

// NonFunctionalComplexity is the complexity assigned to changes flagged as
// non-functional.
const NonFunctionalComplexity = 5

// Complexity weights over the size scores.
const (
	complexityCommitCountWeight = 0.20
	complexityAvgFilesWeight    = 0.25
	complexityAvgLinesWeight    = 0.25
	complexityLinesWeight       = 0.30
)

// CommitStandardScore scores the share of commit messages matching the
// configured pattern.
func CommitStandardScore(ratio float64) int {
	switch {
	case ratio >= 0.9:
		return 5
	case ratio >= 0.75:
		return 4
	case ratio >= 0.6:
		return 3
	case ratio >= 0.4:
		return 2
	default:
		return 1
	}
}

// ApprovalsScore scores the number of distinct approvers.
func ApprovalsScore(approvals int) int {
	switch {
	case approvals > 2:
		return 5
	case approvals == 2:
		return 4
	case approvals == 1:
		return 3
	default:
		return 2
	}
}

// DeclinedScore scores the submission's own close-without-merge outcome.
func DeclinedScore(declined bool) int {
	if declined {
		return 3
	}
	return 5
}

// BranchScore scores branch naming conformance.
func BranchScore(conforms bool) int {
	if conforms {
		return 5
	}
	return 2
}

// Complexity derives the 1-5 complexity level from the size scores. It never
// depends on close time or observations.
func Complexity(functional bool, commitCount, avgFiles, avgLines, linesModified int) int {
	if !functional {
		return NonFunctionalComplexity
	}
	avg := WeightedAvg([]WeightedItem{
		{Score: commitCount, Weight: complexityCommitCountWeight},
		{Score: avgFiles, Weight: complexityAvgFilesWeight},
		{Score: avgLines, Weight: complexityAvgLinesWeight},
		{Score: linesModified, Weight: complexityLinesWeight},
	})
	return clamp(int(math.Round(avg)), 1, 5)
}

// Scores holds every per-signal 1-5 score of a run.
type Scores struct {
	CommitCount    int `json:"commitCount"`
	AvgFiles       int `json:"avgFiles"`
	AvgLines       int `json:"avgLines"`
	CommitStandard int `json:"commitStandard"`
	LinesModified  int `json:"linesModified"`
	CloseTime      int `json:"closeTime"`
	Observations   int `json:"observations"`
	Approvals      int `json:"approvals"`
	Declined       int `json:"declined"`
	Branch         int `json:"branch"`
}

// sizeScores is phase one: everything complexity is derived from.
func sizeScores(commitCount int, avgFiles, avgLines float64, linesModified int, ratio float64, legacy bool) Scores {
	return Scores{
		CommitCount:    thresholds.ScoreByThresholds(float64(commitCount), thresholds.CommitCount()),
		AvgFiles:       thresholds.ScoreByThresholds(avgFiles, thresholds.AvgFilesPerCommit(legacy)),
		AvgLines:       thresholds.ScoreByThresholds(avgLines, thresholds.AvgLinesPerCommit(legacy)),
		LinesModified:  thresholds.ScoreByThresholds(float64(linesModified), thresholds.LinesModified(legacy)),
		CommitStandard: CommitStandardScore(ratio),
	}
}
