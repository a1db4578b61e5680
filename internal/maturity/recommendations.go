package maturity

import "fmt"

// Recommendation codes. Codes are stable; messages may change.
const (
	RecCommitCount       = "commit-count"
	RecAvgFiles          = "avg-files"
	RecAvgLines          = "avg-lines"
	RecCommitStandard    = "commit-standard"
	RecBranchName        = "branch-name"
	RecUnresolvedThreads = "unresolved-threads"
	RecCloseTime         = "close-time"
	RecApprovals         = "approvals"
	RecStale             = "stale"
)

// Recommendation is an advisory note triggered by a low sub-score.
type Recommendation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Recommend lists the advisory notes for a report in a fixed order.
func Recommend(r *Report) []Recommendation {
	var recs []Recommendation
	add := func(code, format string, args ...any) {
		recs = append(recs, Recommendation{Code: code, Message: fmt.Sprintf(format, args...)})
	}

	sc, sig := r.Scores, r.Signals
	if sc.CommitCount <= 2 {
		add(RecCommitCount, "Split the work into smaller pull requests; %d commits is a lot to review.", sig.CommitCount)
	}
	if sc.AvgFiles <= 2 {
		add(RecAvgFiles, "Keep commits focused; they touch %.1f files on average.", sig.AvgFilesPerCommit)
	}
	if sc.AvgLines <= 2 {
		add(RecAvgLines, "Keep commits small; they change %.1f lines on average.", sig.AvgLinesPerCommit)
	}
	if sc.CommitStandard <= 3 {
		add(RecCommitStandard, "Follow the commit message convention; only %d of %d commits conform.",
			sig.ConformingCommits, sig.CommitCount)
	}
	if !sig.BranchConforms {
		add(RecBranchName, "Rename branch %q to follow the branch naming convention.", sig.BranchName)
	}
	if sig.OpenThreads > 0 {
		add(RecUnresolvedThreads, "Resolve the %d open review thread(s).", sig.OpenThreads)
	}
	if sc.CloseTime <= 2 {
		add(RecCloseTime, "Review turnaround of %.1f business hours is outside the expected range for this complexity.", sig.CloseHours)
	}
	if sc.Approvals <= 2 {
		add(RecApprovals, "Get at least one approving review before merging.")
	}
	if r.Stale() {
		add(RecStale, "This pull request has been open for %d days; merge or close it.", int(sig.Age.Hours()/24))
	}
	return recs
}
