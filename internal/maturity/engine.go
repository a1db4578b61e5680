package maturity

import (
	"time"

	"github.com/spiffcs/prscore/internal/model"
	"github.com/spiffcs/prscore/internal/signals"
	"github.com/spiffcs/prscore/internal/thresholds"
)

// DefaultStaleAfter is the open age beyond which the staleness penalty applies.
const DefaultStaleAfter = 7 * 24 * time.Hour

// StalePenalty is subtracted from maturity for stale open change requests.
const StalePenalty = 0.5

// Category weights in percent of the overall maturity.
const (
	weightM1 = 25
	weightM2 = 15
	weightM3 = 35
	weightM4 = 25
)

// Category identifiers.
const (
	CategoryCommits      = "M1"
	CategorySubmission   = "M2"
	CategoryReview       = "M3"
	CategoryObservations = "M4"
)

// Settings are the scoring options of a run.
type Settings struct {
	Legacy     bool
	Functional bool
	// StaleAfter defaults to DefaultStaleAfter when zero.
	StaleAfter time.Duration
	// DeclinedWindowDays is accepted for a future cross-submission lookup and
	// currently has no effect on the declined score.
	DeclinedWindowDays int
}

// Signal keys identify a scored signal in machine-readable output.
const (
	SignalCommitCount    = "commit_count"
	SignalAvgFiles       = "avg_files_per_commit"
	SignalAvgLines       = "avg_lines_per_commit"
	SignalCommitStandard = "commit_standard"
	SignalApprovals      = "approvals"
	SignalDeclined       = "declined"
	SignalBranch         = "branch_name"
	SignalCloseTime      = "close_time_hours"
	SignalLinesModified  = "lines_modified"
	SignalObservations   = "observations"
)

// ScoredSignal is one constituent of a category.
type ScoredSignal struct {
	Key    string  `json:"key"`
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Score  int     `json:"score"`
	Weight float64 `json:"weight"`
}

// Category is a weighted aggregate of scored signals.
type Category struct {
	ID      string         `json:"id"`
	Label   string         `json:"label"`
	Score   float64        `json:"score"`
	Signals []ScoredSignal `json:"signals"`
}

// Report is the full scoring result of one change request.
type Report struct {
	ChangeRequest   model.ChangeRequest `json:"changeRequest"`
	Signals         signals.Signals     `json:"signals"`
	Scores          Scores              `json:"scores"`
	Legacy          bool                `json:"legacy"`
	Functional      bool                `json:"functional"`
	Complexity      int                 `json:"complexity"`
	Categories      []Category          `json:"categories"`
	Unpenalized     float64             `json:"unpenalized"`
	Penalty         float64             `json:"penalty"`
	StaleAfter      time.Duration       `json:"staleAfter"`
	Maturity        float64             `json:"maturity"`
	Recommendations []Recommendation    `json:"recommendations"`
	GeneratedAt     time.Time           `json:"generatedAt"`
}

// Category returns the category with the given id, or nil.
func (r *Report) Category(id string) *Category {
	for i := range r.Categories {
		if r.Categories[i].ID == id {
			return &r.Categories[i]
		}
	}
	return nil
}

// Stale reports whether the staleness penalty was applied.
func (r *Report) Stale() bool {
	return r.Penalty > 0
}

// Engine scores snapshots.
type Engine struct {
	settings  Settings
	extractor *signals.Extractor
	// Now returns the reference instant for open change requests.
	Now func() time.Time
}

// NewEngine creates a scoring engine.
func NewEngine(settings Settings, extractor *signals.Extractor) *Engine {
	if settings.StaleAfter <= 0 {
		settings.StaleAfter = DefaultStaleAfter
	}
	return &Engine{
		settings:  settings,
		extractor: extractor,
		Now:       time.Now,
	}
}

// Score extracts signals from the snapshot and aggregates them into a Report.
func (e *Engine) Score(snap *model.Snapshot) *Report {
	now := e.Now()
	sig := e.extractor.Extract(snap, now)
	r := Aggregate(sig, e.settings)
	r.ChangeRequest = snap.ChangeRequest
	r.GeneratedAt = now
	return r
}

// Aggregate computes every score from extracted signals. It is a pure function
// of its inputs.
func Aggregate(sig signals.Signals, settings Settings) *Report {
	if settings.StaleAfter <= 0 {
		settings.StaleAfter = DefaultStaleAfter
	}

	sc := sizeScores(sig.CommitCount, sig.AvgFilesPerCommit, sig.AvgLinesPerCommit,
		sig.LinesModified, sig.ConformanceRatio, settings.Legacy)
	complexity := Complexity(settings.Functional, sc.CommitCount, sc.AvgFiles, sc.AvgLines, sc.LinesModified)

	sc.CloseTime = thresholds.ScoreByThresholds(sig.CloseHours, thresholds.CloseTime(complexity))
	sc.Observations = thresholds.ScoreByThresholds(float64(sig.Observations), thresholds.Observations(complexity))
	sc.Approvals = ApprovalsScore(sig.Approvals)
	sc.Declined = DeclinedScore(sig.Declined)
	sc.Branch = BranchScore(sig.BranchConforms)

	cats := []Category{
		newCategory(CategoryCommits, "Commits", []ScoredSignal{
			{Key: SignalCommitCount, Name: "Commit count", Value: float64(sig.CommitCount), Score: sc.CommitCount, Weight: 0.30},
			{Key: SignalAvgFiles, Name: "Avg files per commit", Value: sig.AvgFilesPerCommit, Score: sc.AvgFiles, Weight: 0.20},
			{Key: SignalAvgLines, Name: "Avg lines per commit", Value: sig.AvgLinesPerCommit, Score: sc.AvgLines, Weight: 0.20},
			{Key: SignalCommitStandard, Name: "Commit message standard", Value: sig.ConformanceRatio, Score: sc.CommitStandard, Weight: 0.30},
		}),
		newCategory(CategorySubmission, "Submission", []ScoredSignal{
			{Key: SignalApprovals, Name: "Approvals", Value: float64(sig.Approvals), Score: sc.Approvals, Weight: 0.50},
			{Key: SignalDeclined, Name: "Declined", Value: boolValue(sig.Declined), Score: sc.Declined, Weight: 0.20},
			{Key: SignalBranch, Name: "Branch name", Value: boolValue(sig.BranchConforms), Score: sc.Branch, Weight: 0.30},
		}),
		newCategory(CategoryReview, "Review", []ScoredSignal{
			{Key: SignalCloseTime, Name: "Close time (business hours)", Value: sig.CloseHours, Score: sc.CloseTime, Weight: 0.75},
			{Key: SignalLinesModified, Name: "Lines modified", Value: float64(sig.LinesModified), Score: sc.LinesModified, Weight: 0.25},
		}),
		newCategory(CategoryObservations, "Observations", []ScoredSignal{
			{Key: SignalObservations, Name: "Observations", Value: float64(sig.Observations), Score: sc.Observations, Weight: 1.0},
		}),
	}

	r := &Report{
		Signals:     sig,
		Scores:      sc,
		Legacy:      settings.Legacy,
		Functional:  settings.Functional,
		Complexity:  complexity,
		Categories:  cats,
		Unpenalized: Maturity(cats[0].Score, cats[1].Score, cats[2].Score, cats[3].Score),
		StaleAfter:  settings.StaleAfter,
	}
	r.Maturity = r.Unpenalized
	if sig.StillOpen && sig.Age > settings.StaleAfter {
		r.Penalty = StalePenalty
		r.Maturity = r.Unpenalized - StalePenalty
	}
	r.Recommendations = Recommend(r)
	return r
}

// Maturity combines the four category scores. No penalty is applied.
func Maturity(m1, m2, m3, m4 float64) float64 {
	return (weightM1*m1 + weightM2*m2 + weightM3*m3 + weightM4*m4) / 100
}

func newCategory(id, label string, sigs []ScoredSignal) Category {
	items := make([]WeightedItem, len(sigs))
	for i, s := range sigs {
		items[i] = WeightedItem{Score: s.Score, Weight: s.Weight}
	}
	return Category{ID: id, Label: label, Score: WeightedAvg(items), Signals: sigs}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
