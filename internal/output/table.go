package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/spiffcs/prscore/internal/duration"
	"github.com/spiffcs/prscore/internal/format"
	"github.com/spiffcs/prscore/internal/maturity"
)

// TableFormatter formats the report as a terminal summary
type TableFormatter struct{}

const (
	colSignal = 30
	colValue  = 10
	colScore  = 5
	barWidth  = 10
	maxTitle  = 60
)

// stdoutIsTerminal is replaced in tests.
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// hyperlink creates a clickable terminal hyperlink using OSC 8
// Format: \033]8;;URL\033\\TEXT\033]8;;\033\\
func hyperlink(text, url string) string {
	if url == "" || !stdoutIsTerminal() {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

// colorScore colours a score by its grade.
func colorScore(score float64, text string) string {
	switch format.GradeOf(score) {
	case format.GradeGood:
		return color.GreenString(text)
	case format.GradeFair:
		return color.YellowString(text)
	default:
		return color.RedString(text)
	}
}

// Format outputs the report as a table
func (f *TableFormatter) Format(r *maturity.Report, w io.Writer) error {
	var b strings.Builder
	cr := r.ChangeRequest
	bold := color.New(color.Bold).SprintFunc()

	ref := fmt.Sprintf("%s#%d", cr.Repository, cr.Number)
	title, _ := format.TruncateToWidth(cr.Title, maxTitle)
	fmt.Fprintf(&b, "%s  %s  [%s]\n", bold(hyperlink(ref, cr.HTMLURL)), title, stateLabel(r))

	meta := []string{
		"size " + format.SizeLabel(cr.Additions, cr.Deletions, format.DefaultSizeBounds),
		fmt.Sprintf("complexity %d/5 %s", r.Complexity, changeKind(r)),
		profile(r) + " thresholds",
	}
	if r.Signals.StillOpen {
		meta = append(meta, "opened "+format.FormatAge(r.Signals.Age)+" ago")
	} else {
		meta = append(meta, "closed after "+format.FormatBusinessHours(r.Signals.CloseHours)+" of work time")
	}
	if cr.Author != "" {
		meta = append([]string{"by " + cr.Author}, meta...)
	}
	fmt.Fprintf(&b, "%s\n\n", color.HiBlackString(strings.Join(meta, " · ")))

	score := maturity.Round1(r.Maturity)
	fmt.Fprintf(&b, "%s  %s  %s / 5\n",
		bold(format.PadRight("Maturity", len("Maturity"), colSignal)),
		colorScore(r.Maturity, format.ScoreBar(r.Maturity, 5, barWidth)),
		colorScore(r.Maturity, fmt.Sprintf("%.1f", score)))
	if r.Stale() {
		fmt.Fprintf(&b, "%s\n", color.YellowString("stale: open %s (limit %s), %.1f deducted from %.1f",
			duration.Days(r.Signals.Age), duration.Days(r.StaleAfter), r.Penalty, maturity.Round1(r.Unpenalized)))
	}
	b.WriteString("\n")

	for _, c := range r.Categories {
		heading := fmt.Sprintf("%s %s", c.ID, c.Label)
		fmt.Fprintf(&b, "%s  %s  %s\n",
			bold(format.PadRight(heading, format.DisplayWidth(heading), colSignal)),
			colorScore(c.Score, format.ScoreBar(c.Score, 5, barWidth)),
			colorScore(c.Score, fmt.Sprintf("%.1f", maturity.Round1(c.Score))))

		for _, s := range c.Signals {
			name, nameWidth := format.TruncateToWidth("  "+s.Name, colSignal)
			value := signalValue(s)
			fmt.Fprintf(&b, "%s  %s  %s\n",
				format.PadRight(name, nameWidth, colSignal),
				format.PadRight(value, format.DisplayWidth(value), colValue),
				colorScore(float64(s.Score), fmt.Sprintf("%*d", colScore, s.Score)))
		}
		b.WriteString("\n")
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintf(&b, "%s\n", bold("Recommendations"))
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "  • %s\n", rec.Message)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
