package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/spiffcs/prscore/internal/duration"
	"github.com/spiffcs/prscore/internal/format"
	"github.com/spiffcs/prscore/internal/maturity"
)

// CommentMarker tags the report comment so later runs edit it in place.
const CommentMarker = "<!-- prscore-report -->"

// MarkdownFormatter renders the report as a pull request comment.
type MarkdownFormatter struct{}

// Format writes the report as Markdown
func (f *MarkdownFormatter) Format(r *maturity.Report, w io.Writer) error {
	var b strings.Builder
	cr := r.ChangeRequest

	b.WriteString(CommentMarker + "\n")
	fmt.Fprintf(&b, "## PR maturity: %s#%d\n\n", cr.Repository, cr.Number)
	if cr.Title != "" {
		title := escapeMarkdown(cr.Title)
		if cr.HTMLURL != "" {
			title = fmt.Sprintf("[%s](%s)", title, cr.HTMLURL)
		}
		fmt.Fprintf(&b, "**%s**", title)
		if cr.Author != "" {
			fmt.Fprintf(&b, " by @%s", cr.Author)
		}
		b.WriteString("\n\n")
	}

	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| **Maturity** | %s **%.1f** / 5 |\n", format.GradeOf(r.Maturity).Icon(), maturity.Round1(r.Maturity))
	fmt.Fprintf(&b, "| State | %s |\n", stateLabel(r))
	fmt.Fprintf(&b, "| Size | %s |\n", format.SizeLabel(cr.Additions, cr.Deletions, format.DefaultSizeBounds))
	fmt.Fprintf(&b, "| Complexity | %d / 5 (%s) |\n", r.Complexity, changeKind(r))
	fmt.Fprintf(&b, "| Thresholds | %s |\n", profile(r))
	b.WriteString("\n")

	if r.Stale() {
		fmt.Fprintf(&b, "> **Stale:** open for %s, longer than %s. %.1f was deducted from %.1f.\n\n",
			duration.Days(r.Signals.Age), duration.Days(r.StaleAfter), r.Penalty, maturity.Round1(r.Unpenalized))
	}

	for _, c := range r.Categories {
		fmt.Fprintf(&b, "### %s %s: %.1f\n\n", c.ID, c.Label, maturity.Round1(c.Score))
		b.WriteString("| Signal | Value | Score | Weight |\n|---|---:|---:|---:|\n")
		for _, s := range c.Signals {
			fmt.Fprintf(&b, "| %s | %s | %d | %.0f%% |\n", s.Name, signalValue(s), s.Score, s.Weight*100)
		}
		b.WriteString("\n")
	}

	b.WriteString("### Recommendations\n\n")
	if len(r.Recommendations) == 0 {
		b.WriteString("Nothing to improve.\n")
	}
	for _, rec := range r.Recommendations {
		fmt.Fprintf(&b, "- %s\n", rec.Message)
	}

	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "\n<sub>Generated %s</sub>\n", r.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func changeKind(r *maturity.Report) string {
	if r.Functional {
		return "functional"
	}
	return "non-functional"
}

func profile(r *maturity.Report) string {
	if r.Legacy {
		return "legacy repository"
	}
	return "standard"
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "[", `\[`, "]", `\]`, "*", `\*`, "_", `\_`, "`", "\\`")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
