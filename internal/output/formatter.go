package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/spiffcs/prscore/internal/maturity"
)

// Format represents the output format
type Format string

const (
	FormatTable      Format = "table"
	FormatJSON       Format = "json"
	FormatMarkdown   Format = "markdown"
	FormatPrometheus Format = "prometheus"
)

// Formats lists every supported format.
var Formats = []Format{FormatTable, FormatMarkdown, FormatJSON, FormatPrometheus}

// Formatter renders a maturity report.
type Formatter interface {
	Format(report *maturity.Report, w io.Writer) error
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want one of %s)", s, formatList())
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	case FormatPrometheus:
		return &PrometheusFormatter{}
	default:
		return &TableFormatter{}
	}
}

// signalValue renders a raw signal value the way the category tables show it.
func signalValue(s maturity.ScoredSignal) string {
	switch s.Key {
	case maturity.SignalDeclined, maturity.SignalBranch:
		if s.Value > 0 {
			return "yes"
		}
		return "no"
	case maturity.SignalCommitStandard:
		return fmt.Sprintf("%.0f%%", s.Value*100)
	case maturity.SignalCloseTime:
		return fmt.Sprintf("%.1fh", s.Value)
	}
	if s.Value == float64(int64(s.Value)) {
		return fmt.Sprintf("%d", int64(s.Value))
	}
	return fmt.Sprintf("%.1f", s.Value)
}

// stateLabel describes the change request lifecycle state.
func stateLabel(r *maturity.Report) string {
	cr := r.ChangeRequest
	switch {
	case cr.Merged:
		return "merged"
	case cr.IsOpen():
		return "open"
	default:
		return "closed"
	}
}
