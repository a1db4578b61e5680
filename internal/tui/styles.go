package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/spiffcs/prscore/internal/format"
)

type palette struct {
	name    lipgloss.Style
	dim     lipgloss.Style
	message lipgloss.Style
	err     lipgloss.Style
	warn    lipgloss.Style
	spinner lipgloss.Style
	user    lipgloss.Style
	footer  lipgloss.Style
	good    lipgloss.Style
	fair    lipgloss.Style
	poor    lipgloss.Style
}

var theme = palette{
	name:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	message: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	err:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	spinner: lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
	user:    lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true),
	footer:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1),
	good:    lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true),
	fair:    lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true),
	poor:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
}

var (
	iconPending  = theme.dim.Render("○")
	iconComplete = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render("✓")
	iconError    = theme.err.Render("✗")
	iconSkipped  = theme.dim.Render("–")
)

// StatusIcon returns the icon for a task status. Running tasks show the
// current spinner frame.
func StatusIcon(status TaskStatus, spinnerFrame string) string {
	switch status {
	case StatusRunning:
		return theme.spinner.Render(spinnerFrame)
	case StatusComplete:
		return iconComplete
	case StatusError:
		return iconError
	case StatusSkipped:
		return iconSkipped
	default:
		return iconPending
	}
}

// scoreStyle colours a maturity value by its report grade.
func scoreStyle(score float64) lipgloss.Style {
	switch format.GradeOf(score) {
	case format.GradeGood:
		return theme.good
	case format.GradeFair:
		return theme.fair
	default:
		return theme.poor
	}
}
