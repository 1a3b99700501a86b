package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/finsight/finsight"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	UserMsg     lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Muted       lipgloss.Style
	Accent      lipgloss.Style
	Title       lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t finsight.Theme) Styles {
	return Styles{
		UserMsg:     lipgloss.NewStyle().Foreground(ansiColor(t.UserMsg)).Bold(true),
		Error:       lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Success:     lipgloss.NewStyle().Foreground(ansiColor(t.Success)),
		Warning:     lipgloss.NewStyle().Foreground(ansiColor(t.Warning)),
		Muted:       lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:      lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		Title:       lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		TabActive:   lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true).Underline(true),
		TabInactive: lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
