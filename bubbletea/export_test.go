package bubbletea

import tea "github.com/charmbracelet/bubbletea"

// SetSending marks a chat message as in flight, for tests.
func SetSending(m Model) Model {
	m.sending = true
	return m
}

// Drain receives one pending surface event, for tests.
func Drain(s *Surface) tea.Msg {
	return <-s.events
}

// WrapText exports wrapText for testing.
func WrapText(s string, w int) string { return wrapText(s, w) }

// Cell exports cell for testing.
func Cell(s string, w int) string { return cell(s, w) }

// FitHeight exports fitHeight for testing.
func FitHeight(s string, h int) string { return fitHeight(s, h) }
