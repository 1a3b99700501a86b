// Package bubbletea provides the Bubble Tea TUI for the FinSIGHT
// dashboard: tabbed views over the dashboard snapshot plus two chat
// surfaces, an inline widget and a full-screen overlay, each driven by
// its own conversation.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/finsight/finsight"
)

// Containers the TUI registers with its conversations. Surface events
// addressed to any other container are dropped.
const (
	ContainerWidget  = "chat-widget"
	ContainerOverlay = "chat-overlay"
)

// DashboardClient is the data surface of the FinSIGHT backend the TUI
// reads and mutates outside of chat. [api.Client] satisfies it.
type DashboardClient interface {
	Dashboard(ctx context.Context) (finsight.Snapshot, error)
	SyncTransactions(ctx context.Context, force bool) (finsight.SyncResult, error)
	ConfirmRecurring(ctx context.Context, id int, action string) (string, error)
	GenerateInsight(ctx context.Context) (string, error)
}

// Run creates and runs the Bubble Tea TUI program. It blocks until the
// program exits. The context is used for graceful shutdown: when
// cancelled, the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// SurfaceEventMsg delivers one surface append or clear to the model.
type SurfaceEventMsg struct {
	Container string
	Role      finsight.Role
	Text      string
	Clear     bool
}

// DashboardMsg delivers a dashboard snapshot load result.
type DashboardMsg struct {
	Snapshot finsight.Snapshot
	Err      error
}

// ChatStartedMsg signals that a conversation start attempt finished.
type ChatStartedMsg struct {
	Err error
}

// ChatSentMsg signals that a message send attempt finished.
type ChatSentMsg struct {
	Err error
}

// SyncDoneMsg delivers a transaction sync result.
type SyncDoneMsg struct {
	Result finsight.SyncResult
	Err    error
}

// ConfirmDoneMsg delivers the outcome of a pending-payment decision.
type ConfirmDoneMsg struct {
	Message string
	Err     error
}

// InsightDoneMsg signals that insight generation finished.
type InsightDoneMsg struct {
	Err error
}
