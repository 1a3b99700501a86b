package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/finsight/finsight"
)

// Interface compliance check.
var _ finsight.Surface = (*Surface)(nil)

// Surface implements [finsight.Surface] by forwarding append and clear
// events to the Bubble Tea model through a buffered channel. Conversations
// call it from command goroutines; the model drains it with a listen
// command that re-arms after every event.
type Surface struct {
	events chan tea.Msg
}

// NewSurface creates a Surface ready to attach to conversations.
func NewSurface() *Surface {
	return &Surface{events: make(chan tea.Msg, 256)}
}

// Append implements finsight.Surface.
func (s *Surface) Append(container string, role finsight.Role, text string) {
	s.events <- SurfaceEventMsg{Container: container, Role: role, Text: text}
}

// Clear implements finsight.Surface.
func (s *Surface) Clear(container string) {
	s.events <- SurfaceEventMsg{Container: container, Clear: true}
}

// listenSurface waits for the next surface event. The channel never
// closes; the model re-issues the command after each message.
func listenSurface(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}
