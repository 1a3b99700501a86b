package bubbletea

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/finsight/finsight"
)

var _ tea.Model = Model{}

// Heights of fixed chrome rows in the dashboard layout.
const (
	widgetHeight  = 8
	overlayChrome = 4 // title, blank, input, status
)

var tabNames = []string{"Overview", "Forecast", "Transactions"}

// Model is the Bubble Tea model for the FinSIGHT TUI.
type Model struct {
	// Input is the chat input component. Exported for test access.
	Input textinput.Model
	// Viewport is the overlay chat transcript. Exported for test access.
	Viewport viewport.Model
	// WidgetViewport is the inline chat transcript. Exported for test access.
	WidgetViewport viewport.Model

	data    DashboardClient
	surface *Surface
	widget  *finsight.Conversation
	overlay *finsight.Conversation

	styles      Styles
	transcripts map[string]*transcript

	snapshot     *finsight.Snapshot
	tab          int
	showWidget   bool
	showOverlay  bool
	sending      bool
	syncing      bool
	generating   bool
	notice       string
	err          error
	width        int
	height       int
	ready        bool
}

// Option configures a [Model].
type Option func(*config)

type config struct {
	convOpts []finsight.ConversationOption
}

// WithConversationOptions passes options through to both of the model's
// conversations.
func WithConversationOptions(opts ...finsight.ConversationOption) Option {
	return func(c *config) { c.convOpts = append(c.convOpts, opts...) }
}

// New creates a TUI Model over the given chat backend and dashboard data
// client.
func New(backend finsight.Backend, data DashboardClient, theme finsight.Theme, opts ...Option) Model {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}

	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = ""
	ti.CharLimit = 0

	styles := NewStyles(theme)
	surface := NewSurface()
	placeholder := "Ask FinSIGHT about your spending, forecast, or goals."

	return Model{
		Input:   ti,
		data:    data,
		surface: surface,
		widget:  finsight.NewConversation(backend, surface, ContainerWidget, cfg.convOpts...),
		overlay: finsight.NewConversation(backend, surface, ContainerOverlay, cfg.convOpts...),
		styles:  styles,
		transcripts: map[string]*transcript{
			ContainerWidget:  newTranscript(theme, styles, placeholder),
			ContainerOverlay: newTranscript(theme, styles, placeholder),
		},
	}
}

// Err returns the last dashboard operation error, if any.
func (m Model) Err() error { return m.err }

// Sending returns whether a chat message is in flight.
func (m Model) Sending() bool { return m.sending }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		listenSurface(m.surface.events),
		m.loadDashboard(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SurfaceEventMsg:
		m = m.applySurfaceEvent(msg)
		return m, listenSurface(m.surface.events)

	case DashboardMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		snap := msg.Snapshot
		m.snapshot = &snap
		m.err = nil
		return m, nil

	case ChatStartedMsg:
		cmd := m.Input.Focus()
		return m, cmd

	case ChatSentMsg:
		m.sending = false
		cmd := m.Input.Focus()
		return m, cmd

	case SyncDoneMsg:
		m.syncing = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.notice = fmt.Sprintf("Synced %d new transactions", msg.Result.TransactionsAdded)
		return m, m.loadDashboard()

	case ConfirmDoneMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.notice = msg.Message
		return m, m.loadDashboard()

	case InsightDoneMsg:
		m.generating = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.notice = "Insight updated"
		return m, m.loadDashboard()
	}

	// Pass remaining messages to sub-components. The active transcript
	// viewport always receives them for scrolling.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if m.showOverlay {
		m.Viewport, cmd = m.Viewport.Update(msg)
	} else {
		m.WidgetViewport, cmd = m.WidgetViewport.Update(msg)
	}
	cmds = append(cmds, cmd)

	if m.chatVisible() && !m.sending {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.showOverlay {
		return m.overlayView()
	}
	return m.dashboardView()
}

func (m Model) chatVisible() bool {
	return m.showOverlay || m.showWidget
}

func (m Model) activeConversation() *finsight.Conversation {
	if m.showOverlay {
		return m.overlay
	}
	return m.widget
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	overlayH := msg.Height - overlayChrome
	if overlayH < 1 {
		overlayH = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, overlayH)
		m.WidgetViewport = viewport.New(msg.Width, widgetHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = overlayH
		m.WidgetViewport.Width = msg.Width
	}

	m = m.refreshTranscript(ContainerOverlay)
	m = m.refreshTranscript(ContainerWidget)
	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEsc:
		// Closing a surface drops its session but keeps rendered
		// entries; a pending reply still lands in the hidden container.
		if m.showOverlay {
			m.showOverlay = false
			m.overlay.EndSession()
			if !m.showWidget {
				m.Input.Blur()
			}
			return m, nil
		}
		if m.showWidget {
			m.showWidget = false
			m.widget.EndSession()
			m.Input.Blur()
		}
		return m, nil

	case tea.KeyEnter:
		if !m.chatVisible() || m.sending {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		m.Input.SetValue("")
		m.sending = true
		m.notice = ""
		return m, sendMessage(m.activeConversation(), text)

	case tea.KeyTab:
		m.tab = (m.tab + 1) % len(tabNames)
		return m, nil

	case tea.KeyShiftTab:
		m.tab = (m.tab - 1 + len(tabNames)) % len(tabNames)
		return m, nil

	case tea.KeyCtrlN:
		if !m.chatVisible() {
			return m, nil
		}
		conv := m.activeConversation()
		conv.Reset()
		return m, startConversation(conv)
	}

	// Dashboard shortcuts only apply while no chat input is capturing
	// keystrokes.
	if !m.chatVisible() && msg.Type == tea.KeyRunes {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "c":
			// Opening a surface never starts a session; the first
			// send or an explicit ctrl+n does.
			m.showWidget = true
			m.notice = ""
			return m, m.Input.Focus()
		case "o":
			m.showOverlay = true
			m.notice = ""
			return m, m.Input.Focus()
		case "s":
			if m.syncing {
				return m, nil
			}
			m.syncing = true
			m.notice = ""
			return m, m.syncTransactions()
		case "i":
			if m.generating {
				return m, nil
			}
			m.generating = true
			m.notice = ""
			return m, m.generateInsight()
		case "r":
			return m, m.loadDashboard()
		case "y":
			return m.resolvePending(finsight.ActionConfirm)
		case "x":
			return m.resolvePending(finsight.ActionReject)
		}
		return m, nil
	}

	// Chat mode: non-character keys scroll the transcript, everything
	// goes to the input.
	if m.chatVisible() && !m.sending {
		var cmds []tea.Cmd
		var cmd tea.Cmd

		if msg.Type != tea.KeyRunes {
			if m.showOverlay {
				m.Viewport, cmd = m.Viewport.Update(msg)
			} else {
				m.WidgetViewport, cmd = m.WidgetViewport.Update(msg)
			}
			cmds = append(cmds, cmd)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) applySurfaceEvent(msg SurfaceEventMsg) Model {
	t, ok := m.transcripts[msg.Container]
	if !ok {
		// Events for unregistered containers are dropped.
		return m
	}
	if msg.Clear {
		t.clear()
	} else {
		t.append(finsight.Message{Role: msg.Role, Text: msg.Text})
	}
	return m.refreshTranscript(msg.Container)
}

func (m Model) refreshTranscript(container string) Model {
	t, ok := m.transcripts[container]
	if !ok || !m.ready {
		return m
	}
	switch container {
	case ContainerOverlay:
		m.Viewport.SetContent(t.view(m.Viewport.Width))
		m.Viewport.GotoBottom()
	case ContainerWidget:
		m.WidgetViewport.SetContent(t.view(m.WidgetViewport.Width))
		m.WidgetViewport.GotoBottom()
	}
	return m
}

func (m Model) resolvePending(action string) (tea.Model, tea.Cmd) {
	if m.snapshot == nil || len(m.snapshot.PendingConfirmations) == 0 {
		return m, nil
	}
	id := m.snapshot.PendingConfirmations[0].ID
	m.notice = ""
	return m, m.confirmRecurring(id, action)
}

func (m Model) loadDashboard() tea.Cmd {
	data := m.data
	return func() tea.Msg {
		snap, err := data.Dashboard(context.Background())
		return DashboardMsg{Snapshot: snap, Err: err}
	}
}

func (m Model) syncTransactions() tea.Cmd {
	data := m.data
	return func() tea.Msg {
		result, err := data.SyncTransactions(context.Background(), true)
		return SyncDoneMsg{Result: result, Err: err}
	}
}

func (m Model) confirmRecurring(id int, action string) tea.Cmd {
	data := m.data
	return func() tea.Msg {
		message, err := data.ConfirmRecurring(context.Background(), id, action)
		return ConfirmDoneMsg{Message: message, Err: err}
	}
}

func (m Model) generateInsight() tea.Cmd {
	data := m.data
	return func() tea.Msg {
		_, err := data.GenerateInsight(context.Background())
		return InsightDoneMsg{Err: err}
	}
}

// startConversation starts a chat session in a goroutine. Any outcome is
// already rendered to the surface by the conversation; the message only
// re-focuses the input.
func startConversation(conv *finsight.Conversation) tea.Cmd {
	return func() tea.Msg {
		err := conv.Start(context.Background())
		return ChatStartedMsg{Err: err}
	}
}

// sendMessage sends a chat message in a goroutine.
func sendMessage(conv *finsight.Conversation, text string) tea.Cmd {
	return func() tea.Msg {
		err := conv.Send(context.Background(), text)
		return ChatSentMsg{Err: err}
	}
}
