package finsight

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ConversationState is the lifecycle state of a Conversation.
type ConversationState int

const (
	StateNoSession ConversationState = iota // No backend session exists.
	StateStarting                           // StartChat request in flight.
	StateActive                             // Session established.
	StateError                              // Last start attempt failed.
)

// transportFailureText is rendered when the backend cannot be reached at
// all, as opposed to the backend reporting a structured error.
const transportFailureText = "Error: unable to reach the FinSIGHT backend"

// Conversation drives one chat surface. It lazily starts a backend
// session, echoes user messages optimistically, and renders replies into
// its container through the Surface. Construct one Conversation per
// container; all methods are safe for concurrent use.
type Conversation struct {
	backend   Backend
	surface   Surface
	container string
	logger    *zap.Logger

	// opMu serializes Start/Send/Reset so overlapping sends cannot
	// interleave their echo/reply pairs.
	opMu sync.Mutex

	// mu guards the fields below.
	mu        sync.Mutex
	state     ConversationState
	sessionID string
}

// ConversationOption configures a Conversation.
type ConversationOption func(*Conversation)

// WithLogger sets the logger used for transport failures and session
// lifecycle events. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) ConversationOption {
	return func(c *Conversation) { c.logger = logger }
}

// NewConversation creates a controller that renders into the given
// container of surface.
func NewConversation(backend Backend, surface Surface, container string, opts ...ConversationOption) *Conversation {
	c := &Conversation{
		backend:   backend,
		surface:   surface,
		container: container,
		logger:    zap.NewNop(),
		state:     StateNoSession,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State reports the controller's current lifecycle state.
func (c *Conversation) State() ConversationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SessionID returns the active backend session id, empty when none.
func (c *Conversation) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Container returns the container id this controller renders into.
func (c *Conversation) Container() string {
	return c.container
}

// Start creates a fresh backend session, replacing any existing one. The
// backend's initial assistant message, when present, is rendered into the
// container. A backend-reported error is rendered as an assistant entry
// carrying the error text and leaves the controller without a session.
func (c *Conversation) Start(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.start(ctx)
}

// start must be called with opMu held.
func (c *Conversation) start(ctx context.Context) error {
	c.setState(StateStarting, "")

	chat, err := c.backend.StartChat(ctx)
	if err != nil {
		c.setState(StateError, "")
		c.renderFailure("start chat", err)
		return err
	}

	c.setState(StateActive, chat.SessionID)
	if chat.Initial != "" {
		c.surface.Append(c.container, RoleAssistant, chat.Initial)
	}
	c.logger.Info("chat session started", zap.String("session_id", chat.SessionID))
	return nil
}

// Send renders text as a user entry, dispatches it to the backend, and
// renders the reply as an assistant entry. When no session is active one
// is started first; if that start fails the send aborts without echoing
// the user text. Within a single call the echo always lands before the
// request is dispatched and the reply always lands after the response
// arrives. Empty or whitespace-only text is rejected with
// ErrEmptyMessage.
func (c *Conversation) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	if c.State() != StateActive {
		if err := c.start(ctx); err != nil {
			return err
		}
	}
	sessionID := c.SessionID()

	c.surface.Append(c.container, RoleUser, text)

	reply, err := c.backend.SendChat(ctx, sessionID, text)
	if err != nil {
		// The session is retained so a retry reuses it.
		c.renderFailure("send message", err)
		return err
	}

	c.surface.Append(c.container, RoleAssistant, reply)
	return nil
}

// Reset drops the session and clears the container. The backend is not
// notified; the next Send or Start creates a fresh session.
func (c *Conversation) Reset() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.setState(StateNoSession, "")
	c.surface.Clear(c.container)
}

// EndSession drops the session without clearing the container. Used when
// a chat surface closes: rendered entries stay visible if it reopens, but
// the next send starts a fresh backend session.
func (c *Conversation) EndSession() {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.setState(StateNoSession, "")
}

func (c *Conversation) setState(state ConversationState, sessionID string) {
	c.mu.Lock()
	c.state = state
	c.sessionID = sessionID
	c.mu.Unlock()
}

// renderFailure renders err into the container. Backend-reported errors
// become "Error: <text>" assistant entries; anything else is a transport
// failure, logged and rendered as a generic failure line.
func (c *Conversation) renderFailure(op string, err error) {
	var be *BackendError
	if errors.As(err, &be) {
		c.surface.Append(c.container, RoleAssistant, "Error: "+be.Message)
		return
	}
	c.logger.Warn("chat request failed", zap.String("op", op), zap.Error(err))
	c.surface.Append(c.container, RoleAssistant, transportFailureText)
}
