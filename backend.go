package finsight

import "context"

// ChatStart describes a newly created chat session. Initial holds the
// backend's opening assistant message, empty when the backend sent none.
type ChatStart struct {
	SessionID string
	Initial   string
}

// Backend is a strategy pattern interface for the chat API the
// conversation controller talks to. Implementations return *BackendError
// when the backend itself reports a failure; any other error is a
// transport failure.
type Backend interface {
	StartChat(ctx context.Context) (ChatStart, error)
	SendChat(ctx context.Context, sessionID, message string) (string, error)
}
