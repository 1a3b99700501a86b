package finsight

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"

	// RoleSystem and RoleContext never appear in a rendered transcript.
	// The demo backend stores them as the hidden preamble of a session.
	RoleSystem  Role = "system"
	RoleContext Role = "context"
)
