// Package mock provides test doubles for finsight interfaces using function fields.
package mock

import (
	"context"

	"github.com/finsight/finsight"
)

// Interface compliance check.
var _ finsight.Backend = (*Backend)(nil)

// Backend is a test double for finsight.Backend.
// Set the function fields for the methods you need.
type Backend struct {
	StartChatFn func(ctx context.Context) (finsight.ChatStart, error)
	SendChatFn  func(ctx context.Context, sessionID, message string) (string, error)
}

// StartChat delegates to StartChatFn.
func (b *Backend) StartChat(ctx context.Context) (finsight.ChatStart, error) {
	return b.StartChatFn(ctx)
}

// SendChat delegates to SendChatFn.
func (b *Backend) SendChat(ctx context.Context, sessionID, message string) (string, error) {
	return b.SendChatFn(ctx, sessionID, message)
}
