package chat

import (
	"context"
	"fmt"
	"strings"
)

// validateSend enforces the send contract before anything touches the store:
// non-empty content, no self-messages, and a receiver known to the directory.
// Shared by the realtime path and the REST path.
func validateSend(ctx context.Context, directory Directory, sender, receiver, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if sender == receiver {
		return ErrSelfMessage
	}
	if _, err := directory.Resolve(ctx, receiver); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownUser, receiver)
	}
	return nil
}
