package chat

import "context"

// MessageStore is the single source of truth for chat messages. It is a pure
// persistence primitive: content and identity validation happen at the
// boundary (hub and handlers), not here.
type MessageStore interface {
	// Append persists a new message, assigning id and timestamp, and
	// returns the stored record.
	Append(ctx context.Context, sender, receiver, content string) (*Message, error)

	// History returns all messages between the two users, in either
	// direction, ordered by timestamp ascending. An empty slice is a
	// normal result, not an error.
	History(ctx context.Context, userA, userB string) ([]Message, error)

	// AllInvolving returns every message where the user is sender or
	// receiver. Order is unspecified.
	AllInvolving(ctx context.Context, userID string) ([]Message, error)
}

// Directory resolves a user id to its public profile. Implemented by the
// user service; the chat core only ever reads from it.
type Directory interface {
	Resolve(ctx context.Context, id string) (*Contact, error)
}
