package chat

import (
	"context"

	"github.com/samber/lo"
)

// ContactService derives the distinct set of people a user has exchanged
// messages with. The social graph is not stored anywhere: it is recomputed
// from message history on every call.
type ContactService struct {
	store     MessageStore
	directory Directory
}

func NewContactService(store MessageStore, directory Directory) *ContactService {
	return &ContactService{store: store, directory: directory}
}

// ChattedUsers returns the counterparties of userID, deduplicated by id in
// discovery order. Self-pairs are excluded, and counterparties that no
// longer resolve in the directory are skipped rather than failing the call.
func (s *ContactService) ChattedUsers(ctx context.Context, userID string) ([]Contact, error) {
	messages, err := s.store.AllInvolving(ctx, userID)
	if err != nil {
		return nil, err
	}

	others := make([]string, 0, len(messages))
	for _, msg := range messages {
		other := msg.Sender
		if msg.Sender == userID {
			other = msg.Receiver
		}
		// A message a user sent to themselves must not make them their
		// own contact.
		if other == userID {
			continue
		}
		others = append(others, other)
	}

	contacts := make([]Contact, 0, len(others))
	for _, id := range lo.Uniq(others) {
		contact, err := s.directory.Resolve(ctx, id)
		if err != nil {
			continue
		}
		contacts = append(contacts, *contact)
	}
	return contacts, nil
}
