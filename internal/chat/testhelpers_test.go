package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory MessageStore so hub and handler tests don't need
// a database.
type memStore struct {
	mu        sync.Mutex
	messages  []Message
	appendErr error
}

func (s *memStore) Append(_ context.Context, sender, receiver, content string) (*Message, error) {
	if s.appendErr != nil {
		return nil, s.appendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Receiver:  receiver,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	s.messages = append(s.messages, msg)
	return &msg, nil
}

func (s *memStore) History(_ context.Context, userA, userB string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Message
	for _, msg := range s.messages {
		if (msg.Sender == userA && msg.Receiver == userB) ||
			(msg.Sender == userB && msg.Receiver == userA) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (s *memStore) AllInvolving(_ context.Context, userID string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Message
	for _, msg := range s.messages {
		if msg.Sender == userID || msg.Receiver == userID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// fakeDirectory resolves only the users it was seeded with.
type fakeDirectory struct {
	users map[string]Contact
}

func newFakeDirectory(contacts ...Contact) *fakeDirectory {
	d := &fakeDirectory{users: make(map[string]Contact)}
	for _, c := range contacts {
		d.users[c.ID] = c
	}
	return d
}

func (d *fakeDirectory) Resolve(_ context.Context, id string) (*Contact, error) {
	c, ok := d.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return &c, nil
}

// loopBroker is an in-process Broker: published payloads come straight back
// on the subscription channel, like a single-instance Redis round trip.
type loopBroker struct {
	ch chan []byte
}

func newLoopBroker() *loopBroker {
	return &loopBroker{ch: make(chan []byte, 64)}
}

func (b *loopBroker) Publish(_ context.Context, payload []byte) error {
	b.ch <- payload
	return nil
}

func (b *loopBroker) Subscribe(_ context.Context) <-chan []byte {
	return b.ch
}

// startHub wires a hub over in-memory fakes and starts its goroutines.
func startHub(t *testing.T, store MessageStore, dir Directory) *Hub {
	t.Helper()
	hub := NewHub(store, dir, newLoopBroker())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run()
	go hub.ConsumeBroker(ctx)
	return hub
}

func newTestClient(hub *Hub, userID string) *Client {
	return &Client{
		Hub:    hub,
		Send:   make(chan []byte, 16),
		UserID: userID,
	}
}

// recvFrame waits for the next frame on a client's send channel.
func recvFrame(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case frame, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return Envelope{}
	}
}

// expectNoFrame asserts that nothing arrives for a short window.
func expectNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case frame, ok := <-c.Send:
		if ok {
			t.Fatalf("unexpected frame: %s", frame)
		}
	case <-time.After(150 * time.Millisecond):
	}
}

func decodeMessage(t *testing.T, env Envelope) Message {
	t.Helper()
	require.Equal(t, EventReceiveMessage, env.Event)
	var msg Message
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	return msg
}
