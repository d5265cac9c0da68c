package chat

import (
	"context"
	"encoding/json"
	"log"
)

type roomRequest struct {
	client *Client
	roomID string
}

type sendRequest struct {
	client  *Client
	payload SendMessagePayload
}

type errorReport struct {
	client  *Client
	message string
}

// Hub routes realtime events between connected clients. All of its state is
// owned by the single Run goroutine and mutated only through the channels
// below, so none of the maps need a lock.
type Hub struct {
	// Connected clients.
	clients map[*Client]bool

	// Room membership, plus the inverse index so disconnect cleanup only
	// touches the rooms that client had joined.
	rooms       map[string]map[*Client]bool
	memberships map[*Client]map[string]bool

	Register   chan *Client
	Unregister chan *Client
	join       chan roomRequest
	leave      chan roomRequest
	send       chan sendRequest
	errs       chan errorReport

	// Persisted messages coming back from the broker, to be fanned out to
	// local room members.
	broadcast chan []byte

	store     MessageStore
	directory Directory
	broker    Broker
}

func NewHub(store MessageStore, directory Directory, broker Broker) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		rooms:       make(map[string]map[*Client]bool),
		memberships: make(map[*Client]map[string]bool),
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		join:        make(chan roomRequest),
		leave:       make(chan roomRequest),
		send:        make(chan sendRequest),
		errs:        make(chan errorReport),
		broadcast:   make(chan []byte),
		store:       store,
		directory:   directory,
		broker:      broker,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true

		case client := <-h.Unregister:
			h.removeClient(client)

		case req := <-h.join:
			if !h.clients[req.client] {
				continue
			}
			if h.rooms[req.roomID] == nil {
				h.rooms[req.roomID] = make(map[*Client]bool)
			}
			h.rooms[req.roomID][req.client] = true
			if h.memberships[req.client] == nil {
				h.memberships[req.client] = make(map[string]bool)
			}
			h.memberships[req.client][req.roomID] = true

		case req := <-h.leave:
			h.removeFromRoom(req.client, req.roomID)

		case req := <-h.send:
			h.handleSend(req)

		case report := <-h.errs:
			h.deliverError(report.client, report.message)

		case payload := <-h.broadcast:
			h.routeToRoom(payload)
		}
	}
}

// ConsumeBroker pipes persisted messages from the broker into the hub.
// Every instance (including the one that published) receives them here.
func (h *Hub) ConsumeBroker(ctx context.Context) {
	for payload := range h.broker.Subscribe(ctx) {
		h.broadcast <- payload
	}
}

// handleSend is the persist-then-broadcast pipeline. Failures are reported
// to the originating connection only; other room members see nothing.
func (h *Hub) handleSend(req sendRequest) {
	ctx := context.Background()

	if req.payload.Sender != req.client.UserID {
		h.deliverError(req.client, ErrSenderMismatch.Error())
		return
	}
	if err := validateSend(ctx, h.directory, req.payload.Sender, req.payload.Receiver, req.payload.Content); err != nil {
		h.deliverError(req.client, err.Error())
		return
	}

	msg, err := h.store.Append(ctx, req.payload.Sender, req.payload.Receiver, req.payload.Content)
	if err != nil {
		log.Printf("❌ store append failed: %v", err)
		h.deliverError(req.client, "failed to send message, try again")
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		h.deliverError(req.client, "failed to send message, try again")
		return
	}
	if err := h.broker.Publish(ctx, payload); err != nil {
		// The message is durable at this point; only realtime delivery
		// is lost. Tell the sender so the UI doesn't wait forever.
		log.Printf("❌ broker publish failed: %v", err)
		h.deliverError(req.client, "message saved but not delivered")
	}
}

// routeToRoom fans a persisted message out to the local members of its room,
// sender's connection included.
func (h *Hub) routeToRoom(payload []byte) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		log.Printf("dropping malformed broker payload: %v", err)
		return
	}

	frame, err := newEnvelope(EventReceiveMessage, &msg)
	if err != nil {
		return
	}

	roomID := RoomID(msg.Sender, msg.Receiver)
	for client := range h.rooms[roomID] {
		h.deliver(client, frame)
	}
}

func (h *Hub) deliverError(client *Client, message string) {
	frame, err := newEnvelope(EventError, ErrorPayload{Message: message})
	if err != nil {
		return
	}
	h.deliver(client, frame)
}

// deliver pushes a frame to one client, dropping the connection if its send
// buffer is full (slow consumer). Clients already removed are skipped: their
// send channel is closed.
func (h *Hub) deliver(client *Client, frame []byte) {
	if !h.clients[client] {
		return
	}
	select {
	case client.Send <- frame:
	default:
		h.removeClient(client)
	}
}

func (h *Hub) removeClient(client *Client) {
	if !h.clients[client] {
		return
	}
	for roomID := range h.memberships[client] {
		if members, ok := h.rooms[roomID]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	delete(h.memberships, client)
	delete(h.clients, client)
	close(client.Send)
}

func (h *Hub) removeFromRoom(client *Client, roomID string) {
	// Leaving a room that was never joined is a no-op.
	if members, ok := h.rooms[roomID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	if joined, ok := h.memberships[client]; ok {
		delete(joined, roomID)
	}
}
