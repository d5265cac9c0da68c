package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	myMiddleware "snapgram/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for now (Dev mode)
	},
}

type Handler struct {
	hub      *Hub
	store    MessageStore
	contacts *ContactService
	validate *validator.Validate
}

func NewHandler(hub *Hub, store MessageStore, contacts *ContactService) *Handler {
	return &Handler{
		hub:      hub,
		store:    store,
		contacts: contacts,
		validate: validator.New(),
	}
}

// ServeWs upgrades an authenticated request into a gateway connection.
// Unauthenticated requests never reach the hub: the auth middleware rejects
// them before the upgrade.
func (h *Handler) ServeWs(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(myMiddleware.UserKey).(string)
	username, ok2 := r.Context().Value(myMiddleware.UsernameKey).(string)
	if !ok || !ok2 || userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	client := &Client{
		Hub:      h.hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		UserID:   userID,
		Username: username,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

// GetHistory handles GET /chat/{otherUserId}: the full conversation between
// the caller and the other user, oldest first. No messages is a normal
// outcome and returns an empty list, not a 404.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	callerID, ok := r.Context().Value(myMiddleware.UserKey).(string)
	if !ok || callerID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	otherUserID := chi.URLParam(r, "otherUserId")

	messages, err := h.store.History(r.Context(), callerID, otherUserID)
	if err != nil {
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

type PostMessageRequest struct {
	Receiver string `json:"receiver" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

// PostMessage handles POST /chat: the non-realtime send path. Same
// validation as sendMessage, no broadcast.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	callerID, ok := r.Context().Value(myMiddleware.UserKey).(string)
	if !ok || callerID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validateSend(r.Context(), h.contacts.directory, callerID, req.Receiver, req.Content); err != nil {
		switch {
		case errors.Is(err, ErrEmptyContent), errors.Is(err, ErrSelfMessage), errors.Is(err, ErrUnknownUser):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "failed to send message", http.StatusInternalServerError)
		}
		return
	}

	msg, err := h.store.Append(r.Context(), callerID, req.Receiver, req.Content)
	if err != nil {
		http.Error(w, "failed to send message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

// GetChattedUsers handles GET /chat/chattedUsers/{userId}.
func (h *Handler) GetChattedUsers(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	contacts, err := h.contacts.ChattedUsers(r.Context(), userID)
	if err != nil {
		http.Error(w, "failed to load contacts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(contacts)
}
