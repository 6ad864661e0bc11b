package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"growwise/internal/model"
	"growwise/internal/service"
	"growwise/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// ChatHandler handles tutor chat endpoints
type ChatHandler struct {
	chatSvc *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatSvc *service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// CreateChatRequest is the request body for opening a chat session
type CreateChatRequest struct {
	Topic     string `json:"topic"`
	StageName string `json:"stageName,omitempty"`
}

// SendMessageRequest is the request body for a chat message
type SendMessageRequest struct {
	Text string `json:"text"`
}

// Create handles POST /v1/chats
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Topic == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	session, welcome, err := h.chatSvc.CreateSession(r.Context(), userID, req.Topic, req.StageName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"session": session,
		"welcome": welcome,
	})
}

// SendMessage handles POST /v1/chats/{sessionId}/messages
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	userID := middleware.GetUserID(r.Context())

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.chatSvc.SendMessage(r.Context(), sessionID, userID, req.Text)
	if err != nil {
		writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// ListMessages handles GET /v1/chats/{sessionId}/messages
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	userID := middleware.GetUserID(r.Context())

	var limit int64
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			limit = n
		}
	}

	msgs, err := h.chatSvc.ListMessages(r.Context(), sessionID, userID, limit)
	if err != nil {
		writeChatError(w, err)
		return
	}
	if msgs == nil {
		msgs = []*model.ChatMessage{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": msgs})
}

// Delete handles DELETE /v1/chats/{sessionId}
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	userID := middleware.GetUserID(r.Context())

	if err := h.chatSvc.DeleteSession(r.Context(), sessionID, userID); err != nil {
		writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrChatNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotYourChat):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
