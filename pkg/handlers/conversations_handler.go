package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/college-hq/advising-engine/pkg/apperrors"
	"github.com/college-hq/advising-engine/pkg/auth"
	"github.com/college-hq/advising-engine/pkg/repositories"
)

// CreateConversationRequest is the body of POST /conversations.
type CreateConversationRequest struct {
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId,omitempty"`
	Title          string `json:"title,omitempty"`
	AgentType      string `json:"agentType,omitempty"`
}

// AppendMessageRequest is the body of POST /conversations/message. Either
// message may be empty; at least the ids are required.
type AppendMessageRequest struct {
	UserID            string `json:"userId"`
	ConversationID    string `json:"conversationId"`
	UserMessage       string `json:"userMessage,omitempty"`
	AssistantResponse string `json:"assistantResponse,omitempty"`
}

// ConversationsHandler exposes the conversation store over HTTP.
type ConversationsHandler struct {
	conversations repositories.ConversationRepository
	logger        *zap.Logger
}

// NewConversationsHandler creates a new conversations handler.
func NewConversationsHandler(conversations repositories.ConversationRepository, logger *zap.Logger) *ConversationsHandler {
	return &ConversationsHandler{conversations: conversations, logger: logger}
}

// RegisterRoutes registers the conversation routes on the given mux.
func (h *ConversationsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /conversations", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("POST /conversations/message", authMiddleware.RequireAuth(h.AppendMessage))
	mux.HandleFunc("GET /conversations/{userId}", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /conversations/{userId}/{conversationId}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("DELETE /conversations/{userId}/{conversationId}", authMiddleware.RequireAuth(h.Delete))
}

// Create handles POST /conversations: creates an empty conversation,
// generating an id when none is supplied. 409 on a caller-supplied id
// that already exists.
func (h *ConversationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}
	if req.UserID == "" {
		h.writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	conv, err := h.conversations.Create(r.Context(), req.UserID, req.ConversationID, req.Title, req.AgentType)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			h.writeError(w, http.StatusConflict, "conversation already exists")
			return
		}
		h.logger.Error("Failed to create conversation",
			zap.String("user_id", req.UserID),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to create conversation")
		return
	}

	h.writeJSON(w, http.StatusCreated, conv)
}

// AppendMessage handles POST /conversations/message: atomically appends a
// user/assistant exchange, implicitly creating the conversation if needed.
func (h *ConversationsHandler) AppendMessage(w http.ResponseWriter, r *http.Request) {
	var req AppendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}
	if req.UserID == "" || req.ConversationID == "" {
		h.writeError(w, http.StatusBadRequest, "userId and conversationId are required")
		return
	}

	conv, err := h.conversations.AppendMessage(r.Context(), req.UserID, req.ConversationID, req.UserMessage, req.AssistantResponse)
	if err != nil {
		h.logger.Error("Failed to append messages",
			zap.String("user_id", req.UserID),
			zap.String("conversation_id", req.ConversationID),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to append messages")
		return
	}

	h.writeJSON(w, http.StatusOK, conv)
}

// List handles GET /conversations/{userId}: summaries newest-first, no
// message bodies.
func (h *ConversationsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	summaries, err := h.conversations.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list conversations", zap.String("user_id", userID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"conversations": summaries,
		"count":         len(summaries),
	})
}

// Get handles GET /conversations/{userId}/{conversationId}: the full
// conversation including messages.
func (h *ConversationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	conversationID := r.PathValue("conversationId")
	if userID == "" || conversationID == "" {
		h.writeError(w, http.StatusBadRequest, "userId and conversationId are required")
		return
	}

	conv, err := h.conversations.Get(r.Context(), userID, conversationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		h.logger.Error("Failed to load conversation",
			zap.String("user_id", userID),
			zap.String("conversation_id", conversationID),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}

	h.writeJSON(w, http.StatusOK, conv)
}

// Delete handles DELETE /conversations/{userId}/{conversationId}. Deleting
// an absent conversation still reports success.
func (h *ConversationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	conversationID := r.PathValue("conversationId")
	if userID == "" || conversationID == "" {
		h.writeError(w, http.StatusBadRequest, "userId and conversationId are required")
		return
	}

	if err := h.conversations.Delete(r.Context(), userID, conversationID); err != nil {
		h.logger.Error("Failed to delete conversation",
			zap.String("user_id", userID),
			zap.String("conversation_id", conversationID),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to delete conversation")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *ConversationsHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	if err := WriteJSON(w, status, data); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *ConversationsHandler) writeError(w http.ResponseWriter, status int, message string) {
	if err := ErrorResponse(w, status, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
