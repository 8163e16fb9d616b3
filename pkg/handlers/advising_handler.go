package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/college-hq/advising-engine/pkg/apperrors"
	"github.com/college-hq/advising-engine/pkg/auth"
	"github.com/college-hq/advising-engine/pkg/services"
)

// AdvisingRequest is the body of POST /advising.
type AdvisingRequest struct {
	UserID         string `json:"userId"`
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

// AdvisingHandler exposes the advising orchestrator over HTTP.
type AdvisingHandler struct {
	advising services.AdvisingService
	logger   *zap.Logger
}

// NewAdvisingHandler creates a new advising handler.
func NewAdvisingHandler(advising services.AdvisingService, logger *zap.Logger) *AdvisingHandler {
	return &AdvisingHandler{advising: advising, logger: logger}
}

// RegisterRoutes registers the advising route on the given mux.
func (h *AdvisingHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /advising", authMiddleware.RequireAuth(h.Advise))
}

// Advise handles POST /advising: one full advising turn.
func (h *AdvisingHandler) Advise(w http.ResponseWriter, r *http.Request) {
	var req AdvisingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}
	if req.UserID == "" || req.Message == "" {
		h.writeError(w, http.StatusBadRequest, "userId and message are required")
		return
	}

	resp, err := h.advising.Advise(r.Context(), req.UserID, req.Message, req.ConversationID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, apperrors.ErrNotFound):
			h.writeError(w, http.StatusNotFound, "no profile found; complete your profile first")
		default:
			h.logger.Error("Advising turn failed",
				zap.String("user_id", req.UserID),
				zap.Error(err))
			h.writeError(w, http.StatusInternalServerError, "failed to generate advising response")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *AdvisingHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	if err := WriteJSON(w, status, data); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *AdvisingHandler) writeError(w http.ResponseWriter, status int, message string) {
	if err := ErrorResponse(w, status, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
