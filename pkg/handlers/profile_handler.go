package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/college-hq/advising-engine/pkg/apperrors"
	"github.com/college-hq/advising-engine/pkg/auth"
	"github.com/college-hq/advising-engine/pkg/models"
	"github.com/college-hq/advising-engine/pkg/repositories"
)

// ProfileResponse wraps a profile record; isNew reports whether a GET
// synthesized the record on this call.
type ProfileResponse struct {
	Profile *models.StudentProfile `json:"profile"`
	IsNew   bool                   `json:"isNew,omitempty"`
}

// ProfileHandler handles student profile CRUD requests.
type ProfileHandler struct {
	profiles repositories.ProfileRepository
	logger   *zap.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profiles repositories.ProfileRepository, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// RegisterRoutes registers the profile routes on the given mux.
// Unmatched methods on /profile/{userId} get 405 from the mux.
func (h *ProfileHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /profile/{userId}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /profile/{userId}", authMiddleware.RequireAuth(h.Put))
	mux.HandleFunc("POST /profile/{userId}", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("DELETE /profile/{userId}", authMiddleware.RequireAuth(h.Delete))
}

// Get handles GET /profile/{userId}. A first read synthesizes and
// persists a default record, so this "read" can create state.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	profile, isNew, err := h.profiles.GetOrCreate(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load profile", zap.String("user_id", userID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	h.writeJSON(w, http.StatusOK, ProfileResponse{Profile: profile, IsNew: isNew})
}

// Put handles PUT /profile/{userId}: shallow-merge of the supplied fields
// over the existing record.
func (h *ProfileHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.Put(r.Context(), userID, fields)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			h.writeError(w, http.StatusBadRequest, "malformed profile fields")
			return
		}
		h.logger.Error("Failed to update profile", zap.String("user_id", userID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	h.writeJSON(w, http.StatusOK, ProfileResponse{Profile: profile})
}

// Create handles POST /profile/{userId}; 409 when the profile exists.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.Create(r.Context(), userID, fields)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			h.writeError(w, http.StatusConflict, "profile already exists")
			return
		}
		h.logger.Error("Failed to create profile", zap.String("user_id", userID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to create profile")
		return
	}

	h.writeJSON(w, http.StatusCreated, ProfileResponse{Profile: profile})
}

// Delete handles DELETE /profile/{userId}; deleting an absent profile
// succeeds.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	if err := h.profiles.Delete(r.Context(), userID); err != nil {
		h.logger.Error("Failed to delete profile", zap.String("user_id", userID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to delete profile")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// decodeFields reads the partial profile JSON body. An empty body is
// treated as no fields.
func (h *ProfileHandler) decodeFields(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	fields := map[string]any{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, http.StatusBadRequest, "invalid JSON in request body")
		return nil, false
	}
	return fields, true
}

func (h *ProfileHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	if err := WriteJSON(w, status, data); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *ProfileHandler) writeError(w http.ResponseWriter, status int, message string) {
	if err := ErrorResponse(w, status, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
