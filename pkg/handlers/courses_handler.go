package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/college-hq/advising-engine/pkg/apperrors"
	"github.com/college-hq/advising-engine/pkg/auth"
	"github.com/college-hq/advising-engine/pkg/models"
	"github.com/college-hq/advising-engine/pkg/services"
)

const defaultCourseListLimit = 50

// CourseSearchRequest is the body of POST /courses/search: a free-text
// message plus optional profile context for the relevance search.
type CourseSearchRequest struct {
	University     string                 `json:"university"`
	Message        string                 `json:"message"`
	StudentProfile *models.StudentProfile `json:"studentProfile,omitempty"`
}

// CourseSearchResponse carries the relevance search result.
type CourseSearchResponse struct {
	Courses            []models.Course           `json:"courses"`
	DegreeRequirements *models.DegreeRequirement `json:"degreeRequirements,omitempty"`
	Count              int                       `json:"count"`
}

// CoursesHandler exposes the course catalog over HTTP.
type CoursesHandler struct {
	catalog     services.CatalogService
	catalogYear string
	logger      *zap.Logger
}

// NewCoursesHandler creates a new catalog handler. catalogYear is the
// default flowchart year used when the query omits one.
func NewCoursesHandler(catalog services.CatalogService, catalogYear string, logger *zap.Logger) *CoursesHandler {
	return &CoursesHandler{catalog: catalog, catalogYear: catalogYear, logger: logger}
}

// RegisterRoutes registers the catalog routes on the given mux.
func (h *CoursesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /courses", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /courses/{courseId}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("POST /courses/search", authMiddleware.RequireAuth(h.Search))
	mux.HandleFunc("GET /degree-requirements/{majorId}", authMiddleware.RequireAuth(h.DegreeRequirements))
	mux.HandleFunc("GET /flowchart/{majorId}", authMiddleware.RequireAuth(h.Flowchart))
}

// List handles GET /courses?university=...&major=... (or &department=...).
// Exactly one of major or department selects the filter; major wins when
// both are present.
func (h *CoursesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	university := q.Get("university")
	major := q.Get("major")
	department := q.Get("department")

	if university == "" {
		h.writeError(w, http.StatusBadRequest, "university is required")
		return
	}
	if major == "" && department == "" {
		h.writeError(w, http.StatusBadRequest, "major or department is required")
		return
	}

	var (
		courses []models.Course
		err     error
	)
	if major != "" {
		courses, err = h.catalog.GetByMajor(r.Context(), university, major, defaultCourseListLimit)
	} else {
		courses, err = h.catalog.GetByDepartment(r.Context(), university, department, defaultCourseListLimit)
	}
	if err != nil {
		h.logger.Error("Failed to list courses",
			zap.String("university", university),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to list courses")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"courses": courses,
		"count":   len(courses),
	})
}

// Get handles GET /courses/{courseId}. The id is the catalog primary key,
// e.g. "calpoly_csc101".
func (h *CoursesHandler) Get(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("courseId")
	if courseID == "" {
		h.writeError(w, http.StatusBadRequest, "courseId is required")
		return
	}

	course, err := h.catalog.GetCourse(r.Context(), courseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "course not found")
			return
		}
		h.logger.Error("Failed to load course", zap.String("course_id", courseID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to load course")
		return
	}

	h.writeJSON(w, http.StatusOK, course)
}

// Search handles POST /courses/search: the same relevance search the
// advising turn runs, exposed directly.
func (h *CoursesHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req CourseSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}
	if req.University == "" || req.Message == "" {
		h.writeError(w, http.StatusBadRequest, "university and message are required")
		return
	}

	relevant, err := h.catalog.FindRelevant(r.Context(), req.University, req.Message, req.StudentProfile)
	if err != nil {
		h.logger.Error("Relevance search failed",
			zap.String("university", req.University),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "course search failed")
		return
	}

	h.writeJSON(w, http.StatusOK, CourseSearchResponse{
		Courses:            relevant.Courses,
		DegreeRequirements: relevant.Requirement,
		Count:              len(relevant.Courses),
	})
}

// DegreeRequirements handles GET /degree-requirements/{majorId}. The id is
// the requirement key, e.g. "calpoly_computer_science".
func (h *CoursesHandler) DegreeRequirements(w http.ResponseWriter, r *http.Request) {
	majorID := r.PathValue("majorId")
	if majorID == "" {
		h.writeError(w, http.StatusBadRequest, "majorId is required")
		return
	}

	req, err := h.catalog.GetDegreeRequirements(r.Context(), majorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "degree requirements not found")
			return
		}
		h.logger.Error("Failed to load degree requirements", zap.String("major_id", majorID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to load degree requirements")
		return
	}

	h.writeJSON(w, http.StatusOK, req)
}

// Flowchart handles GET /flowchart/{majorId}?year=2022-2026. The catalog
// year defaults to the configured current year.
func (h *CoursesHandler) Flowchart(w http.ResponseWriter, r *http.Request) {
	majorID := r.PathValue("majorId")
	if majorID == "" {
		h.writeError(w, http.StatusBadRequest, "majorId is required")
		return
	}

	year := r.URL.Query().Get("year")
	if year == "" {
		year = h.catalogYear
	}

	flowchart, err := h.catalog.GetFlowchart(r.Context(), majorID+"_"+year)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "flowchart not found")
			return
		}
		h.logger.Error("Failed to load flowchart", zap.String("major_id", majorID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to load flowchart")
		return
	}

	h.writeJSON(w, http.StatusOK, flowchart)
}

func (h *CoursesHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	if err := WriteJSON(w, status, data); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *CoursesHandler) writeError(w http.ResponseWriter, status int, message string) {
	if err := ErrorResponse(w, status, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
