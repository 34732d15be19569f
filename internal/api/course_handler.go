package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/athena-learn/athena-web/internal/api/shared"
	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/platform/logger"
	"github.com/athena-learn/athena-web/internal/redact"
	"github.com/athena-learn/athena-web/internal/service/ingestion"
)

// CourseIngester runs the add-course workflow.
type CourseIngester interface {
	Ingest(ctx context.Context, key, stepikURL string) (ingestion.Result, error)
}

// CourseLister lists the public course catalog.
type CourseLister interface {
	ListCourses(ctx context.Context) ([]domain.Course, error)
}

// CourseHandler handles course ingestion and the public course list.
type CourseHandler struct {
	ingester CourseIngester
	catalog  CourseLister
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(ingester CourseIngester, catalog CourseLister) *CourseHandler {
	return &CourseHandler{ingester: ingester, catalog: catalog}
}

// Ingest handles POST /api/courses/ingest.
func (h *CourseHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	key, _ := shared.GetBrowserKey(r.Context())
	res, err := h.ingester.Ingest(r.Context(), key, req.StepikURL)
	if err != nil {
		var partial *domain.PartialFailureError
		if errors.As(err, &partial) {
			logger.FromContextOrDefault(r.Context(), slog.Default()).Warn("course registered without strategy",
				slog.Int64("course_id", partial.CourseID),
				slog.String("error", redact.Error(err)))
			shared.RespondWithJSON(w, r, http.StatusBadGateway, PartialFailureResponse{
				Error:    GetSafeErrorMessage(err),
				CourseID: partial.CourseID,
				TraceID:  shared.GetTraceID(r.Context()),
			})
			return
		}
		HandleAPIError(w, r, err, "Failed to add course")
		return
	}

	resp := IngestResponse{
		Course:    res.Course,
		Strategy:  res.Strategy,
		State:     string(res.Dashboard.State),
		Dashboard: res.Dashboard.Dashboard,
	}
	if res.RefreshErr != nil {
		resp.Warning = GetSafeErrorMessage(res.RefreshErr)
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

// ListCourses handles GET /api/courses.
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.catalog.ListCourses(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list courses")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CoursesResponse{Courses: courses})
}
