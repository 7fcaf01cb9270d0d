package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/visit-desk/internal/application"
	"github.com/example/visit-desk/internal/persistence"
)

type directoryService interface {
	Departments() []persistence.Department
	ListFaculty(ctx context.Context) ([]persistence.Faculty, error)
	ListFacultyByDepartment(ctx context.Context, department string) ([]persistence.Faculty, error)
}

type DirectoryHandler struct {
	service   directoryService
	responder responder
	logger    *slog.Logger
}

func NewDirectoryHandler(service directoryService, logger *slog.Logger) *DirectoryHandler {
	base := defaultLogger(logger)
	return &DirectoryHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *DirectoryHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "DirectoryHandler", operation, attrs...)
}

func (h *DirectoryHandler) Departments(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	departments := h.service.Departments()
	names := make([]string, 0, len(departments))
	for _, dept := range departments {
		names = append(names, string(dept))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, departmentsResponse{Departments: names})
}

// ListFaculty returns the roster, filtered by the department query parameter when present.
func (h *DirectoryHandler) ListFaculty(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	department := strings.TrimSpace(r.URL.Query().Get("department"))
	logger := h.log(r.Context(), "ListFaculty", "department", department)

	var (
		faculty []persistence.Faculty
		err     error
	)
	if department == "" {
		faculty, err = h.service.ListFaculty(r.Context())
	} else {
		faculty, err = h.service.ListFacultyByDepartment(r.Context(), department)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "faculty listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, facultyListResponse{Faculty: toFacultyDTOs(faculty)})
}

type departmentsResponse struct {
	Departments []string `json:"departments"`
}

type facultyListResponse struct {
	Faculty []facultyDTO `json:"faculty"`
}
