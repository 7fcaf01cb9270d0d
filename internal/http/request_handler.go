package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/visit-desk/internal/application"
	"github.com/example/visit-desk/internal/persistence"
)

type visitService interface {
	SubmitRequest(ctx context.Context, input application.RequestInput) (persistence.VisitorRequest, error)
	ListRequests(ctx context.Context) ([]persistence.VisitorRequest, error)
	ListRequestsByFaculty(ctx context.Context, facultyName string) ([]persistence.VisitorRequest, error)
	ChangeStatus(ctx context.Context, params application.ChangeStatusParams) (persistence.StatusUpdate, error)
	Dashboard(ctx context.Context, principal application.Principal) (application.Dashboard, error)
}

type RequestHandler struct {
	service   visitService
	responder responder
	logger    *slog.Logger
}

func NewRequestHandler(service visitService, logger *slog.Logger) *RequestHandler {
	base := defaultLogger(logger)
	return &RequestHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RequestHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RequestHandler", operation, attrs...)
}

// Create handles the public visitor request form.
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode visitor request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "department", req.Department, "faculty_name", req.FacultyName)

	request, err := h.service.SubmitRequest(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "visitor request rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("request_id", request.ID).InfoContext(r.Context(), "visitor request created")
	w.Header().Set("Location", "/requests/"+request.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, requestResponse{Request: toRequestDTO(request)})
}

// List returns every request, or only those addressed to the faculty query parameter.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	faculty := strings.TrimSpace(r.URL.Query().Get("faculty"))
	logger := h.log(r.Context(), "List", "faculty_name", faculty)

	var (
		requests []persistence.VisitorRequest
		err      error
	)
	if faculty == "" {
		requests, err = h.service.ListRequests(r.Context())
	} else {
		requests, err = h.service.ListRequestsByFaculty(r.Context(), faculty)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "request listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, requestListResponse{Requests: toRequestDTOs(requests)})
}

// ChangeStatus applies the signed-in faculty member's decision on one request.
func (h *RequestHandler) ChangeStatus(w http.ResponseWriter, r *http.Request, requestID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingRequestID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "ChangeStatus", "request_id", requestID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode status change", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "ChangeStatus", "request_id", requestID, "faculty_name", principal.FacultyName, "status", req.Status)

	update, err := h.service.ChangeStatus(r.Context(), application.ChangeStatusParams{
		Principal: principal,
		RequestID: requestID,
		Status:    req.Status,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "status change failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "status changed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, statusResponse{
		Request:     toRequestDTO(update.Request),
		ChatCreated: update.ChatCreated,
	})
}

// Dashboard returns the signed-in faculty member's requests grouped by tab.
func (h *RequestHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	dashboard, err := h.service.Dashboard(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "Dashboard", "faculty_name", principal.FacultyName).
			ErrorContext(r.Context(), "dashboard failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, dashboardResponse{
		Faculty: toPrincipalDTO(principal),
		Total:   dashboard.Total,
		Counts: dashboardCounts{
			Pending:  len(dashboard.Pending),
			Approved: len(dashboard.Approved),
			Other:    len(dashboard.Other),
		},
		Pending:  toRequestDTOs(dashboard.Pending),
		Approved: toRequestDTOs(dashboard.Approved),
		Other:    toRequestDTOs(dashboard.Other),
	})
}

type submitRequest struct {
	VisitorName string `json:"visitorName"`
	Mobile      string `json:"mobile"`
	Department  string `json:"dept"`
	FacultyName string `json:"facultyName"`
	Reason      string `json:"reason"`
}

func (r submitRequest) toInput() application.RequestInput {
	return application.RequestInput{
		VisitorName: r.VisitorName,
		Mobile:      r.Mobile,
		Department:  r.Department,
		FacultyName: r.FacultyName,
		Reason:      r.Reason,
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

type requestResponse struct {
	Request requestDTO `json:"request"`
}

type requestListResponse struct {
	Requests []requestDTO `json:"requests"`
}

type statusResponse struct {
	Request     requestDTO `json:"request"`
	ChatCreated bool       `json:"chatCreated"`
}

type dashboardCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Other    int `json:"other"`
}

type dashboardResponse struct {
	Faculty  principalDTO    `json:"faculty"`
	Total    int             `json:"total"`
	Counts   dashboardCounts `json:"counts"`
	Pending  []requestDTO    `json:"pending"`
	Approved []requestDTO    `json:"approved"`
	Other    []requestDTO    `json:"other"`
}
