package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/visit-desk/internal/persistence"
)

const (
	msgFillAllFields = "Please fill all fields"
	msgMobileDigits  = "Mobile number must be 10 digits"
)

// VisitService validates visitor requests and applies faculty decisions.
type VisitService struct {
	faculty  FacultyDirectory
	requests RequestStore
	events   EventRecorder
	logger   *slog.Logger
}

// NewVisitService constructs a visit service with the provided dependencies.
func NewVisitService(faculty FacultyDirectory, requests RequestStore, events EventRecorder) *VisitService {
	return NewVisitServiceWithLogger(faculty, requests, events, nil)
}

// NewVisitServiceWithLogger constructs a visit service with a specified logger.
func NewVisitServiceWithLogger(faculty FacultyDirectory, requests RequestStore, events EventRecorder, logger *slog.Logger) *VisitService {
	return &VisitService{
		faculty:  faculty,
		requests: requests,
		events:   defaultRecorder(events),
		logger:   defaultLogger(logger),
	}
}

func (s *VisitService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "VisitService", operation, attrs...)
}

func (s *VisitService) ready() error {
	if s == nil || s.faculty == nil || s.requests == nil {
		return fmt.Errorf("VisitService is not configured")
	}
	return nil
}

// SubmitRequest validates the request form and stores a new pending request.
func (s *VisitService) SubmitRequest(ctx context.Context, input RequestInput) (request persistence.VisitorRequest, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "SubmitRequest",
		"department", strings.TrimSpace(input.Department),
		"faculty_name", strings.TrimSpace(input.FacultyName),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to submit request", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("request_id", request.ID).InfoContext(ctx, "request submitted")
	}()

	fields, vErr := normalizeRequestInput(input)
	if !vErr.HasErrors() {
		var membership *ValidationError
		if membership, err = s.validateFacultyMembership(ctx, fields); err != nil {
			return
		}
		vErr.merge(membership)
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	request, err = s.requests.AddRequest(ctx, fields)
	if err != nil {
		return
	}
	s.events.RequestSubmitted(string(request.Department))
	return
}

// ListRequests returns every request in submission order.
func (s *VisitService) ListRequests(ctx context.Context) ([]persistence.VisitorRequest, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	requests, err := s.requests.ListRequests(ctx)
	if err != nil {
		s.loggerWith(ctx, "ListRequests").ErrorContext(ctx, "failed to list requests", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return requests, nil
}

// ListRequestsByFaculty returns the requests addressed to one faculty member.
func (s *VisitService) ListRequestsByFaculty(ctx context.Context, facultyName string) ([]persistence.VisitorRequest, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(facultyName)
	if name == "" {
		vErr := &ValidationError{}
		vErr.add("facultyName", "is required")
		return nil, vErr
	}
	requests, err := s.requests.ListRequestsByFaculty(ctx, name)
	if err != nil {
		s.loggerWith(ctx, "ListRequestsByFaculty", "faculty_name", name).
			ErrorContext(ctx, "failed to list requests", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return requests, nil
}

// ChangeStatus applies a faculty decision. Only the faculty member a request
// is addressed to may decide on it. Any status may follow any other.
func (s *VisitService) ChangeStatus(ctx context.Context, params ChangeStatusParams) (update persistence.StatusUpdate, err error) {
	if err = s.ready(); err != nil {
		return
	}

	requestID := strings.TrimSpace(params.RequestID)
	logger := s.loggerWith(ctx, "ChangeStatus",
		"request_id", requestID,
		"status", params.Status,
		"faculty_name", params.Principal.FacultyName,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to change status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("chat_created", update.ChatCreated).InfoContext(ctx, "status changed")
	}()

	if params.Principal.IsZero() {
		err = ErrUnauthorized
		return
	}

	status, ok := persistence.ParseRequestStatus(params.Status)
	if !ok {
		vErr := &ValidationError{}
		vErr.add("status", "must be one of pending, approved, hold, declined")
		err = vErr
		return
	}

	request, found, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		return
	}
	if !found {
		err = ErrNotFound
		return
	}
	if request.FacultyName != params.Principal.FacultyName {
		err = ErrUnauthorized
		return
	}

	update, err = s.requests.UpdateRequestStatus(ctx, requestID, status)
	if err != nil {
		return
	}
	if update.Outcome == persistence.OutcomeNotFound {
		err = ErrNotFound
		return
	}
	s.events.StatusChanged(string(status))
	return
}

// Dashboard returns the signed-in faculty member's requests grouped by status.
func (s *VisitService) Dashboard(ctx context.Context, principal Principal) (dashboard Dashboard, err error) {
	if err = s.ready(); err != nil {
		return
	}
	if principal.IsZero() {
		err = ErrUnauthorized
		return
	}

	requests, err := s.requests.ListRequestsByFaculty(ctx, principal.FacultyName)
	if err != nil {
		s.loggerWith(ctx, "Dashboard", "faculty_name", principal.FacultyName).
			ErrorContext(ctx, "failed to load dashboard", "error", err, "error_kind", ErrorKind(err))
		return
	}

	dashboard = Dashboard{
		FacultyName: principal.FacultyName,
		Total:       len(requests),
		Pending:     []persistence.VisitorRequest{},
		Approved:    []persistence.VisitorRequest{},
		Other:       []persistence.VisitorRequest{},
	}
	for _, request := range requests {
		switch request.Status {
		case persistence.StatusPending:
			dashboard.Pending = append(dashboard.Pending, request)
		case persistence.StatusApproved:
			dashboard.Approved = append(dashboard.Approved, request)
		case persistence.StatusHold, persistence.StatusDeclined:
			dashboard.Other = append(dashboard.Other, request)
		}
	}
	return
}

func normalizeRequestInput(input RequestInput) (persistence.RequestFields, *ValidationError) {
	vErr := &ValidationError{}
	fields := persistence.RequestFields{
		VisitorName: strings.TrimSpace(input.VisitorName),
		Mobile:      strings.TrimSpace(input.Mobile),
		FacultyName: strings.TrimSpace(input.FacultyName),
		Reason:      strings.TrimSpace(input.Reason),
	}

	required := map[string]string{
		"visitorName": fields.VisitorName,
		"mobile":      fields.Mobile,
		"department":  strings.TrimSpace(input.Department),
		"facultyName": fields.FacultyName,
		"reason":      fields.Reason,
	}
	for field, value := range required {
		if value == "" {
			vErr.add(field, msgFillAllFields)
		}
	}

	if fields.Mobile != "" && !isTenDigits(fields.Mobile) {
		vErr.add("mobile", msgMobileDigits)
	}

	if dept := strings.TrimSpace(input.Department); dept != "" {
		parsed, ok := persistence.ParseDepartment(dept)
		if !ok {
			vErr.add("department", departmentMessage())
		}
		fields.Department = parsed
	}
	return fields, vErr
}

func (s *VisitService) validateFacultyMembership(ctx context.Context, fields persistence.RequestFields) (*ValidationError, error) {
	members, err := s.faculty.ListFacultyByDepartment(ctx, fields.Department)
	if err != nil {
		return nil, err
	}
	for _, member := range members {
		if member.Name == fields.FacultyName {
			return nil, nil
		}
	}
	vErr := &ValidationError{}
	vErr.add("facultyName", "is not a member of the selected department")
	return vErr, nil
}

func isTenDigits(value string) bool {
	if len(value) != 10 {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
