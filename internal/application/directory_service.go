package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/visit-desk/internal/persistence"
)

// DirectoryService exposes the department list and the faculty roster.
type DirectoryService struct {
	faculty FacultyDirectory
	logger  *slog.Logger
}

// NewDirectoryService constructs a directory service.
func NewDirectoryService(faculty FacultyDirectory) *DirectoryService {
	return NewDirectoryServiceWithLogger(faculty, nil)
}

// NewDirectoryServiceWithLogger constructs a directory service with a specified logger.
func NewDirectoryServiceWithLogger(faculty FacultyDirectory, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{faculty: faculty, logger: defaultLogger(logger)}
}

func (s *DirectoryService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "DirectoryService", operation, attrs...)
}

// Departments returns the selectable departments.
func (s *DirectoryService) Departments() []persistence.Department {
	return persistence.Departments()
}

// ListFaculty returns the full roster.
func (s *DirectoryService) ListFaculty(ctx context.Context) ([]persistence.Faculty, error) {
	if s == nil || s.faculty == nil {
		return nil, fmt.Errorf("DirectoryService is not configured")
	}
	faculty, err := s.faculty.ListFaculty(ctx)
	if err != nil {
		s.loggerWith(ctx, "ListFaculty").ErrorContext(ctx, "failed to list faculty", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return faculty, nil
}

// ListFacultyByDepartment returns the roster entries of one department.
func (s *DirectoryService) ListFacultyByDepartment(ctx context.Context, department string) (faculty []persistence.Faculty, err error) {
	if s == nil || s.faculty == nil {
		return nil, fmt.Errorf("DirectoryService is not configured")
	}

	logger := s.loggerWith(ctx, "ListFacultyByDepartment", "department", department)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list faculty", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	dept, ok := persistence.ParseDepartment(department)
	if !ok {
		vErr := &ValidationError{}
		vErr.add("department", departmentMessage())
		err = vErr
		return
	}
	return s.faculty.ListFacultyByDepartment(ctx, dept)
}

func departmentMessage() string {
	names := make([]string, 0, len(persistence.Departments()))
	for _, dept := range persistence.Departments() {
		names = append(names, string(dept))
	}
	return "must be one of " + strings.Join(names, ", ")
}
