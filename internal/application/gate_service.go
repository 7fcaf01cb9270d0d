package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// GateConfig holds the demo gate credentials.
type GateConfig struct {
	Phone string
	// CodeHash is an argon2id hash produced by HashAccessCode.
	CodeHash    string
	SessionTTL  time.Duration
	MaxSessions int
}

// GateService is the demo credential check in front of the faculty dashboard.
// It is not an identity system: every faculty member shares one phone number
// and access code.
type GateService struct {
	faculty        FacultyDirectory
	config         GateConfig
	sessions       *sessionStore
	tokenGenerator func() string
	now            func() time.Time
	logger         *slog.Logger
}

// NewGateService constructs a gate service.
func NewGateService(faculty FacultyDirectory, config GateConfig, tokenGenerator func() string, now func() time.Time) *GateService {
	return NewGateServiceWithLogger(faculty, config, tokenGenerator, now, nil)
}

// NewGateServiceWithLogger constructs a gate service with a specified logger.
func NewGateServiceWithLogger(faculty FacultyDirectory, config GateConfig, tokenGenerator func() string, now func() time.Time, logger *slog.Logger) *GateService {
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 8 * time.Hour
	}
	return &GateService{
		faculty:        faculty,
		config:         config,
		sessions:       newSessionStore(config.MaxSessions, now),
		tokenGenerator: tokenGenerator,
		now:            now,
		logger:         defaultLogger(logger),
	}
}

func (s *GateService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "GateService", operation, attrs...)
}

// Enter checks the gate form and issues a session for the named faculty member.
func (s *GateService) Enter(ctx context.Context, params GateParams) (session Session, err error) {
	if s == nil || s.faculty == nil {
		err = fmt.Errorf("GateService is not configured")
		return
	}

	name := strings.TrimSpace(params.Name)
	phone := strings.TrimSpace(params.Phone)
	code := strings.TrimSpace(params.Code)

	logger := s.loggerWith(ctx, "Enter", "faculty_name", name)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "gate entry rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "gate entry granted", "expires_at", session.ExpiresAt)
	}()

	vErr := &ValidationError{}
	for field, value := range map[string]string{"name": name, "phone": phone, "code": code} {
		if value == "" {
			vErr.add(field, msgFillAllFields)
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	faculty, err := s.faculty.ListFaculty(ctx)
	if err != nil {
		return
	}
	var principal Principal
	for _, member := range faculty {
		if member.Name == name {
			principal = Principal{FacultyName: member.Name, Department: member.Department}
			break
		}
	}

	phoneMatches := subtle.ConstantTimeCompare([]byte(phone), []byte(s.config.Phone)) == 1
	codeErr := VerifyAccessCode(s.config.CodeHash, code)
	if codeErr != nil && !errors.Is(codeErr, ErrInvalidCredentials) {
		err = fmt.Errorf("verify access code: %w", codeErr)
		return
	}
	if principal.IsZero() || !phoneMatches || codeErr != nil {
		err = ErrInvalidCredentials
		return
	}

	token := s.tokenGenerator()
	if token == "" {
		err = fmt.Errorf("token generator produced an empty token")
		return
	}
	now := s.now()
	session = Session{
		Token:     token,
		Principal: principal,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.SessionTTL),
	}
	s.sessions.Store(session)
	return
}

// ValidateSession returns the principal of an active session.
func (s *GateService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("GateService is not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("faculty_name", principal.FacultyName).DebugContext(ctx, "session validated")
	}()

	if trimmed == "" {
		err = ErrInvalidCredentials
		return
	}
	session, ok := s.sessions.Get(trimmed)
	if !ok {
		err = ErrInvalidCredentials
		return
	}
	if !s.now().Before(session.ExpiresAt) {
		err = ErrSessionExpired
		return
	}
	principal = session.Principal
	return
}

// RevokeSession invalidates a session token.
func (s *GateService) RevokeSession(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("GateService is not configured")
	}
	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "RevokeSession", "token_provided", trimmed != "")
	if trimmed == "" || !s.sessions.Delete(trimmed) {
		logger.WarnContext(ctx, "failed to revoke session", "error", ErrInvalidCredentials, "error_kind", ErrorKind(ErrInvalidCredentials))
		return ErrInvalidCredentials
	}
	logger.InfoContext(ctx, "session revoked")
	return nil
}
