package application

import (
	"context"
	"time"

	"github.com/example/visit-desk/internal/persistence"
)

// Principal identifies the faculty member behind a gate session.
type Principal struct {
	FacultyName string
	Department  persistence.Department
}

// IsZero reports whether no faculty member is signed in.
func (p Principal) IsZero() bool {
	return p.FacultyName == ""
}

// RequestInput captures the visitor request form.
type RequestInput struct {
	VisitorName string
	Mobile      string
	Department  string
	FacultyName string
	Reason      string
}

// ChangeStatusParams carries a faculty decision on a request.
type ChangeStatusParams struct {
	Principal Principal
	RequestID string
	Status    string
}

// Dashboard groups a faculty member's requests the way the dashboard tabs show them.
// Other holds requests on hold or declined.
type Dashboard struct {
	FacultyName string
	Total       int
	Pending     []persistence.VisitorRequest
	Approved    []persistence.VisitorRequest
	Other       []persistence.VisitorRequest
}

// ChatView is a chat together with the request it belongs to.
type ChatView struct {
	Chat    persistence.Chat
	Request persistence.VisitorRequest
}

// SendMessageParams carries a chat message submission.
type SendMessageParams struct {
	RequestID string
	Sender    string
	Text      string
}

// GateParams carries the demo gate form.
type GateParams struct {
	Name  string
	Phone string
	Code  string
}

// Session is an issued gate session.
type Session struct {
	Token     string
	Principal Principal
	CreatedAt time.Time
	ExpiresAt time.Time
}

// FacultyDirectory reads the faculty roster.
type FacultyDirectory interface {
	ListFaculty(ctx context.Context) ([]persistence.Faculty, error)
	ListFacultyByDepartment(ctx context.Context, dept persistence.Department) ([]persistence.Faculty, error)
}

// RequestStore captures the request operations the visit workflow needs.
type RequestStore interface {
	ListRequests(ctx context.Context) ([]persistence.VisitorRequest, error)
	GetRequest(ctx context.Context, id string) (persistence.VisitorRequest, bool, error)
	ListRequestsByFaculty(ctx context.Context, facultyName string) ([]persistence.VisitorRequest, error)
	AddRequest(ctx context.Context, fields persistence.RequestFields) (persistence.VisitorRequest, error)
	UpdateRequestStatus(ctx context.Context, id string, status persistence.RequestStatus) (persistence.StatusUpdate, error)
}

// ChatStore captures the chat operations the chat workflow needs.
type ChatStore interface {
	GetRequest(ctx context.Context, id string) (persistence.VisitorRequest, bool, error)
	GetChat(ctx context.Context, requestID string) (persistence.Chat, bool, error)
	AddChatMessage(ctx context.Context, requestID, sender, text string) (persistence.MessageAppend, error)
}

// EventRecorder receives workflow events, typically for metrics.
type EventRecorder interface {
	RequestSubmitted(department string)
	StatusChanged(status string)
	MessageSent()
}

type noopRecorder struct{}

func (noopRecorder) RequestSubmitted(string) {}
func (noopRecorder) StatusChanged(string)    {}
func (noopRecorder) MessageSent()            {}

func defaultRecorder(events EventRecorder) EventRecorder {
	if events == nil {
		return noopRecorder{}
	}
	return events
}
