package persistence

import (
	"strings"
	"time"
)

// Department identifies the organizational unit a faculty member belongs to.
type Department string

const (
	DepartmentIT   Department = "IT"
	DepartmentCS   Department = "CS"
	DepartmentENTC Department = "ENTC"
)

// Departments returns the known departments in display order.
func Departments() []Department {
	return []Department{DepartmentIT, DepartmentCS, DepartmentENTC}
}

// ParseDepartment resolves a department code, ignoring surrounding whitespace and case.
func ParseDepartment(value string) (Department, bool) {
	candidate := Department(strings.ToUpper(strings.TrimSpace(value)))
	for _, dept := range Departments() {
		if dept == candidate {
			return dept, true
		}
	}
	return "", false
}

// RequestStatus is the lifecycle state of a visitor request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusHold     RequestStatus = "hold"
	StatusDeclined RequestStatus = "declined"
)

// Statuses returns every request status.
func Statuses() []RequestStatus {
	return []RequestStatus{StatusPending, StatusApproved, StatusHold, StatusDeclined}
}

// ParseRequestStatus resolves a status name, ignoring surrounding whitespace and case.
func ParseRequestStatus(value string) (RequestStatus, bool) {
	candidate := RequestStatus(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range Statuses() {
		if status == candidate {
			return status, true
		}
	}
	return "", false
}

// Faculty is a roster entry. The roster is seeded once and never modified.
type Faculty struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Department Department `json:"dept"`
}

// VisitorRequest is a visitor's application to meet a faculty member.
type VisitorRequest struct {
	ID          string        `json:"id"`
	VisitorName string        `json:"visitorName"`
	Mobile      string        `json:"mobile"`
	FacultyName string        `json:"facultyName"`
	Department  Department    `json:"dept"`
	Reason      string        `json:"reason"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// RequestFields carries the caller supplied fields of a new request.
type RequestFields struct {
	VisitorName string
	Mobile      string
	FacultyName string
	Department  Department
	Reason      string
}

// ChatMessage is a single entry of a chat thread. Time holds a clock time without a date.
type ChatMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
	Time   string `json:"time"`
}

// Chat is the message thread attached to an approved request.
type Chat struct {
	FacultyName string        `json:"facultyName"`
	VisitorName string        `json:"visitorName"`
	RequestID   string        `json:"requestId"`
	Messages    []ChatMessage `json:"messages"`
}

// Outcome reports whether a mutation found its target.
type Outcome int

const (
	// OutcomeApplied means the target record existed and was mutated.
	OutcomeApplied Outcome = iota
	// OutcomeNotFound means no record matched and nothing was written.
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeNotFound:
		return "not_found"
	}
	return "unknown"
}

// StatusUpdate is the result of UpdateRequestStatus.
type StatusUpdate struct {
	Outcome     Outcome
	Request     VisitorRequest
	ChatCreated bool
}

// MessageAppend is the result of AddChatMessage.
type MessageAppend struct {
	Outcome Outcome
	Message ChatMessage
}
