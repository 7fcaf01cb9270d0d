package testfixtures

import (
	"github.com/example/visit-desk/internal/application"
	"github.com/example/visit-desk/internal/persistence"
)

// Seeded roster members used across tests.
const (
	FacultyCS   = "Prof. Kimi Ramteke"
	FacultyCS2  = "Dr. Shital Wadgavane"
	FacultyIT   = "Prof. Shital Ghule"
	FacultyENTC = "Dr. N. Shinde"
)

// Demo gate credentials used by the service factory.
const (
	GatePhone = "9999999999"
	GateCode  = "123456"
)

// RequestFixture is a valid visitor request form.
type RequestFixture struct {
	VisitorName string
	Mobile      string
	Department  string
	FacultyName string
	Reason      string
}

// RequestOption configures a RequestFixture.
type RequestOption func(*RequestFixture)

// NewRequestFixture returns Alice's request to Prof. Kimi Ramteke with optional overrides.
func NewRequestFixture(opts ...RequestOption) RequestFixture {
	fixture := RequestFixture{
		VisitorName: "Alice",
		Mobile:      "9876543210",
		Department:  string(persistence.DepartmentCS),
		FacultyName: FacultyCS,
		Reason:      "project guidance",
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithVisitor overrides the visitor name.
func WithVisitor(name string) RequestOption {
	return func(f *RequestFixture) { f.VisitorName = name }
}

// WithMobile overrides the mobile number.
func WithMobile(mobile string) RequestOption {
	return func(f *RequestFixture) { f.Mobile = mobile }
}

// WithFaculty addresses the request to name in dept.
func WithFaculty(dept persistence.Department, name string) RequestOption {
	return func(f *RequestFixture) {
		f.Department = string(dept)
		f.FacultyName = name
	}
}

// WithReason overrides the reason.
func WithReason(reason string) RequestOption {
	return func(f *RequestFixture) { f.Reason = reason }
}

// Input converts the fixture into the application form.
func (f RequestFixture) Input() application.RequestInput {
	return application.RequestInput{
		VisitorName: f.VisitorName,
		Mobile:      f.Mobile,
		Department:  f.Department,
		FacultyName: f.FacultyName,
		Reason:      f.Reason,
	}
}

// Fields converts the fixture into store fields without validation.
func (f RequestFixture) Fields() persistence.RequestFields {
	return persistence.RequestFields{
		VisitorName: f.VisitorName,
		Mobile:      f.Mobile,
		Department:  persistence.Department(f.Department),
		FacultyName: f.FacultyName,
		Reason:      f.Reason,
	}
}
