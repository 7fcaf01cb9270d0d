package testfixtures

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/example/visit-desk/internal/application"
	"github.com/example/visit-desk/internal/persistence"
)

// FastArgon2idParams keeps access code hashing cheap in tests.
var FastArgon2idParams = application.Argon2idParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

// ServiceFactory wires the application services over a StoreHarness.
type ServiceFactory struct {
	Harness *StoreHarness
	Events  application.EventRecorder
	Logger  *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory.
type ServiceFactoryOption func(*ServiceFactory)

// WithHarness overrides the store harness.
func WithHarness(harness *StoreHarness) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.Harness = harness }
}

// WithEvents sets the event recorder passed to the services.
func WithEvents(events application.EventRecorder) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.Events = events }
}

// NewServiceFactory returns a factory over an in-memory harness unless overridden.
func NewServiceFactory(tb testing.TB, opts ...ServiceFactoryOption) *ServiceFactory {
	tb.Helper()
	factory := &ServiceFactory{Logger: DiscardLogger()}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Harness == nil {
		factory.Harness = NewStoreHarness(tb)
	}
	return factory
}

// Store returns the harness document store.
func (f *ServiceFactory) Store() *persistence.Store {
	return f.Harness.Store
}

func (f *ServiceFactory) NewDirectoryService() *application.DirectoryService {
	return application.NewDirectoryServiceWithLogger(f.Store(), f.Logger)
}

func (f *ServiceFactory) NewVisitService() *application.VisitService {
	return application.NewVisitServiceWithLogger(f.Store(), f.Store(), f.Events, f.Logger)
}

func (f *ServiceFactory) NewChatService() *application.ChatService {
	return application.NewChatServiceWithLogger(f.Store(), f.Events, f.Logger)
}

// NewGateService returns a gate accepting GatePhone and GateCode with random tokens.
func (f *ServiceFactory) NewGateService(tb testing.TB) *application.GateService {
	tb.Helper()
	hash, err := application.HashAccessCode(GateCode, FastArgon2idParams)
	if err != nil {
		tb.Fatalf("failed to hash access code: %v", err)
	}
	return application.NewGateServiceWithLogger(
		f.Store(),
		application.GateConfig{Phone: GatePhone, CodeHash: hash},
		uuid.NewString,
		f.Harness.Clock.NowFunc(),
		f.Logger,
	)
}

// ApprovedRequest submits the fixture request and approves it as its faculty member.
func (f *ServiceFactory) ApprovedRequest(tb testing.TB, opts ...RequestOption) persistence.VisitorRequest {
	tb.Helper()
	ctx := context.Background()
	fixture := NewRequestFixture(opts...)

	request, err := f.Store().AddRequest(ctx, fixture.Fields())
	if err != nil {
		tb.Fatalf("failed to add request: %v", err)
	}
	update, err := f.Store().UpdateRequestStatus(ctx, request.ID, persistence.StatusApproved)
	if err != nil || update.Outcome != persistence.OutcomeApplied {
		tb.Fatalf("failed to approve request: outcome=%v err=%v", update.Outcome, err)
	}
	return update.Request
}
