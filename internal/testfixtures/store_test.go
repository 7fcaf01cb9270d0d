package testfixtures

import (
	"context"
	"testing"

	"github.com/example/visit-desk/internal/persistence"
)

func TestStoreHarnesses(t *testing.T) {
	builders := map[string]func(testing.TB) *StoreHarness{
		"memory": NewStoreHarness,
		"sqlite": NewSQLiteStoreHarness,
	}
	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			harness := build(t)
			ctx := context.Background()

			request, err := harness.Store.AddRequest(ctx, NewRequestFixture().Fields())
			if err != nil {
				t.Fatalf("add request failed: %v", err)
			}
			if request.ID != "req-1" || !request.CreatedAt.Equal(ReferenceTime()) {
				t.Fatalf("expected deterministic id and time, got %+v", request)
			}
			faculty, err := harness.Store.ListFacultyByDepartment(ctx, persistence.DepartmentCS)
			if err != nil || len(faculty) != 2 || faculty[0].Name != FacultyCS {
				t.Fatalf("unexpected CS roster %+v err=%v", faculty, err)
			}
		})
	}
}

func TestServiceFactoryApprovedRequest(t *testing.T) {
	factory := NewServiceFactory(t)
	request := factory.ApprovedRequest(t, WithVisitor("Bob"))

	if request.Status != persistence.StatusApproved || request.VisitorName != "Bob" {
		t.Fatalf("unexpected request %+v", request)
	}
	view, err := factory.NewChatService().OpenChat(context.Background(), request.ID)
	if err != nil {
		t.Fatalf("expected chat to be available: %v", err)
	}
	if view.Chat.VisitorName != "Bob" {
		t.Fatalf("unexpected chat %+v", view.Chat)
	}
}
