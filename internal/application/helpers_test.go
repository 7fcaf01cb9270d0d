package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/example/visit-desk/internal/persistence"
	"github.com/example/visit-desk/internal/persistence/memory"
)

var testNow = time.Date(2024, time.March, 14, 14, 5, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *persistence.Store {
	t.Helper()
	n := 0
	store := persistence.NewStoreWithLogger(memory.New(), func() string {
		n++
		return fmt.Sprintf("req-%d", n)
	}, func() time.Time { return testNow }, discardLogger())
	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	return store
}

func aliceInput() RequestInput {
	return RequestInput{
		VisitorName: "Alice",
		Mobile:      "9876543210",
		Department:  "CS",
		FacultyName: "Prof. Kimi Ramteke",
		Reason:      "project guidance",
	}
}

var kimi = Principal{FacultyName: "Prof. Kimi Ramteke", Department: persistence.DepartmentCS}

type recordedEvents struct {
	mu        sync.Mutex
	submitted []string
	statuses  []string
	messages  int
}

func (r *recordedEvents) RequestSubmitted(department string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitted = append(r.submitted, department)
}

func (r *recordedEvents) StatusChanged(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *recordedEvents) MessageSent() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages++
}

// failingStore fails every read and write with err.
type failingStore struct {
	err error
}

func (f failingStore) ListFaculty(context.Context) ([]persistence.Faculty, error) {
	return nil, f.err
}

func (f failingStore) ListFacultyByDepartment(context.Context, persistence.Department) ([]persistence.Faculty, error) {
	return nil, f.err
}

func (f failingStore) ListRequests(context.Context) ([]persistence.VisitorRequest, error) {
	return nil, f.err
}

func (f failingStore) GetRequest(context.Context, string) (persistence.VisitorRequest, bool, error) {
	return persistence.VisitorRequest{}, false, f.err
}

func (f failingStore) ListRequestsByFaculty(context.Context, string) ([]persistence.VisitorRequest, error) {
	return nil, f.err
}

func (f failingStore) AddRequest(context.Context, persistence.RequestFields) (persistence.VisitorRequest, error) {
	return persistence.VisitorRequest{}, f.err
}

func (f failingStore) UpdateRequestStatus(context.Context, string, persistence.RequestStatus) (persistence.StatusUpdate, error) {
	return persistence.StatusUpdate{}, f.err
}

func (f failingStore) GetChat(context.Context, string) (persistence.Chat, bool, error) {
	return persistence.Chat{}, false, f.err
}

func (f failingStore) AddChatMessage(context.Context, string, string, string) (persistence.MessageAppend, error) {
	return persistence.MessageAppend{}, f.err
}
