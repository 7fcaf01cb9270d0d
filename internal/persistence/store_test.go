package persistence_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/visit-desk/internal/persistence"
	"github.com/example/visit-desk/internal/persistence/memory"
)

type faultyKV struct {
	*memory.Store
	getErr error
	putErr error
	// failKey restricts putErr to a single document when set.
	failKey string
	puts    int
}

func (f *faultyKV) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f *faultyKV) Put(ctx context.Context, key string, value []byte) error {
	if f.putErr != nil && (f.failKey == "" || f.failKey == key) {
		return f.putErr
	}
	f.puts++
	return f.Store.Put(ctx, key, value)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("req-%d", n)
	}
}

var fixedNow = time.Date(2024, time.March, 14, 14, 5, 0, 0, time.UTC)

func newStore(t *testing.T) (*persistence.Store, *memory.Store) {
	t.Helper()
	kv := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := persistence.NewStoreWithLogger(kv, sequentialIDs(), func() time.Time { return fixedNow }, logger)
	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	return store, kv
}

func aliceFields() persistence.RequestFields {
	return persistence.RequestFields{
		VisitorName: "Alice",
		Mobile:      "9876543210",
		Department:  persistence.DepartmentCS,
		FacultyName: "Prof. Kimi Ramteke",
		Reason:      "project guidance",
	}
}

func TestStore_Initialize(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds every absent document", func(t *testing.T) {
		store, kv := newStore(t)

		keys := kv.Keys()
		if len(keys) != 3 {
			t.Fatalf("expected three documents, got %v", keys)
		}
		faculty, err := store.ListFaculty(ctx)
		if err != nil {
			t.Fatalf("list faculty failed: %v", err)
		}
		if len(faculty) != 6 {
			t.Fatalf("expected six seeded faculty, got %d", len(faculty))
		}
		raw, _ := kv.Get(ctx, persistence.KeyVisitorRequests)
		if string(raw) != "[]" {
			t.Fatalf("expected empty request array, got %q", raw)
		}
	})

	t.Run("never resets existing collections", func(t *testing.T) {
		store, _ := newStore(t)

		request, err := store.AddRequest(ctx, aliceFields())
		if err != nil {
			t.Fatalf("add request failed: %v", err)
		}
		if _, err := store.UpdateRequestStatus(ctx, request.ID, persistence.StatusApproved); err != nil {
			t.Fatalf("update status failed: %v", err)
		}

		if err := store.Initialize(ctx); err != nil {
			t.Fatalf("second initialize failed: %v", err)
		}

		requests, _ := store.ListRequests(ctx)
		if len(requests) != 1 {
			t.Fatalf("expected request to survive re-initialization, got %d", len(requests))
		}
		chats, _ := store.ListChats(ctx)
		if len(chats) != 1 {
			t.Fatalf("expected chat to survive re-initialization, got %d", len(chats))
		}
	})

	t.Run("propagates backend failures", func(t *testing.T) {
		boom := errors.New("backend down")
		store := persistence.NewStore(&faultyKV{Store: memory.New(), getErr: boom}, nil, nil)
		if err := store.Initialize(ctx); !errors.Is(err, boom) {
			t.Fatalf("expected backend error, got %v", err)
		}
	})
}

func TestStore_Faculty(t *testing.T) {
	ctx := context.Background()

	t.Run("filters by department in seed order", func(t *testing.T) {
		store, _ := newStore(t)

		entc, err := store.ListFacultyByDepartment(ctx, persistence.DepartmentENTC)
		if err != nil {
			t.Fatalf("list by department failed: %v", err)
		}
		if len(entc) != 2 {
			t.Fatalf("expected two ENTC faculty, got %d", len(entc))
		}
		if entc[0].Name != "Prof. V. Jadhav" || entc[1].Name != "Dr. N. Shinde" {
			t.Fatalf("unexpected ENTC roster: %+v", entc)
		}
	})

	t.Run("falls back to the seed roster when the document is absent", func(t *testing.T) {
		store := persistence.NewStore(memory.New(), nil, nil)
		faculty, err := store.ListFaculty(ctx)
		if err != nil {
			t.Fatalf("list faculty failed: %v", err)
		}
		if len(faculty) != 6 || faculty[0].Name != "Prof. Shital Ghule" {
			t.Fatalf("expected seed roster, got %+v", faculty)
		}
	})
}

func TestStore_AddRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending requests with unique ids", func(t *testing.T) {
		store, _ := newStore(t)

		seen := map[string]bool{}
		for i := 0; i < 5; i++ {
			request, err := store.AddRequest(ctx, aliceFields())
			if err != nil {
				t.Fatalf("add request failed: %v", err)
			}
			if request.Status != persistence.StatusPending {
				t.Fatalf("expected pending status, got %q", request.Status)
			}
			if seen[request.ID] {
				t.Fatalf("id %q returned twice", request.ID)
			}
			seen[request.ID] = true
			if !request.CreatedAt.Equal(fixedNow) {
				t.Fatalf("expected createdAt from clock, got %v", request.CreatedAt)
			}
		}
	})

	t.Run("skips ids already in use", func(t *testing.T) {
		kv := memory.New()
		ids := []string{"dup", "dup", "fresh"}
		next := 0
		store := persistence.NewStore(kv, func() string {
			id := ids[next]
			next++
			return id
		}, nil)

		first, _ := store.AddRequest(ctx, aliceFields())
		second, err := store.AddRequest(ctx, aliceFields())
		if err != nil {
			t.Fatalf("add request failed: %v", err)
		}
		if first.ID != "dup" || second.ID != "fresh" {
			t.Fatalf("expected dup then fresh, got %q and %q", first.ID, second.ID)
		}
	})

	t.Run("fails when the generator cannot produce a unique id", func(t *testing.T) {
		store := persistence.NewStore(memory.New(), func() string { return "" }, nil)
		if _, err := store.AddRequest(ctx, aliceFields()); !errors.Is(err, persistence.ErrIDExhausted) {
			t.Fatalf("expected ErrIDExhausted, got %v", err)
		}
	})

	t.Run("is listed by faculty", func(t *testing.T) {
		store, _ := newStore(t)
		if _, err := store.AddRequest(ctx, aliceFields()); err != nil {
			t.Fatalf("add request failed: %v", err)
		}
		other := aliceFields()
		other.FacultyName = "Dr. N. Shinde"
		if _, err := store.AddRequest(ctx, other); err != nil {
			t.Fatalf("add request failed: %v", err)
		}

		requests, err := store.ListRequestsByFaculty(ctx, "Prof. Kimi Ramteke")
		if err != nil {
			t.Fatalf("list by faculty failed: %v", err)
		}
		if len(requests) != 1 || requests[0].Status != persistence.StatusPending {
			t.Fatalf("expected one pending request, got %+v", requests)
		}
	})
}

func TestStore_UpdateRequestStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown ids change nothing", func(t *testing.T) {
		kv := &faultyKV{Store: memory.New()}
		store := persistence.NewStore(kv, sequentialIDs(), nil)
		if err := store.Initialize(ctx); err != nil {
			t.Fatalf("initialize failed: %v", err)
		}
		if _, err := store.AddRequest(ctx, aliceFields()); err != nil {
			t.Fatalf("add request failed: %v", err)
		}
		before, _ := kv.Get(ctx, persistence.KeyVisitorRequests)
		writes := kv.puts

		update, err := store.UpdateRequestStatus(ctx, "missing", persistence.StatusApproved)
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if update.Outcome != persistence.OutcomeNotFound {
			t.Fatalf("expected OutcomeNotFound, got %v", update.Outcome)
		}
		if kv.puts != writes {
			t.Fatalf("expected no writes, got %d", kv.puts-writes)
		}
		after, _ := kv.Get(ctx, persistence.KeyVisitorRequests)
		if string(before) != string(after) {
			t.Fatalf("request collection changed")
		}
		chats, _ := store.ListChats(ctx)
		if len(chats) != 0 {
			t.Fatalf("expected no chats, got %d", len(chats))
		}
	})

	t.Run("approval opens exactly one chat", func(t *testing.T) {
		store, _ := newStore(t)
		request, _ := store.AddRequest(ctx, aliceFields())

		first, err := store.UpdateRequestStatus(ctx, request.ID, persistence.StatusApproved)
		if err != nil {
			t.Fatalf("approve failed: %v", err)
		}
		if !first.ChatCreated || first.Request.Status != persistence.StatusApproved {
			t.Fatalf("expected approval to create chat, got %+v", first)
		}

		chat, ok, err := store.GetChat(ctx, request.ID)
		if err != nil || !ok {
			t.Fatalf("expected chat, ok=%v err=%v", ok, err)
		}
		if len(chat.Messages) != 0 {
			t.Fatalf("expected empty chat, got %d messages", len(chat.Messages))
		}
		if chat.FacultyName != "Prof. Kimi Ramteke" || chat.VisitorName != "Alice" {
			t.Fatalf("unexpected chat participants: %+v", chat)
		}

		if _, err := store.AddChatMessage(ctx, request.ID, "Alice", "Hello"); err != nil {
			t.Fatalf("add message failed: %v", err)
		}

		second, err := store.UpdateRequestStatus(ctx, request.ID, persistence.StatusApproved)
		if err != nil {
			t.Fatalf("re-approve failed: %v", err)
		}
		if second.ChatCreated {
			t.Fatalf("expected re-approval to reuse the chat")
		}
		chats, _ := store.ListChats(ctx)
		if len(chats) != 1 {
			t.Fatalf("expected one chat, got %d", len(chats))
		}
		if len(chats[0].Messages) != 1 {
			t.Fatalf("expected messages to survive re-approval, got %d", len(chats[0].Messages))
		}
	})

	t.Run("any status may follow any other and chats persist", func(t *testing.T) {
		store, _ := newStore(t)
		request, _ := store.AddRequest(ctx, aliceFields())

		sequence := []persistence.RequestStatus{
			persistence.StatusApproved,
			persistence.StatusDeclined,
			persistence.StatusHold,
			persistence.StatusHold,
			persistence.StatusPending,
		}
		for _, status := range sequence {
			update, err := store.UpdateRequestStatus(ctx, request.ID, status)
			if err != nil {
				t.Fatalf("transition to %s failed: %v", status, err)
			}
			if update.Request.Status != status {
				t.Fatalf("expected %s, got %s", status, update.Request.Status)
			}
		}
		if _, ok, _ := store.GetChat(ctx, request.ID); !ok {
			t.Fatalf("expected chat opened by the approval to remain")
		}
	})
}

func TestStore_AddChatMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("appends in order with clock time", func(t *testing.T) {
		store, _ := newStore(t)
		request, _ := store.AddRequest(ctx, aliceFields())
		if _, err := store.UpdateRequestStatus(ctx, request.ID, persistence.StatusApproved); err != nil {
			t.Fatalf("approve failed: %v", err)
		}

		appended, err := store.AddChatMessage(ctx, request.ID, "Alice", "Hello")
		if err != nil {
			t.Fatalf("add message failed: %v", err)
		}
		if appended.Outcome != persistence.OutcomeApplied {
			t.Fatalf("expected OutcomeApplied, got %v", appended.Outcome)
		}
		if appended.Message.Time != "02:05 PM" {
			t.Fatalf("expected 12-hour clock time, got %q", appended.Message.Time)
		}
		if _, err := store.AddChatMessage(ctx, request.ID, "Prof. Kimi Ramteke", "Welcome"); err != nil {
			t.Fatalf("add message failed: %v", err)
		}

		chat, _, _ := store.GetChat(ctx, request.ID)
		if len(chat.Messages) != 2 {
			t.Fatalf("expected two messages, got %d", len(chat.Messages))
		}
		if chat.Messages[0].Sender != "Alice" || chat.Messages[0].Text != "Hello" {
			t.Fatalf("unexpected first message: %+v", chat.Messages[0])
		}
		if chat.Messages[1].Text != "Welcome" {
			t.Fatalf("unexpected second message: %+v", chat.Messages[1])
		}
	})

	t.Run("unknown chats are left untouched", func(t *testing.T) {
		store, kv := newStore(t)
		before, _ := kv.Get(ctx, persistence.KeyChats)

		appended, err := store.AddChatMessage(ctx, "missing", "Alice", "Hello")
		if err != nil {
			t.Fatalf("add message failed: %v", err)
		}
		if appended.Outcome != persistence.OutcomeNotFound {
			t.Fatalf("expected OutcomeNotFound, got %v", appended.Outcome)
		}
		after, _ := kv.Get(ctx, persistence.KeyChats)
		if string(before) != string(after) {
			t.Fatalf("chat collection changed")
		}
	})

	t.Run("init chat is idempotent", func(t *testing.T) {
		store, _ := newStore(t)
		created, err := store.InitChat(ctx, "Dr. N. Shinde", "Bob", "req-x")
		if err != nil || !created {
			t.Fatalf("expected chat creation, created=%v err=%v", created, err)
		}
		created, err = store.InitChat(ctx, "Someone Else", "Carol", "req-x")
		if err != nil || created {
			t.Fatalf("expected existing chat to be kept, created=%v err=%v", created, err)
		}
		chat, _, _ := store.GetChat(ctx, "req-x")
		if chat.VisitorName != "Bob" {
			t.Fatalf("expected original participants, got %+v", chat)
		}
	})
}

func TestStore_MalformedDocuments(t *testing.T) {
	ctx := context.Background()

	kv := memory.New()
	for _, key := range persistence.Keys() {
		if err := kv.Put(ctx, key, []byte(`{not json`)); err != nil {
			t.Fatalf("put failed: %v", err)
		}
	}
	store := persistence.NewStoreWithLogger(kv, sequentialIDs(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	faculty, err := store.ListFaculty(ctx)
	if err != nil || len(faculty) != 0 {
		t.Fatalf("expected empty roster without error, got %d err=%v", len(faculty), err)
	}
	requests, err := store.ListRequests(ctx)
	if err != nil || len(requests) != 0 {
		t.Fatalf("expected empty requests without error, got %d err=%v", len(requests), err)
	}
	if _, ok, err := store.GetChat(ctx, "any"); ok || err != nil {
		t.Fatalf("expected no chat without error, ok=%v err=%v", ok, err)
	}

	request, err := store.AddRequest(ctx, aliceFields())
	if err != nil {
		t.Fatalf("expected writes to recover the collection, got %v", err)
	}
	requests, _ = store.ListRequests(ctx)
	if len(requests) != 1 || requests[0].ID != request.ID {
		t.Fatalf("expected recovered collection with one request, got %+v", requests)
	}
}

func TestStore_WriteFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	kv := &faultyKV{Store: memory.New(), putErr: boom}
	store := persistence.NewStore(kv, sequentialIDs(), nil)

	if _, err := store.AddRequest(ctx, aliceFields()); !errors.Is(err, boom) {
		t.Fatalf("expected write error, got %v", err)
	}

	t.Run("failed chat write keeps previous status", func(t *testing.T) {
		kv := &faultyKV{Store: memory.New()}
		store := persistence.NewStore(kv, sequentialIDs(), nil)
		if err := store.Initialize(ctx); err != nil {
			t.Fatalf("initialize failed: %v", err)
		}
		request, err := store.AddRequest(ctx, aliceFields())
		if err != nil {
			t.Fatalf("add request failed: %v", err)
		}
		if _, err := store.UpdateRequestStatus(ctx, request.ID, persistence.StatusHold); err != nil {
			t.Fatalf("hold failed: %v", err)
		}

		kv.putErr = boom
		kv.failKey = persistence.KeyChats
		if _, err := store.UpdateRequestStatus(ctx, request.ID, persistence.StatusApproved); !errors.Is(err, boom) {
			t.Fatalf("expected chat write error, got %v", err)
		}

		stored, ok, err := store.GetRequest(ctx, request.ID)
		if err != nil || !ok {
			t.Fatalf("get request failed: ok=%v err=%v", ok, err)
		}
		if stored.Status != persistence.StatusHold {
			t.Fatalf("expected status %q after failed approval, got %q", persistence.StatusHold, stored.Status)
		}
		if _, ok, _ := store.GetChat(ctx, request.ID); ok {
			t.Fatalf("expected no chat after failed approval")
		}

		kv.putErr = nil
		update, err := store.UpdateRequestStatus(ctx, request.ID, persistence.StatusApproved)
		if err != nil {
			t.Fatalf("approve failed: %v", err)
		}
		if !update.ChatCreated {
			t.Fatalf("expected chat to be created on retry")
		}
	})
}
