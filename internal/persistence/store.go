package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MessageTimeLayout formats chat message times as a 12-hour clock without a date.
const MessageTimeLayout = "03:04 PM"

const maxIDAttempts = 5

// Store keeps the faculty roster, visitor requests, and chats as three JSON
// documents in a KeyValueStore.
//
// Mutations are read-modify-write sequences over a whole document. They are
// serialized within one Store; separate processes sharing a backend are not
// coordinated.
type Store struct {
	kv          KeyValueStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger

	mu sync.Mutex
}

// NewStore constructs a store over kv. A nil idGenerator falls back to random
// UUIDs and a nil clock to time.Now.
func NewStore(kv KeyValueStore, idGenerator func() string, now func() time.Time) *Store {
	return NewStoreWithLogger(kv, idGenerator, now, nil)
}

// NewStoreWithLogger constructs a store that reports malformed documents to logger.
func NewStoreWithLogger(kv KeyValueStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Store {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, idGenerator: idGenerator, now: now, logger: logger.With("component", "store")}
}

// Initialize seeds every absent document: the faculty roster with the fixed
// seed and the request and chat collections as empty arrays. Documents that
// already exist are left untouched.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seeds := map[string]any{
		KeyFaculty:         SeedFaculty(),
		KeyVisitorRequests: []VisitorRequest{},
		KeyChats:           []Chat{},
	}
	for _, key := range Keys() {
		_, err := s.kv.Get(ctx, key)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("initialize %s: %w", key, err)
		}
		if err := s.write(ctx, key, seeds[key]); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "document seeded", "key", key)
	}
	return nil
}

// ListFaculty returns the roster in seed order. A missing roster document
// yields the seed roster.
func (s *Store) ListFaculty(ctx context.Context) ([]Faculty, error) {
	faculty, found, err := readCollection[Faculty](ctx, s, KeyFaculty)
	if err != nil {
		return nil, err
	}
	if !found {
		return SeedFaculty(), nil
	}
	return faculty, nil
}

// ListFacultyByDepartment returns the roster entries whose department equals dept.
func (s *Store) ListFacultyByDepartment(ctx context.Context, dept Department) ([]Faculty, error) {
	faculty, err := s.ListFaculty(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]Faculty, 0, len(faculty))
	for _, member := range faculty {
		if member.Department == dept {
			matches = append(matches, member)
		}
	}
	return matches, nil
}

// ListRequests returns every request in submission order.
func (s *Store) ListRequests(ctx context.Context) ([]VisitorRequest, error) {
	requests, _, err := readCollection[VisitorRequest](ctx, s, KeyVisitorRequests)
	return requests, err
}

// GetRequest looks up a request by id.
func (s *Store) GetRequest(ctx context.Context, id string) (VisitorRequest, bool, error) {
	requests, err := s.ListRequests(ctx)
	if err != nil {
		return VisitorRequest{}, false, err
	}
	if idx := indexOfRequest(requests, id); idx >= 0 {
		return requests[idx], true, nil
	}
	return VisitorRequest{}, false, nil
}

// ListRequestsByFaculty returns the requests addressed to facultyName (exact match).
func (s *Store) ListRequestsByFaculty(ctx context.Context, facultyName string) ([]VisitorRequest, error) {
	requests, err := s.ListRequests(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]VisitorRequest, 0, len(requests))
	for _, request := range requests {
		if request.FacultyName == facultyName {
			matches = append(matches, request)
		}
	}
	return matches, nil
}

// AddRequest appends a new pending request built from fields and returns it.
// Fields are stored as given; validation belongs to the caller.
func (s *Store) AddRequest(ctx context.Context, fields RequestFields) (VisitorRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests, err := s.ListRequests(ctx)
	if err != nil {
		return VisitorRequest{}, err
	}

	id, err := s.nextRequestID(requests)
	if err != nil {
		return VisitorRequest{}, err
	}

	request := VisitorRequest{
		ID:          id,
		VisitorName: fields.VisitorName,
		Mobile:      fields.Mobile,
		FacultyName: fields.FacultyName,
		Department:  fields.Department,
		Reason:      fields.Reason,
		Status:      StatusPending,
		CreatedAt:   s.now().UTC(),
	}
	requests = append(requests, request)
	if err := s.write(ctx, KeyVisitorRequests, requests); err != nil {
		return VisitorRequest{}, err
	}
	return request, nil
}

// UpdateRequestStatus sets the status of request id. Any status may follow any
// other. Moving to approved also opens the request's chat when none exists yet.
// An unknown id writes nothing and reports OutcomeNotFound.
func (s *Store) UpdateRequestStatus(ctx context.Context, id string, status RequestStatus) (StatusUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests, err := s.ListRequests(ctx)
	if err != nil {
		return StatusUpdate{}, err
	}
	idx := indexOfRequest(requests, id)
	if idx < 0 {
		return StatusUpdate{Outcome: OutcomeNotFound}, nil
	}

	previous := requests[idx].Status
	requests[idx].Status = status
	if err := s.write(ctx, KeyVisitorRequests, requests); err != nil {
		return StatusUpdate{}, err
	}

	update := StatusUpdate{Outcome: OutcomeApplied, Request: requests[idx]}
	if status == StatusApproved {
		created, err := s.initChatLocked(ctx, update.Request.FacultyName, update.Request.VisitorName, id)
		if err != nil {
			// An approved request must always have a chat.
			requests[idx].Status = previous
			if rollbackErr := s.write(ctx, KeyVisitorRequests, requests); rollbackErr != nil {
				s.logger.ErrorContext(ctx, "status rollback failed",
					"request_id", id,
					"status", string(previous),
					"error", rollbackErr,
				)
				return StatusUpdate{}, errors.Join(err, rollbackErr)
			}
			return StatusUpdate{}, err
		}
		update.ChatCreated = created
	}
	return update, nil
}

// ListChats returns every chat in creation order.
func (s *Store) ListChats(ctx context.Context) ([]Chat, error) {
	chats, _, err := readCollection[Chat](ctx, s, KeyChats)
	return chats, err
}

// GetChat returns the chat attached to requestID.
func (s *Store) GetChat(ctx context.Context, requestID string) (Chat, bool, error) {
	chats, err := s.ListChats(ctx)
	if err != nil {
		return Chat{}, false, err
	}
	if idx := indexOfChat(chats, requestID); idx >= 0 {
		return chats[idx], true, nil
	}
	return Chat{}, false, nil
}

// InitChat opens an empty chat for requestID unless one exists. It reports
// whether a chat was created.
func (s *Store) InitChat(ctx context.Context, facultyName, visitorName, requestID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initChatLocked(ctx, facultyName, visitorName, requestID)
}

func (s *Store) initChatLocked(ctx context.Context, facultyName, visitorName, requestID string) (bool, error) {
	chats, err := s.ListChats(ctx)
	if err != nil {
		return false, err
	}
	if indexOfChat(chats, requestID) >= 0 {
		return false, nil
	}
	chats = append(chats, Chat{
		FacultyName: facultyName,
		VisitorName: visitorName,
		RequestID:   requestID,
		Messages:    []ChatMessage{},
	})
	if err := s.write(ctx, KeyChats, chats); err != nil {
		return false, err
	}
	return true, nil
}

// AddChatMessage appends a message stamped with the current clock time to the
// chat of requestID. Without such a chat nothing is written and the result
// reports OutcomeNotFound.
func (s *Store) AddChatMessage(ctx context.Context, requestID, sender, text string) (MessageAppend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chats, err := s.ListChats(ctx)
	if err != nil {
		return MessageAppend{}, err
	}
	idx := indexOfChat(chats, requestID)
	if idx < 0 {
		return MessageAppend{Outcome: OutcomeNotFound}, nil
	}

	message := ChatMessage{
		Sender: sender,
		Text:   text,
		Time:   s.now().Format(MessageTimeLayout),
	}
	chats[idx].Messages = append(chats[idx].Messages, message)
	if err := s.write(ctx, KeyChats, chats); err != nil {
		return MessageAppend{}, err
	}
	return MessageAppend{Outcome: OutcomeApplied, Message: message}, nil
}

// readCollection decodes the array stored under key. It reports false when the
// key is absent. Undecodable documents are logged and read as empty.
func readCollection[T any](ctx context.Context, s *Store, key string) ([]T, bool, error) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.WarnContext(ctx, "discarding malformed document",
			"key", key,
			"error", err,
			"error_kind", "malformed_persisted_data",
		)
		return nil, true, nil
	}
	return items, true, nil
}

func (s *Store) write(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, payload); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) nextRequestID(existing []VisitorRequest) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := s.idGenerator()
		if id != "" && indexOfRequest(existing, id) < 0 {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}

func indexOfRequest(requests []VisitorRequest, id string) int {
	for i, request := range requests {
		if request.ID == id {
			return i
		}
	}
	return -1
}

func indexOfChat(chats []Chat, requestID string) int {
	for i, chat := range chats {
		if chat.RequestID == requestID {
			return i
		}
	}
	return -1
}
