package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/visit-desk/internal/persistence"
)

// ChatService reads and appends to the chat of an approved request.
type ChatService struct {
	store  ChatStore
	events EventRecorder
	logger *slog.Logger
}

// NewChatService constructs a chat service.
func NewChatService(store ChatStore, events EventRecorder) *ChatService {
	return NewChatServiceWithLogger(store, events, nil)
}

// NewChatServiceWithLogger constructs a chat service with a specified logger.
func NewChatServiceWithLogger(store ChatStore, events EventRecorder, logger *slog.Logger) *ChatService {
	return &ChatService{store: store, events: defaultRecorder(events), logger: defaultLogger(logger)}
}

func (s *ChatService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ChatService", operation, attrs...)
}

// OpenChat returns the chat of requestID. The chat is available only while
// the request is approved; a chat kept from an earlier approval stays hidden
// after the request is put on hold or declined.
func (s *ChatService) OpenChat(ctx context.Context, requestID string) (view ChatView, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("ChatService is not configured")
		return
	}
	id := strings.TrimSpace(requestID)
	logger := s.loggerWith(ctx, "OpenChat", "request_id", id)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "chat not opened", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	view, err = s.load(ctx, id)
	return
}

// SendMessage appends a message from one of the chat's participants and
// returns the updated chat.
func (s *ChatService) SendMessage(ctx context.Context, params SendMessageParams) (view ChatView, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("ChatService is not configured")
		return
	}

	id := strings.TrimSpace(params.RequestID)
	sender := strings.TrimSpace(params.Sender)
	text := strings.TrimSpace(params.Text)

	logger := s.loggerWith(ctx, "SendMessage", "request_id", id, "sender", sender)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to send message", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("message_count", len(view.Chat.Messages)).InfoContext(ctx, "message sent")
	}()

	vErr := &ValidationError{}
	if sender == "" {
		vErr.add("sender", "is required")
	}
	if text == "" {
		vErr.add("text", "message cannot be empty")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	view, err = s.load(ctx, id)
	if err != nil {
		return
	}
	if sender != view.Chat.VisitorName && sender != view.Chat.FacultyName {
		err = ErrUnauthorized
		return
	}

	var appended persistence.MessageAppend
	appended, err = s.store.AddChatMessage(ctx, id, sender, text)
	if err != nil {
		return
	}
	if appended.Outcome == persistence.OutcomeNotFound {
		err = ErrChatUnavailable
		return
	}
	s.events.MessageSent()

	view.Chat.Messages = append(view.Chat.Messages, appended.Message)
	return
}

func (s *ChatService) load(ctx context.Context, id string) (ChatView, error) {
	if id == "" {
		vErr := &ValidationError{}
		vErr.add("requestId", "is required")
		return ChatView{}, vErr
	}

	request, found, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return ChatView{}, err
	}
	if !found {
		return ChatView{}, ErrNotFound
	}

	chat, found, err := s.store.GetChat(ctx, id)
	if err != nil {
		return ChatView{}, err
	}
	if !found || request.Status != persistence.StatusApproved {
		return ChatView{}, ErrChatUnavailable
	}
	if chat.Messages == nil {
		chat.Messages = []persistence.ChatMessage{}
	}
	return ChatView{Chat: chat, Request: request}, nil
}

// Counterpart returns the participant opposite current, which lets a viewer
// toggle between the visitor and faculty side of a chat.
func Counterpart(chat persistence.Chat, current string) (string, bool) {
	switch strings.TrimSpace(current) {
	case chat.VisitorName:
		return chat.FacultyName, true
	case chat.FacultyName:
		return chat.VisitorName, true
	}
	return "", false
}
