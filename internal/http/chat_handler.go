package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/visit-desk/internal/application"
)

type chatService interface {
	OpenChat(ctx context.Context, requestID string) (application.ChatView, error)
	SendMessage(ctx context.Context, params application.SendMessageParams) (application.ChatView, error)
}

type ChatHandler struct {
	service   chatService
	responder responder
	logger    *slog.Logger
}

func NewChatHandler(service chatService, logger *slog.Logger) *ChatHandler {
	base := defaultLogger(logger)
	return &ChatHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ChatHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ChatHandler", operation, attrs...)
}

// Get returns the chat of an approved request. With ?as=<participant> the
// response also names the participant on the other side.
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request, requestID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Get", "request_id", requestID)

	view, err := h.service.OpenChat(r.Context(), requestID)
	if err != nil {
		logger.WarnContext(r.Context(), "chat unavailable", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := chatResponse{Chat: toChatDTO(view.Chat), Request: toRequestDTO(view.Request)}
	if as := strings.TrimSpace(r.URL.Query().Get("as")); as != "" {
		counterpart, ok := application.Counterpart(view.Chat, as)
		if !ok {
			h.responder.handleServiceError(r.Context(), w, &application.ValidationError{
				FieldErrors: map[string]string{"as": "must be the visitor or the faculty member of this chat"},
			})
			return
		}
		resp.Viewer = as
		resp.Counterpart = counterpart
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request, requestID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req messageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "PostMessage", "request_id", requestID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode chat message", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "PostMessage", "request_id", requestID, "sender", req.Sender)

	view, err := h.service.SendMessage(r.Context(), application.SendMessageParams{
		RequestID: requestID,
		Sender:    req.Sender,
		Text:      req.Text,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "chat message rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := chatResponse{Chat: toChatDTO(view.Chat), Request: toRequestDTO(view.Request)}
	if counterpart, ok := application.Counterpart(view.Chat, req.Sender); ok {
		resp.Viewer = strings.TrimSpace(req.Sender)
		resp.Counterpart = counterpart
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, resp)
}

type messageRequest struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type chatResponse struct {
	Chat        chatDTO    `json:"chat"`
	Request     requestDTO `json:"request"`
	Viewer      string     `json:"viewer,omitempty"`
	Counterpart string     `json:"counterpart,omitempty"`
}
