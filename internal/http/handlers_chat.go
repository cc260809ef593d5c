package http

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"

	"zaman/internal/assistant"
	"zaman/internal/llm"
	"zaman/internal/log"
)

const maxChatMessages = 50

type chatRequest struct {
	// Messages is the conversation so far, oldest first.
	Messages []llm.Message `json:"messages"`
	// Message is a shortcut for a single user turn.
	Message string `json:"message,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.deps.Assistant == nil {
		ErrorResponse(http.StatusServiceUnavailable, "assistant_disabled", assistant.UpstreamMessage).Write(w)
		return
	}

	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if len(req.Messages) > maxChatMessages {
		req.Messages = req.Messages[len(req.Messages)-maxChatMessages:]
	}
	history := make([]llm.Message, 0, len(req.Messages)+1)
	for _, m := range req.Messages {
		history = append(history, llm.Message{Role: m.Role, Content: sanitizeInput(m.Content)})
	}
	if msg := sanitizeInput(req.Message); msg != "" {
		history = append(history, llm.Message{Role: llm.RoleUser, Content: msg})
	}

	s.appMetrics.chatRequests.Add(1)
	reply, err := s.deps.Assistant.Chat(ctx, history)
	switch {
	case errors.Is(err, assistant.ErrEmptyMessage):
		BadRequestError("Напишите сообщение для ассистента.").Write(w)
		return
	case errors.Is(err, assistant.ErrUpstream):
		s.appMetrics.upstreamErrors.Add(1)
		captureError(r, err)
		BadGatewayError(assistant.UpstreamMessage).Write(w)
		return
	case err != nil:
		log.FromContext(ctx).ErrorContext(ctx, "Chat failed", log.FieldError, err, log.FieldOperation, log.OpChat)
		captureError(r, err)
		InternalServerError(assistant.UpstreamMessage).Write(w)
		return
	}

	if reply.Tool != "" {
		s.track(r, "chat_tool_call", map[string]any{"tool": reply.Tool, "products": len(reply.Products)})
	}
	OK(reply).Write(w)
}

// captureError reports err to Sentry through the request hub when error
// reporting is enabled. Without a client it does nothing.
func captureError(r *http.Request, err error) {
	hub := sentry.GetHubFromContext(r.Context())
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}

// track records a telemetry event on behalf of a handler. Failures are
// logged and never change the response.
func (s *Server) track(r *http.Request, event string, payload any) {
	if s.deps.Telemetry == nil {
		return
	}
	ctx := r.Context()
	if _, err := s.deps.Telemetry.Track(ctx, event, payload); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Failed to record telemetry",
			log.FieldEvent, event,
			log.FieldError, err)
	}
}
