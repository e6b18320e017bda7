// Package chatsvc implements the backend chat actions: it owns session
// transcripts, drives the configured LLM provider, and publishes chat
// lifecycle events.
package chatsvc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/chatoptimize/chatgraph/pkg/backend/provider"
	"github.com/chatoptimize/chatgraph/pkg/backend/session"
	"github.com/chatoptimize/chatgraph/pkg/eventbus"
	"github.com/chatoptimize/chatgraph/pkg/events"
	"github.com/chatoptimize/chatgraph/pkg/otelhelper"
)

// Action identifiers accepted by Chat.
const (
	ActionSend       = "send"
	ActionRegenerate = "regenerate"
	ActionClear      = "clear"
	ActionDeliver    = "deliver_to_optimizer"
)

// Request is one chat action. Config carries an optional attached config
// record whose fields override the widget-level model and endpoint.
type Request struct {
	SessionID    string
	Action       string
	UserMessage  string
	SystemPrompt string
	Refresh      bool
	ModelName    string
	BaseURL      string
	Config       map[string]any
}

// Result mirrors the chat endpoint's response body. AssistantResponse is
// only populated by deliver_to_optimizer; conversational actions report
// through ReadableHistory alone.
type Result struct {
	AssistantResponse string `json:"assistant_response"`
	ReadableHistory   string `json:"readable_history"`
}

type Service struct {
	sessions  session.Repository
	providers *provider.Registry
	publisher eventbus.EventPublisher
	logger    *slog.Logger
	tracer    trace.Tracer
}

type Option func(*Service)

// WithPublisher enables chat lifecycle events. Without it the service stays
// silent on the bus.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func NewService(sessions session.Repository, providers *provider.Registry, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		sessions:  sessions,
		providers: providers,
		logger:    logger.With("module", "chatsvc"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Chat executes one action against a session and returns the endpoint
// response. Provider failures do not fail the call; they are recorded in the
// transcript as an assistant-side error message so the user sees what
// happened.
func (s *Service) Chat(ctx context.Context, req Request) (Result, error) {
	settings := s.resolveSettings(req)

	if s.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, s.tracer, "chatsvc.chat",
			attribute.String(otelhelper.SessionIDKey, req.SessionID),
			attribute.String(otelhelper.ActionKey, req.Action),
			attribute.String(otelhelper.ProviderKey, settings.providerName),
			attribute.String(otelhelper.ModelKey, settings.request.Model),
		)
		defer span.End()
	}

	history, err := s.loadHistory(ctx, req)
	if err != nil {
		return Result{}, err
	}

	switch req.Action {
	case ActionClear:
		return s.clear(ctx, req)
	case ActionDeliver:
		return s.deliver(ctx, req.SessionID, history)
	}

	messages := history

	switch req.Action {
	case ActionRegenerate:
		messages = truncateAtLastAssistant(messages)
	default:
		if strings.TrimSpace(req.UserMessage) != "" {
			messages = append(messages, session.Message{Role: session.RoleUser, Content: req.UserMessage})
		}
	}

	if len(messages) > 0 && messages[len(messages)-1].Role == session.RoleUser {
		messages = s.generate(ctx, req.SessionID, settings, messages)
	}

	if err := s.sessions.Put(ctx, req.SessionID, messages); err != nil {
		return Result{}, fmt.Errorf("failed to persist session: %w", err)
	}

	return Result{ReadableHistory: session.ReadableHistory(messages)}, nil
}

// loadHistory fetches the transcript, resetting it when asked to refresh,
// when the session is new, or when a system prompt is set but not pinned at
// the top.
func (s *Service) loadHistory(ctx context.Context, req Request) ([]session.Message, error) {
	history, found, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if req.Refresh || !found {
		return session.Reset(req.SystemPrompt), nil
	}

	if req.SystemPrompt != "" {
		if len(history) == 0 || history[0].Role != session.RoleSystem {
			return session.Reset(req.SystemPrompt), nil
		}
	}

	return history, nil
}

func (s *Service) clear(ctx context.Context, req Request) (Result, error) {
	if err := s.sessions.Put(ctx, req.SessionID, session.Reset(req.SystemPrompt)); err != nil {
		return Result{}, fmt.Errorf("failed to persist session: %w", err)
	}

	s.publish(ctx, req.SessionID, events.ChatSessionCleared{
		BaseEvent: events.NewBaseEvent(events.ChatSessionClearedEvent, req.SessionID),
	})

	return Result{}, nil
}

// deliver hands the latest assistant reply downstream as a prompt, stripped
// of markdown fencing, together with the full readable transcript. The
// transcript itself is left untouched.
func (s *Service) deliver(ctx context.Context, sessionID string, messages []session.Message) (Result, error) {
	var latest string

	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == session.RoleAssistant {
			latest = messages[i].Content

			break
		}
	}

	latest = provider.CleanOutput(latest)

	s.publish(ctx, sessionID, events.ChatPromptDelivered{
		BaseEvent:    events.NewBaseEvent(events.ChatPromptDeliveredEvent, sessionID),
		PromptLength: len(latest),
	})

	return Result{
		AssistantResponse: latest,
		ReadableHistory:   session.ReadableHistory(messages),
	}, nil
}

// generate runs the provider on the transcript and appends the outcome, the
// reply on success or an inline error marker on failure.
func (s *Service) generate(ctx context.Context, sessionID string, settings resolvedSettings, messages []session.Message) []session.Message {
	providerReq := settings.request
	providerReq.Messages = messages

	p := s.providers.Resolve(settings.providerName)

	text, err := p.Complete(ctx, providerReq)
	if err != nil {
		s.logger.Warn("provider call failed",
			"session_id", sessionID, "provider", p.Name(), "model", providerReq.Model, "error", err)

		return append(messages, session.Message{
			Role:    session.RoleAssistant,
			Content: fmt.Sprintf("[chat error] %s", err),
		})
	}

	messages = append(messages, session.Message{Role: session.RoleAssistant, Content: text})

	s.publish(ctx, sessionID, events.ChatResponseGenerated{
		BaseEvent: events.NewBaseEvent(events.ChatResponseGeneratedEvent, sessionID),
		Provider:  p.Name(),
		Model:     providerReq.Model,
		Turns:     len(messages),
	})

	return messages
}

func (s *Service) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(ctx, key, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func truncateAtLastAssistant(messages []session.Message) []session.Message {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == session.RoleAssistant {
			return messages[:i]
		}
	}

	return messages
}
