// Package testutil provides test builders and stand-ins for canvas tests.
package testutil

import (
	"context"
	"log/slog"
	"sync"

	"github.com/chatoptimize/chatgraph/pkg/canvas"
	"github.com/chatoptimize/chatgraph/pkg/client"
	"github.com/chatoptimize/chatgraph/pkg/models"
	"github.com/chatoptimize/chatgraph/pkg/runloop"
)

// StubChatClient scripts backend responses and records payloads. Chat runs
// off the loop, so access is guarded.
type StubChatClient struct {
	mu       sync.Mutex
	calls    []map[string]any
	Response client.Response
	Err      error

	// Handler, when set, overrides Response/Err per call.
	Handler func(payload map[string]any) (client.Response, error)
}

func (s *StubChatClient) Chat(_ context.Context, payload map[string]any) (client.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, payload)
	handler := s.Handler
	resp, err := s.Response, s.Err
	s.mu.Unlock()

	if handler != nil {
		return handler(payload)
	}

	return resp, err
}

// Calls returns a snapshot of recorded payloads.
func (s *StubChatClient) Calls() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]map[string]any, len(s.calls))
	copy(out, s.calls)

	return out
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewCanvas builds a canvas over a fresh graph with a stub backend.
func NewCanvas(opts ...canvas.Option) (*canvas.Canvas, *runloop.Loop, *StubChatClient) {
	loop := runloop.New()
	stub := &StubChatClient{}
	cv := canvas.New(models.NewGraph(), loop, stub, Logger(), opts...)

	return cv, loop, stub
}
