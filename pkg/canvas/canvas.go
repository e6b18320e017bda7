// Package canvas orchestrates chat nodes on the host graph: it runs the
// per-node action state machine, propagates results downstream, and keeps
// widget locks in step with connectivity.
package canvas

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/chatoptimize/chatgraph/pkg/client"
	"github.com/chatoptimize/chatgraph/pkg/graph"
	"github.com/chatoptimize/chatgraph/pkg/modal"
	"github.com/chatoptimize/chatgraph/pkg/models"
	"github.com/chatoptimize/chatgraph/pkg/runloop"
)

// ChatClient is the backend seen by the dispatcher: a single opaque
// request/response endpoint.
type ChatClient interface {
	Chat(ctx context.Context, payload map[string]any) (client.Response, error)
}

// Canvas binds a graph, the UI loop, and the backend client together. One
// canvas exists per hosting editor; all of its methods run on the loop.
type Canvas struct {
	graph    *models.Graph
	acc      *graph.Accessor
	loop     *runloop.Loop
	client   ChatClient
	logger   *slog.Logger
	tracer   trace.Tracer
	surfaces func() modal.Surface
}

type Option func(*Canvas)

// WithModalSurface overrides how the shared history modal builds its
// overlay. The default is an in-memory surface.
func WithModalSurface(build func() modal.Surface) Option {
	return func(cv *Canvas) {
		cv.surfaces = build
	}
}

func New(g *models.Graph, loop *runloop.Loop, chatClient ChatClient, logger *slog.Logger, opts ...Option) *Canvas {
	cv := &Canvas{
		graph:    g,
		acc:      graph.New(g),
		loop:     loop,
		client:   chatClient,
		logger:   logger,
		tracer:   otel.Tracer("chatgraph/canvas"),
		surfaces: modal.NewMemorySurface,
	}

	for _, opt := range opts {
		opt(cv)
	}

	return cv
}

func (cv *Canvas) Graph() *models.Graph {
	return cv.graph
}

func (cv *Canvas) Accessor() *graph.Accessor {
	return cv.acc
}

func (cv *Canvas) Loop() *runloop.Loop {
	return cv.loop
}

// HistoryViewer returns the process-wide modal viewer, creating it on first
// use with this canvas's surface factory.
func (cv *Canvas) HistoryViewer() *modal.Viewer {
	return modal.Shared(cv.loop, cv.surfaces)
}
