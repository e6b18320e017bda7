// Package registry maps node kinds to their factories. Node kinds are a
// closed set; attaching behavior to a node is a dispatch on its kind tag,
// not open-ended type inspection.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/xeipuuv/gojsonschema"

	"github.com/chatoptimize/chatgraph/pkg/canvas"
	"github.com/chatoptimize/chatgraph/pkg/models"
)

// Kind builds nodes of one kind and attaches their behavior.
type Kind interface {
	// ID returns the kind tag this factory handles.
	ID() models.NodeKind

	// Name returns the human-readable name for this node kind.
	Name() string

	// Description returns a description of what this node kind does.
	Description() string

	// Schema returns the JSON schema for the kind's widget values.
	Schema() map[string]any

	// New creates a node with the kind's widget and slot layout.
	New(id string) *models.Node

	// Setup attaches behavior to a node already placed on a canvas.
	Setup(cv *canvas.Canvas, node *models.Node) error
}

type Registry struct {
	logger *slog.Logger
	kinds  map[models.NodeKind]Kind
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger,
		kinds:  make(map[models.NodeKind]Kind),
	}
}

// Register adds a kind factory, rejecting factories whose widget schema
// does not compile.
func (r *Registry) Register(k Kind) error {
	if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(k.Schema())); err != nil {
		return fmt.Errorf("invalid schema for node kind %q: %w", k.ID(), err)
	}

	r.kinds[k.ID()] = k
	r.logger.Debug("registered node kind", "kind", k.ID())

	return nil
}

// Kind looks up a registered factory.
func (r *Registry) Kind(kind models.NodeKind) (Kind, error) {
	k, ok := r.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("node kind %q not registered", kind)
	}

	return k, nil
}

// Instantiate creates a node of the given kind, checks its initial widget
// values against the kind's schema, places it on the canvas graph and
// attaches its behavior.
func (r *Registry) Instantiate(cv *canvas.Canvas, kind models.NodeKind, id string) (*models.Node, error) {
	k, err := r.Kind(kind)
	if err != nil {
		return nil, err
	}

	node := k.New(id)

	if err := r.ValidateWidgetValues(kind, widgetValues(node)); err != nil {
		return nil, err
	}

	cv.Graph().AddNode(node)

	if err := k.Setup(cv, node); err != nil {
		return nil, fmt.Errorf("setup failed for node kind %q: %w", kind, err)
	}

	return node, nil
}

// Attach runs the kind's setup routine on an existing node, for nodes the
// host created itself (e.g. loaded from a serialized graph).
func (r *Registry) Attach(cv *canvas.Canvas, node *models.Node) error {
	k, err := r.Kind(node.Kind)
	if err != nil {
		return err
	}

	return k.Setup(cv, node)
}

// ValidateWidgetValues checks a widget value map against the kind's schema.
func (r *Registry) ValidateWidgetValues(kind models.NodeKind, values map[string]any) error {
	k, err := r.Kind(kind)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(k.Schema()),
		gojsonschema.NewGoLoader(values),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed for kind %q: %w", kind, err)
	}

	if !result.Valid() {
		errs := result.Errors()
		if len(errs) > 0 {
			return fmt.Errorf("invalid widget values for kind %q: %s", kind, errs[0].String())
		}

		return fmt.Errorf("invalid widget values for kind %q", kind)
	}

	return nil
}

func widgetValues(node *models.Node) map[string]any {
	values := make(map[string]any)

	for _, w := range node.Widgets {
		if w.Type == models.WidgetTypeButton || w.Value == nil {
			continue
		}

		values[w.Name] = w.Value
	}

	return values
}
