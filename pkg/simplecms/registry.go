package simplecms

import (
	"time"

	"github.com/google/uuid"
)

// Registry is the default TypeRegistry implementation: a static map of
// registered types per entity kind, with an optional blockable factory for
// types that require a sub-resource. Adding a type never touches the write
// pipeline.
type Registry struct {
	types map[EntityKind]map[string]BlockableFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[EntityKind]map[string]BlockableFactory)}
}

// Register adds a plain type (no sub-resource) for a kind.
func (r *Registry) Register(kind EntityKind, entityType string) *Registry {
	return r.RegisterFactory(kind, entityType, nil)
}

// RegisterFactory adds a type whose entities own a sub-resource built by
// factory.
func (r *Registry) RegisterFactory(kind EntityKind, entityType string, factory BlockableFactory) *Registry {
	if r.types[kind] == nil {
		r.types[kind] = make(map[string]BlockableFactory)
	}
	r.types[kind][entityType] = factory
	return r
}

// Has implements TypeRegistry.
func (r *Registry) Has(kind EntityKind, entityType string) bool {
	_, ok := r.types[kind][entityType]
	return ok
}

// Factory implements TypeRegistry.
func (r *Registry) Factory(kind EntityKind, entityType string) (BlockableFactory, bool) {
	factory, ok := r.types[kind][entityType]
	if !ok || factory == nil {
		return nil, false
	}
	return factory, true
}

// DefaultRegistry returns a registry preloaded with the stock types:
// plain content pages and articles, plain text/html blocks, and widget
// blocks backed by WidgetFactory.
func DefaultRegistry() *Registry {
	return NewRegistry().
		Register(KindContent, "page").
		Register(KindContent, "article").
		Register(KindBlock, "text").
		Register(KindBlock, "html").
		RegisterFactory(KindBlock, "widget", WidgetFactory{})
}

// WidgetFactory builds widget sub-resources from the "widget" sub-payload.
type WidgetFactory struct{}

// PayloadKey implements BlockableFactory.
func (WidgetFactory) PayloadKey() string { return "widget" }

// Build implements BlockableFactory.
func (WidgetFactory) Build(payload map[string]any) (*Blockable, error) {
	if len(payload) == 0 {
		return nil, NewValidationError("widget", "payload is required")
	}
	return &Blockable{
		ID:        uuid.New(),
		Type:      "widget",
		Data:      payload,
		CreatedAt: time.Now().UTC(),
	}, nil
}
