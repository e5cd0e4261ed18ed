package simplecms

import "context"

// NoopEventBus is a no-operation implementation of EventBus.
// Useful when no consumers are registered or for testing.
type NoopEventBus struct{}

// NewNoopEventBus creates a new no-operation event bus.
func NewNoopEventBus() EventBus {
	return &NoopEventBus{}
}

// Fire does nothing and returns nil.
func (n *NoopEventBus) Fire(ctx context.Context, event Event) error {
	return nil
}

// NoopCache is a no-operation implementation of Cache.
type NoopCache struct{}

// NewNoopCache creates a new no-operation cache.
func NewNoopCache() Cache {
	return &NoopCache{}
}

// Forget does nothing and returns nil.
func (n *NoopCache) Forget(ctx context.Context, key string) error {
	return nil
}

// PassthroughLanguageResolver resolves every identifier to itself, for
// deployments whose callers already pass language codes.
type PassthroughLanguageResolver struct{}

// NewPassthroughLanguageResolver creates a pass-through language resolver.
func NewPassthroughLanguageResolver() LanguageResolver {
	return &PassthroughLanguageResolver{}
}

// Resolve returns the identifier unchanged.
func (n *PassthroughLanguageResolver) Resolve(ctx context.Context, identifier string) (string, error) {
	return identifier, nil
}
