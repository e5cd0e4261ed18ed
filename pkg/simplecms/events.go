package simplecms

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// EventAction enumerates the fixed dispatch points of the write pipeline.
type EventAction string

// Event action constants (typed).
const (
	ActionCreating      EventAction = "creating"
	ActionCreated       EventAction = "created"
	ActionUpdating      EventAction = "updating"
	ActionUpdated       EventAction = "updated"
	ActionDeleting      EventAction = "deleting"
	ActionDeleted       EventAction = "deleted"
	ActionForceDeleting EventAction = "forceDeleting"
	ActionForceDeleted  EventAction = "forceDeleted"
)

// Event is the payload dispatched at each pipeline point. Name is
// "<kind>.<action>", e.g. "content.created".
type Event struct {
	Name     string
	Kind     EntityKind
	Action   EventAction
	EntityID uuid.UUID
	Entity   *Entity
}

// NewEvent builds a lifecycle event for an entity.
func NewEvent(action EventAction, entity *Entity) Event {
	return Event{
		Name:     EventName(entity.Kind, action),
		Kind:     entity.Kind,
		Action:   action,
		EntityID: entity.ID,
		Entity:   entity,
	}
}

// EventName returns the wire name for a kind/action pair.
func EventName(kind EntityKind, action EventAction) string {
	return fmt.Sprintf("%s.%s", kind, action)
}

// Cache audience constants. Listing caches are keyed per kind/audience pair.
const (
	CacheAudiencePublic = "public"
	CacheAudienceAdmin  = "admin"
)

// ListingCacheKey returns the listing cache key for a kind/audience pair.
func ListingCacheKey(kind EntityKind, audience string) string {
	return fmt.Sprintf("%s:filter:%s", kind, audience)
}

// ListingCacheKeys returns every known coarse listing cache key for a kind.
// Invalidation is per entity kind, not per entity.
func ListingCacheKeys(kind EntityKind) []string {
	return []string{
		ListingCacheKey(kind, CacheAudiencePublic),
		ListingCacheKey(kind, CacheAudienceAdmin),
	}
}

// LogEventBus writes each event to the standard logger. Useful for
// development servers.
type LogEventBus struct{}

// NewLogEventBus creates an event bus that logs every event.
func NewLogEventBus() EventBus { return &LogEventBus{} }

// Fire implements EventBus.
func (b *LogEventBus) Fire(ctx context.Context, event Event) error {
	log.Printf("event fired: %s (entity: %s)", event.Name, event.EntityID)
	return nil
}
