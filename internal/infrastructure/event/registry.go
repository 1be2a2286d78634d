package event

import (
	"sync"

	"github.com/worldref/backend/internal/domain/shared"
)

// EventTypeAll subscribes a handler to every event type
const EventTypeAll = "*"

// HandlerRegistry tracks which handlers listen to which event types.
// Wildcard subscriptions live under the EventTypeAll key and are
// folded into every lookup.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
}

// NewHandlerRegistry creates a new handler registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string][]shared.EventHandler)}
}

// Register adds a handler for an event type.
func (r *HandlerRegistry) Register(eventType string, handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[eventType] = append(r.handlers[eventType], handler)
}

// Unregister removes a handler from an event type.
func (r *HandlerRegistry) Unregister(eventType string, handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.handlers[eventType][:0]
	for _, h := range r.handlers[eventType] {
		if h != handler {
			kept = append(kept, h)
		}
	}
	if len(kept) == 0 {
		delete(r.handlers, eventType)
		return
	}
	r.handlers[eventType] = kept
}

// GetHandlers returns the handlers listening to eventType, wildcard
// subscribers included.
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typed := r.handlers[eventType]
	wildcard := r.handlers[EventTypeAll]

	result := make([]shared.EventHandler, 0, len(typed)+len(wildcard))
	result = append(result, typed...)
	return append(result, wildcard...)
}
