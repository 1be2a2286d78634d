package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/worldref/backend/internal/domain/shared"
)

// InMemoryEventBus delivers domain events synchronously to the
// handlers registered for their type. A failing handler never stops
// delivery to the others.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	running  atomic.Bool
	wg       sync.WaitGroup
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
}

// Publish delivers each event to every subscribed handler in turn.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, evt := range events {
		for _, handler := range b.registry.GetHandlers(evt.EventType()) {
			if err := b.dispatch(ctx, handler, evt); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", evt.EventType()),
					zap.String("event_id", evt.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler for an event type. Use EventTypeAll to
// receive every event.
func (b *InMemoryEventBus) Subscribe(eventType string, handler shared.EventHandler) error {
	b.registry.Register(eventType, handler)
	b.logger.Debug("handler subscribed", zap.String("event_type", eventType))
	return nil
}

// Unsubscribe removes a handler from an event type.
func (b *InMemoryEventBus) Unsubscribe(eventType string, handler shared.EventHandler) error {
	b.registry.Unregister(eventType, handler)
	b.logger.Debug("handler unsubscribed", zap.String("event_type", eventType))
	return nil
}

// Start marks the bus as accepting events.
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started")
	return nil
}

// Stop waits for in-flight deliveries before shutting down.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)
	b.wg.Wait()
	b.logger.Info("event bus stopped")
	return nil
}

// dispatch invokes a handler, converting a panic into an error so one
// broken subscriber cannot take the publisher down.
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, evt)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
