package shared

import "context"

// EventHandler processes domain events
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventType() string
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber subscribes handlers to event types
type EventSubscriber interface {
	Subscribe(eventType string, handler EventHandler) error
	Unsubscribe(eventType string, handler EventHandler) error
}

// EventBus combines publishing and subscribing
type EventBus interface {
	EventPublisher
	EventSubscriber
}
