package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeConfigCommitted    EventType = "config_committed"
	EventTypeAnnouncementPosted EventType = "announcement_posted"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// ConfigCommittedEvent represents a guild configuration save
type ConfigCommittedEvent struct {
	GuildID   int64
	UpdatedBy int64
}

func (e ConfigCommittedEvent) Type() EventType {
	return EventTypeConfigCommitted
}

// AnnouncementPostedEvent represents a report or war declaration that
// was posted successfully
type AnnouncementPostedEvent struct {
	GuildID      int64
	Kind         string
	ActorID      int64
	TargetRoleID int64
	ChannelID    int64
	MessageID    int64
	Mirrored     bool
}

func (e AnnouncementPostedEvent) Type() EventType {
	return EventTypeAnnouncementPosted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish emits an event to all registered handlers. Handlers run
// asynchronously so a slow subscriber never blocks an interaction.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	ctx := context.Background()
	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}
