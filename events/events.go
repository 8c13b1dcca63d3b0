package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeWalletSubmitted EventType = "wallet_submitted"
	EventTypeSettingsChanged EventType = "settings_changed"
	EventTypeMemberPurged    EventType = "member_purged"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// WalletSubmittedEvent represents a wallet that was recorded for a user
type WalletSubmittedEvent struct {
	UserID      int64
	Wallet      string
	WalletCount int
	MaxWallets  int
}

func (e WalletSubmittedEvent) Type() EventType {
	return EventTypeWalletSubmitted
}

// SettingsChangedEvent represents an admin configuration change
type SettingsChangedEvent struct {
	Setting string // which setting changed, e.g. "max_wallets" or "reset"
	Value   string // human-readable new value
}

func (e SettingsChangedEvent) Type() EventType {
	return EventTypeSettingsChanged
}

// MemberPurgedEvent represents a departing member whose wallets were removed
type MemberPurgedEvent struct {
	UserID        int64
	WalletsPurged int
}

func (e MemberPurgedEvent) Type() EventType {
	return EventTypeMemberPurged
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

// Emit publishes an event to all registered handlers. Handlers run
// asynchronously so emitters never block on subscribers.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

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
