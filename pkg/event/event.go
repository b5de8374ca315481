// pkg/event/event.go
package event

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Type represents the type of event
type Type string

// Common event types
const (
	EntitySpawned     Type = "entity_spawned"
	EntityRemoved     Type = "entity_removed"
	EntityPossessed   Type = "entity_possessed"
	ShipLanded        Type = "ship_landed"
	ShipTookOff       Type = "ship_took_off"
	TuningReloaded    Type = "tuning_reloaded"
	SimulationStarted Type = "simulation_started"
	SimulationEnded   Type = "simulation_ended"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler. Cancel removes it.
type Subscription struct {
	ID     uint64
	Cancel func()
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Cancel: func() { b.unsubscribe(eventType, id) },
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			// Copy so in-flight Publish calls keep their snapshot intact.
			next := make([]subscriber, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.handlers, eventType)
			} else {
				b.handlers[eventType] = next
			}
			return
		}
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// Specific event implementations

// EntityEvent reports an entity entering, leaving or being possessed
type EntityEvent struct {
	BaseEvent
	EntityID uint64
	Kind     string
	Name     string
}

// NewEntityEvent creates a new entity event
func NewEntityEvent(eventType Type, source interface{}, entityID uint64, kind, name string) *EntityEvent {
	return &EntityEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		EntityID: entityID,
		Kind:     kind,
		Name:     name,
	}
}

// LandingEvent reports a ship landing or taking off
type LandingEvent struct {
	BaseEvent
	ShipID   uint64
	Position mgl64.Vec3
	Normal   mgl64.Vec3
}

// NewLandingEvent creates a new landing event
func NewLandingEvent(eventType Type, source interface{}, shipID uint64, position, normal mgl64.Vec3) *LandingEvent {
	return &LandingEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		ShipID:   shipID,
		Position: position,
		Normal:   normal,
	}
}

// SimulationEvent marks the start or end of a run
type SimulationEvent struct {
	BaseEvent
	Tick    uint64
	Elapsed float64
}

// NewSimulationEvent creates a new simulation event
func NewSimulationEvent(eventType Type, source interface{}, tick uint64, elapsed float64) *SimulationEvent {
	return &SimulationEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Tick:    tick,
		Elapsed: elapsed,
	}
}
