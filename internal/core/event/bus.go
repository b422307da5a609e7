package event

import "reflect"

// Bus is a typed event queue keyed by event type. Handlers run when the
// simulation loop calls DispatchAll at the output phase, so events emitted
// by packet handlers or systems are delivered within the same tick, after
// all simulation passes have run.
//
// Single-goroutine use only: the simulation loop owns the bus.
type Bus struct {
	queued   map[reflect.Type][]any
	order    []reflect.Type
	handlers map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{
		queued:   make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]any),
	}
}

// Emit queues an event for delivery at the next DispatchAll.
func Emit[T any](b *Bus, ev T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if _, ok := b.queued[t]; !ok {
		b.order = append(b.order, t)
	}
	b.queued[t] = append(b.queued[t], ev)
}

// Subscribe registers a handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], fn)
}

// DispatchAll delivers every queued event to its subscribers and clears the
// queue. Event types are delivered in first-emitted order.
func (b *Bus) DispatchAll() {
	for _, t := range b.order {
		events := b.queued[t]
		handlers := b.handlers[t]
		for _, ev := range events {
			for _, h := range handlers {
				// Safe: Subscribe and Emit key handlers and events
				// by the same concrete type.
				reflect.ValueOf(h).Call([]reflect.Value{reflect.ValueOf(ev)})
			}
		}
		// Remove the key entirely so the next Emit of this type re-enters
		// the order list.
		delete(b.queued, t)
	}
	b.order = b.order[:0]
}
