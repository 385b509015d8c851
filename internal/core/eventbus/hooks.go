package eventbus

import (
	"slices"
	"sync"
	"sync/atomic"
)

// hookList is an append-only set of callbacks. Callers iterate over a copy,
// so a hook may register more hooks while it runs.
type hookList[F any] struct {
	mu  sync.RWMutex
	fns []F
}

func (l *hookList[F]) add(fn F) {
	l.mu.Lock()
	l.fns = append(l.fns, fn)
	l.mu.Unlock()
}

func (l *hookList[F]) snapshot() []F {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.fns)
}

type hooks struct {
	published hookList[func(Event, any)]
	dropped   hookList[func(Event, any)]
	panicked  hookList[func(Event, any, any)]

	drops atomic.Int64
}

// OnPublish registers fn to run after an event is queued for dispatch.
func (bus *EventBus) OnPublish(fn func(Event, any)) {
	bus.hooks.published.add(fn)
}

// OnDrop registers fn to run when an event is discarded because the queue
// is full. Card lifecycle events are never retried.
func (bus *EventBus) OnDrop(fn func(Event, any)) {
	bus.hooks.dropped.add(fn)
}

// OnPanic registers fn to run with the recovered value when a subscriber
// panics. A panic inside fn itself is swallowed.
func (bus *EventBus) OnPanic(fn func(Event, any, any)) {
	bus.hooks.panicked.add(fn)
}

// Dropped returns how many events have been discarded since the bus was
// created.
func (bus *EventBus) Dropped() int64 {
	return bus.hooks.drops.Load()
}

func (bus *EventBus) send(event Event, payload any) {
	select {
	case bus.ch <- envelope{event: event, payload: payload}:
		for _, fn := range bus.hooks.published.snapshot() {
			fn(event, payload)
		}
	default:
		bus.hooks.drops.Add(1)
		for _, fn := range bus.hooks.dropped.snapshot() {
			fn(event, payload)
		}
	}
}

func (bus *EventBus) notifyPanic(event Event, payload any, recovered any) {
	for _, fn := range bus.hooks.panicked.snapshot() {
		func() {
			defer func() { _ = recover() }()
			fn(event, payload, recovered)
		}()
	}
}
