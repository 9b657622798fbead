package eventbus

import (
	"context"
	"errors"
	"reflect"
	"sync"
)

// Handler consumes one published event.
type Handler func(ctx context.Context, event any) error

// Bus is the in-process publish/subscribe surface the downtime engine uses
// to hand calculation outcomes to their consumers.
type Bus interface {
	Publish(ctx context.Context, event any) error
	Subscribe(topic string, handler Handler)
}

// ErrNilEvent rejects a nil publish.
var ErrNilEvent = errors.New("eventbus: nil event")

// ErrUnexpectedEvent is returned by a typed handler that received a payload
// of the wrong type.
var ErrUnexpectedEvent = errors.New("eventbus: unexpected event payload")

// InMemoryBus delivers events synchronously to subscribers in registration
// order. Calculation runs and their consumers share one process, so there
// is no broker; Publish returns after every handler ran.
type InMemoryBus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
}

// NewInMemoryBus constructs an empty bus.
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{subscribers: make(map[string][]Handler)}
}

// Publish hands the event to every subscriber of its topic. A failing
// handler does not stop delivery to the rest; handler errors are joined
// into the returned error.
func (b *InMemoryBus) Publish(ctx context.Context, event any) error {
	if event == nil {
		return ErrNilEvent
	}
	topic := topicOf(reflect.TypeOf(event))

	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[topic]...)
	b.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers a raw handler for a topic. Prefer On for a typed
// handler.
func (b *InMemoryBus) Subscribe(topic string, handler Handler) {
	if topic == "" || handler == nil {
		return
	}
	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], handler)
	b.mu.Unlock()
}

// On subscribes a typed handler for events of type T.
func On[T any](bus Bus, handler func(ctx context.Context, event T) error) {
	if bus == nil || handler == nil {
		return
	}
	bus.Subscribe(Topic[T](), func(ctx context.Context, event any) error {
		typed, ok := event.(T)
		if !ok {
			return ErrUnexpectedEvent
		}
		return handler(ctx, typed)
	})
}

// Topic is the name events of type T are published under.
func Topic[T any]() string {
	return topicOf(reflect.TypeOf((*T)(nil)).Elem())
}

func topicOf(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.String()
}
