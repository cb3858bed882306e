package vault

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/dynwidget/internal/models"
)

// Handler receives vault notifications.
type Handler = func(models.Event)

// Bus delivers events to subscribers synchronously, in subscription order.
//
// An event emitted while a dispatch is already running (from a handler, or
// from another goroutine) is queued and delivered by the dispatching
// goroutine once the current event has reached every subscriber, so a
// handler is never re-entered. A panicking handler is logged and skipped.
type Bus struct {
	logger      *slog.Logger

	mu          sync.Mutex
	subs        map[int]Handler
	order       []int
	next        int
	queue       []models.Event
	dispatching bool
}

// NewBus returns an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{logger: logger, subs: make(map[int]Handler)}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = h
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Emit delivers ev to every subscriber.
func (b *Bus) Emit(ev models.Event) {
	b.mu.Lock()
	b.queue = append(b.queue, ev)
	if b.dispatching {
		b.mu.Unlock()
		return
	}
	b.dispatching = true

	for len(b.queue) > 0 {
		next := b.queue[0]
		b.queue = b.queue[1:]
		handlers := make([]Handler, 0, len(b.order))
		for _, id := range b.order {
			handlers = append(handlers, b.subs[id])
		}
		b.mu.Unlock()

		for _, h := range handlers {
			b.deliver(h, next)
		}

		b.mu.Lock()
	}
	b.dispatching = false
	b.mu.Unlock()
}

func (b *Bus) deliver(h Handler, ev models.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("bus: handler panicked",
				slog.String("event", string(ev.Kind)),
				slog.String("path", ev.Document.Path),
				slog.String("panic", fmt.Sprint(r)))
		}
	}()
	h(ev)
}

// Subscribers returns the number of registered handlers.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
