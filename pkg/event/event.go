// Package event is a small in-process dispatcher. Services fire domain
// events; the server wires listeners (websocket broadcast, log sinks) at
// boot. Listeners must not assume ordering between each other.
package event

import (
	"sync"

	"github.com/shashiranjanraj/kalakriti/pkg/workerpool"
)

// Domain event names.
const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	DownloadIssued     = "download.issued"
	ProductDeleted     = "product.deleted"
)

// Handler receives the payload fired with an event.
type Handler func(payload any)

// Bus routes events to registered handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	pool     *workerpool.Pool
}

// NewBus returns an empty bus. Async dispatch runs on a bounded pool so
// an event storm cannot spawn goroutines without limit.
func NewBus() *Bus {
	return &Bus{
		handlers: map[string][]Handler{},
		pool:     workerpool.New(16),
	}
}

var defaultBus = NewBus()

// Listen registers a handler on the bus.
func (b *Bus) Listen(name string, h Handler) {
	b.mu.Lock()
	b.handlers[name] = append(b.handlers[name], h)
	b.mu.Unlock()
}

func (b *Bus) snapshot(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	hs := make([]Handler, len(b.handlers[name]))
	copy(hs, b.handlers[name])
	return hs
}

// Fire dispatches synchronously, in registration order.
func (b *Bus) Fire(name string, payload any) {
	for _, h := range b.snapshot(name) {
		h(payload)
	}
}

// FireAsync dispatches handlers off the caller's goroutine and returns
// immediately. Use for listeners that must never block a request. When
// the pool saturates the overflow handler still runs, just unpooled.
func (b *Bus) FireAsync(name string, payload any) {
	for _, h := range b.snapshot(name) {
		h := h
		if err := b.pool.Submit(func() { h(payload) }); err != nil {
			go h(payload)
		}
	}
}

// Flush drops every handler. Tests use this between cases.
func (b *Bus) Flush() {
	b.mu.Lock()
	b.handlers = map[string][]Handler{}
	b.mu.Unlock()
}

// Package-level helpers operate on the shared default bus.

func Listen(name string, h Handler)      { defaultBus.Listen(name, h) }
func Fire(name string, payload any)      { defaultBus.Fire(name, payload) }
func FireAsync(name string, payload any) { defaultBus.FireAsync(name, payload) }
func Flush()                             { defaultBus.Flush() }
