package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/character-gallery/internal/domain"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType domain.ActivityAction, handler EventHandler)
	SubscribeAll(handler EventHandler)
}

// inMemoryDispatcher is a simple synchronous dispatcher.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[domain.ActivityAction][]EventHandler
	wildcard  []EventHandler
	logger    *zap.Logger
}

// NewInMemoryDispatcher creates a dispatcher that runs handlers on the
// publishing goroutine.
func NewInMemoryDispatcher(logger *zap.Logger) Dispatcher {
	return newInMemoryDispatcher(logger)
}

func newInMemoryDispatcher(logger *zap.Logger) *inMemoryDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inMemoryDispatcher{
		listeners: make(map[domain.ActivityAction][]EventHandler),
		logger:    logger,
	}
}

// Publish synchronously invokes handlers for the given event. Handler
// failures are logged and never reach the publisher.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	stamp(&event)
	d.deliver(ctx, event)
	return nil
}

func (d *inMemoryDispatcher) deliver(ctx context.Context, event Event) {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.wildcard...)
	handlers = append(handlers, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			d.logger.Warn("event handler failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType domain.ActivityAction, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// SubscribeAll registers a handler for every event type.
func (d *inMemoryDispatcher) SubscribeAll(handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wildcard = append(d.wildcard, handler)
}

func stamp(event *Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
}

type queuedEvent struct {
	ctx   context.Context
	event Event
}

// AsyncDispatcher queues events on a bounded channel drained by worker
// goroutines. A full queue drops the event.
type AsyncDispatcher struct {
	handlers       *inMemoryDispatcher
	queue          chan queuedEvent
	workers        int
	handlerTimeout time.Duration
	logger         *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// AsyncOptions sizes an AsyncDispatcher.
type AsyncOptions struct {
	QueueSize      int
	Workers        int
	HandlerTimeout time.Duration
}

// NewAsyncDispatcher builds a dispatcher; call Start to begin draining.
func NewAsyncDispatcher(opts AsyncOptions, logger *zap.Logger) *AsyncDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.HandlerTimeout <= 0 {
		opts.HandlerTimeout = 10 * time.Second
	}
	return &AsyncDispatcher{
		handlers:       newInMemoryDispatcher(logger),
		queue:          make(chan queuedEvent, opts.QueueSize),
		workers:        opts.Workers,
		handlerTimeout: opts.HandlerTimeout,
		logger:         logger,
	}
}

// Start launches the workers.
func (d *AsyncDispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
}

func (d *AsyncDispatcher) run() {
	defer d.wg.Done()
	for item := range d.queue {
		ctx, cancel := context.WithTimeout(item.ctx, d.handlerTimeout)
		d.handlers.deliver(ctx, item.event)
		cancel()
	}
}

// Publish enqueues the event without blocking. The request context's
// values are kept but its cancellation is not.
func (d *AsyncDispatcher) Publish(ctx context.Context, event Event) error {
	stamp(&event)

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("event dropped after shutdown", zap.String("event_type", string(event.Type)))
		return nil
	}
	select {
	case d.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), event: event}:
	default:
		d.logger.Warn("event queue full; dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *AsyncDispatcher) Subscribe(eventType domain.ActivityAction, handler EventHandler) {
	d.handlers.Subscribe(eventType, handler)
}

// SubscribeAll registers a handler for every event type.
func (d *AsyncDispatcher) SubscribeAll(handler EventHandler) {
	d.handlers.SubscribeAll(handler)
}

// Close stops accepting events and waits for queued ones to be handled or
// for ctx to expire.
func (d *AsyncDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
