// Package eventbus delivers domain events to in-process handlers on worker goroutines.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/event"
)

var ErrClosed = errors.New("event bus closed")

const (
	DefaultBuffer  = 256
	DefaultWorkers = 4
)

// wildcard subscribers receive every event type.
const wildcard = "*"

type envelope struct {
	ctx context.Context
	evt event.DomainEvent
}

// Dispatcher implements event.Publisher. Publish only enqueues; handlers run
// later on one of the worker goroutines, and their errors never reach the
// publisher.
type Dispatcher struct {
	log      logrus.FieldLogger
	queue    chan envelope
	workers  int
	mu       sync.RWMutex
	handlers map[string][]event.Handler
	closed   bool
	wg       sync.WaitGroup
	start    sync.Once
}

func NewDispatcher(log logrus.FieldLogger, buffer, workers int) *Dispatcher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{
		log:      log.WithField("component", "eventbus"),
		queue:    make(chan envelope, buffer),
		workers:  workers,
		handlers: make(map[string][]event.Handler),
	}
}

// Subscribe registers h for eventType. Use "*" to receive every event.
func (d *Dispatcher) Subscribe(eventType string, h event.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], h)
}

func (d *Dispatcher) SubscribeAll(h event.Handler) { d.Subscribe(wildcard, h) }

// Start launches the workers. Calling it more than once is a no-op.
func (d *Dispatcher) Start() {
	d.start.Do(func() {
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go d.run()
		}
	})
}

// Publish never blocks: a full queue drops the event and logs a warning.
// The handler context is detached from ctx cancellation so a finished
// request does not cancel its side effects.
func (d *Dispatcher) Publish(ctx context.Context, e event.DomainEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.queue <- envelope{ctx: context.WithoutCancel(ctx), evt: e}:
		return nil
	default:
		m := e.Meta()
		d.log.WithFields(logrus.Fields{"event_type": m.Type, "event_id": m.ID}).Warn("event queue full, dropping event")
		return fmt.Errorf("dispatch %s: queue full", m.Type)
	}
}

// Close stops accepting events, waits for queued events to be handled and
// for the workers to exit, or for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	// workers that were never started would leave the queue undrained
	d.Start()

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

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for env := range d.queue {
		for _, h := range d.handlersFor(env.evt.Meta().Type) {
			d.handle(env, h)
		}
	}
}

func (d *Dispatcher) handlersFor(eventType string) []event.Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	hs := make([]event.Handler, 0, len(d.handlers[eventType])+len(d.handlers[wildcard]))
	hs = append(hs, d.handlers[eventType]...)
	return append(hs, d.handlers[wildcard]...)
}

func (d *Dispatcher) handle(env envelope, h event.Handler) {
	m := env.evt.Meta()
	log := d.log.WithFields(logrus.Fields{
		"event_type":   m.Type,
		"event_id":     m.ID,
		"aggregate_id": m.AggregateID,
	})
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("event handler panic")
		}
	}()
	if err := h.Handle(env.ctx, env.evt); err != nil {
		log.WithError(err).Error("event handler failed")
	}
}

var _ event.Publisher = (*Dispatcher)(nil)
