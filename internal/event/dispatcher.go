package event

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/soundmesh/wam/internal/logging"
)

// DefaultQueueSize is the dispatcher queue capacity used when none is
// given. Sized for bursts of notifications around grouping operations.
const DefaultQueueSize = 64

// Handler receives events. Handlers run on the dispatcher's delivery
// goroutine; a slow handler delays everything behind it.
type Handler func(Event)

type subscription struct {
	id       int
	priority int
	seq      int
	fn       Handler
}

type waiter struct {
	match func(Event) bool
	ch    chan Event
}

// Dispatcher delivers events to subscribers in priority order from a
// single goroutine. See the package documentation for the delivery
// contract.
type Dispatcher struct {
	queue chan Event
	done  chan struct{}

	mu      sync.Mutex
	subs    []subscription
	waiters map[int]waiter
	nextID  int
	apply   func(Event)
	closed  bool
}

// NewDispatcher starts a dispatcher with the given queue capacity; zero or
// negative means DefaultQueueSize. Callers must Close it when done.
func NewDispatcher(queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	d := &Dispatcher{
		queue:   make(chan Event, queueSize),
		done:    make(chan struct{}),
		waiters: make(map[int]waiter),
	}
	go d.run()
	return d
}

// SetApply installs the hook that runs before any subscriber sees an
// event. The state store installs itself here. Must be called before the
// first Publish.
func (d *Dispatcher) SetApply(fn func(Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.apply = fn
}

// Publish enqueues an event for delivery. It blocks while the queue is
// full; events are never dropped. Publishing after Close is a no-op.
func (d *Dispatcher) Publish(e Event) {
	select {
	case d.queue <- e:
	case <-d.done:
	}
}

// Subscribe registers a handler. Lower priority values run earlier; equal
// priorities run in subscription order. The returned id is the handle for
// Unsubscribe.
func (d *Dispatcher) Subscribe(priority int, fn Handler) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID
	d.subs = append(d.subs, subscription{id: id, priority: priority, seq: id, fn: fn})
	sort.SliceStable(d.subs, func(i, j int) bool {
		if d.subs[i].priority != d.subs[j].priority {
			return d.subs[i].priority < d.subs[j].priority
		}
		return d.subs[i].seq < d.subs[j].seq
	})
	return id
}

// Unsubscribe removes a handler. Safe to call with an unknown id and from
// inside a handler; removal takes effect from the next event.
func (d *Dispatcher) Unsubscribe(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, s := range d.subs {
		if s.id == id {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// Watch registers a one-shot waiter for the first event matching the
// predicate. Registration is synchronous: the waiter is armed when Watch
// returns, so a caller can register before triggering the event it waits
// for. The channel receives exactly one event; release the waiter with
// Unwatch if it is no longer needed.
func (d *Dispatcher) Watch(match func(Event) bool) (int, <-chan Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID
	ch := make(chan Event, 1)
	d.waiters[id] = waiter{match: match, ch: ch}
	return id, ch
}

// Unwatch releases a waiter registered with Watch. Safe to call after the
// waiter already fired.
func (d *Dispatcher) Unwatch(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.waiters, id)
}

// Await blocks until an event matching the predicate has been applied and
// delivered, or ctx ends. Matching happens after the apply hook, so a
// successful Await guarantees the state store already reflects the event.
func (d *Dispatcher) Await(ctx context.Context, match func(Event) bool) (Event, error) {
	id, ch := d.Watch(match)
	defer d.Unwatch(id)

	select {
	case e := <-ch:
		return e, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-d.done:
		return nil, context.Canceled
	}
}

// Close stops the delivery goroutine. Events still queued are dropped;
// pending Await calls fail. Close is idempotent.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.closed = true
		close(d.done)
	}
}

func (d *Dispatcher) run() {
	for {
		select {
		case <-d.done:
			return
		case e := <-d.queue:
			d.deliver(e)
		}
	}
}

func (d *Dispatcher) deliver(e Event) {
	d.mu.Lock()
	apply := d.apply
	subs := make([]subscription, len(d.subs))
	copy(subs, d.subs)
	d.mu.Unlock()

	if apply != nil {
		apply(e)
	}

	for _, s := range subs {
		d.invoke(s, e)
	}

	// Waiters are satisfied last so an Await return implies every
	// subscriber has already run for the event.
	d.mu.Lock()
	for id, w := range d.waiters {
		if w.match(e) {
			select {
			case w.ch <- e:
			default:
			}
			delete(d.waiters, id)
		}
	}
	d.mu.Unlock()
}

func (d *Dispatcher) invoke(s subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			logging.Warn("Event subscriber panicked",
				zap.Int("subscriber", s.id),
				zap.String("event", e.String()),
				zap.Any("panic", r),
			)
		}
	}()
	s.fn(e)
}
