// Package eventbus is the in-process publish/subscribe channel that
// decouples toast producers from the component that renders them.
//
// Contract:
//   - Publish is synchronous: every handler registered for the topic runs,
//     in registration order, before Publish returns.
//   - No buffering and no replay. A handler subscribed after a Publish never
//     sees that payload.
//   - Each handler runs in its own failure boundary. A panic is recovered,
//     logged, and delivery continues with the next handler.
//
// Consumers that must not block producers use SubscribeChan and drain the
// returned channel on their own goroutine.
package eventbus

import (
	"runtime/debug"
	"sync"
	"sync/atomic"

	logx "toastrelay/pkg/logx"
)

// Handler receives the payload passed to Publish, unchanged.
type Handler func(payload any)

// Subscription identifies one registration. The zero value is valid;
// unsubscribing it does nothing.
type Subscription struct {
	topic string
	id    uint64
}

func (s Subscription) Topic() string { return s.topic }

type subscriber struct {
	id uint64
	h  Handler
}

type Option func(*Bus)

func WithLogger(log logx.Logger) Option {
	return func(b *Bus) { b.log = log }
}

// WithPanicHandler installs a hook called after a handler panic was recovered.
func WithPanicHandler(fn func(topic string, recovered any)) Option {
	return func(b *Bus) { b.onPanic = fn }
}

// Bus is safe for concurrent use. The topic map is the only shared state.
type Bus struct {
	mu     sync.RWMutex
	topics map[string][]subscriber
	seq    atomic.Uint64

	log     logx.Logger
	onPanic func(topic string, recovered any)
}

func New(opts ...Option) *Bus {
	b := &Bus{topics: map[string][]subscriber{}}
	for _, o := range opts {
		o(b)
	}
	if b.log.IsZero() {
		b.log = logx.Nop()
	}
	return b
}

// Subscribe registers h for every future Publish on topic.
// Subscribing the same function twice yields two invocations per publish.
func (b *Bus) Subscribe(topic string, h Handler) Subscription {
	if h == nil {
		return Subscription{}
	}
	id := b.seq.Add(1)

	b.mu.Lock()
	b.topics[topic] = append(b.topics[topic], subscriber{id: id, h: h})
	b.mu.Unlock()

	return Subscription{topic: topic, id: id}
}

// Unsubscribe removes the registration. Unknown or already removed
// subscriptions are ignored.
func (b *Bus) Unsubscribe(sub Subscription) {
	if sub.id == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[sub.topic]
	for i, s := range subs {
		if s.id != sub.id {
			continue
		}
		// Copy instead of shifting in place: Publish may be iterating an
		// earlier snapshot that shares the backing array.
		next := make([]subscriber, 0, len(subs)-1)
		next = append(next, subs[:i]...)
		next = append(next, subs[i+1:]...)
		if len(next) == 0 {
			delete(b.topics, sub.topic)
		} else {
			b.topics[sub.topic] = next
		}
		return
	}
}

// Publish invokes every handler currently registered for topic.
// With no subscribers it is a no-op.
func (b *Bus) Publish(topic string, payload any) {
	// Snapshot so handlers may (un)subscribe or publish without deadlocking.
	b.mu.RLock()
	subs := b.topics[topic]
	b.mu.RUnlock()

	for _, s := range subs {
		b.dispatch(topic, s, payload)
	}
}

func (b *Bus) dispatch(topic string, s subscriber, payload any) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		b.log.Error("subscriber panicked",
			logx.String("topic", topic),
			logx.Int64("sub", int64(s.id)),
			logx.Any("panic", r),
			logx.Stack(string(debug.Stack())),
		)
		if b.onPanic != nil {
			b.onPanic(topic, r)
		}
	}()
	s.h(payload)
}

// Subscribers returns the number of registrations for topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	n := len(b.topics[topic])
	b.mu.RUnlock()
	return n
}
