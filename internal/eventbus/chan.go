package eventbus

import (
	"sync"

	logx "toastrelay/pkg/logx"
)

const defaultChanBuffer = 8

// SubscribeChan registers a handler that forwards payloads into a buffered
// channel without blocking the publisher. When the buffer is full the payload
// is dropped.
//
// The returned cancel func unsubscribes and closes the channel. It is safe to
// call more than once.
func (b *Bus) SubscribeChan(topic string, buffer int) (<-chan any, func()) {
	if buffer <= 0 {
		buffer = defaultChanBuffer
	}
	ch := make(chan any, buffer)

	// closed is guarded by mu so a send never races the close.
	var (
		mu     sync.Mutex
		closed bool
	)
	sub := b.Subscribe(topic, func(payload any) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- payload:
		default:
			b.log.Debug("subscriber channel full; dropping",
				logx.String("topic", topic),
				logx.Int("queue_cap", cap(ch)),
			)
		}
	})

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.Unsubscribe(sub)
			mu.Lock()
			closed = true
			close(ch)
			mu.Unlock()
		})
	}
	return ch, cancel
}
