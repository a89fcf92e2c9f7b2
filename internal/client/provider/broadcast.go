package provider

import (
	"context"
	"sync"
)

const subscriberBuffer = 8

type subscriber struct {
	ch   chan AuthEvent
	done chan struct{}
}

// Broadcaster fans AuthEvents out to subscribers. The zero value is ready
// to use.
type Broadcaster struct {
	mu   sync.RWMutex
	next int
	subs map[int]*subscriber
}

// Subscribe registers a subscriber. When initial is non-nil it runs in its
// own goroutine and its result is delivered as the first event resolved for
// this subscriber; events published meanwhile may arrive before it.
func (b *Broadcaster) Subscribe(ctx context.Context, initial func(context.Context) AuthEvent) (<-chan AuthEvent, func()) {
	s := &subscriber{
		ch:   make(chan AuthEvent, subscriberBuffer),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	if b.subs == nil {
		b.subs = make(map[int]*subscriber)
	}
	id := b.next
	b.next++
	b.subs[id] = s
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			close(s.done)
			b.mu.Lock()
			delete(b.subs, id)
			close(s.ch)
			b.mu.Unlock()
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-s.done:
		}
	}()

	if initial != nil {
		go func() {
			ev := initial(ctx)
			b.deliver(id, ev)
		}()
	}

	return s.ch, unsubscribe
}

// Publish delivers ev to every current subscriber. It blocks while a
// subscriber's buffer is full, until that subscriber reads or unsubscribes.
func (b *Broadcaster) Publish(ev AuthEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		select {
		case s.ch <- ev:
		case <-s.done:
		}
	}
}

func (b *Broadcaster) deliver(id int, ev AuthEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.subs[id]
	if !ok {
		return
	}
	select {
	case s.ch <- ev:
	case <-s.done:
	}
}
