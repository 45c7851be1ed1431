package bus

import (
	"context"
	"sync"
	"time"
)

// Tail is a live consumer of evaluation events. It subscribes to topics on a
// bus and passes each event the filter admits to fn, one at a time.
type Tail struct {
	filter EventFilter
	fn     func(LoggedEvent)

	mu   sync.Mutex
	seen int
	done chan struct{}
	once sync.Once
}

// NewTail creates a tail. The filter's Since is ignored; a positive Limit
// closes Done once that many events were delivered.
func NewTail(filter EventFilter, fn func(LoggedEvent)) *Tail {
	filter.Since = time.Time{}
	return &Tail{filter: filter, fn: fn, done: make(chan struct{})}
}

// Follow subscribes the tail to every one of topics the filter admits.
func (t *Tail) Follow(ctx context.Context, b Bus, topics ...string) error {
	for _, topic := range topics {
		if t.filter.Topic != "" && t.filter.Topic != topic {
			continue
		}
		topic := topic
		err := b.Subscribe(ctx, topic, func(_ context.Context, e Event) error {
			t.handle(topic, e)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Tail) handle(topic string, e Event) {
	le := LoggedEvent{Event: e, Topic: topic, Timestamp: time.UnixMilli(e.Timestamp)}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.filter.Limit > 0 && t.seen >= t.filter.Limit {
		return
	}
	if !t.filter.matches(le) {
		return
	}
	t.seen++
	t.fn(le)
	if t.filter.Limit > 0 && t.seen == t.filter.Limit {
		t.once.Do(func() { close(t.done) })
	}
}

// Done is closed when the tail's limit is reached. It never closes without a limit.
func (t *Tail) Done() <-chan struct{} {
	return t.done
}

// Seen returns the number of events delivered so far.
func (t *Tail) Seen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seen
}
