// ABOUTME: Message feed shared between the socket bridge and the render loop
// ABOUTME: Bounded FIFO history with a non-blocking drain for the redraw tick
package client

import (
	"sync"
	"sync/atomic"
)

// FeedCapacity is the number of messages retained before the oldest is evicted.
const FeedCapacity = 1000

// Feed is the only state touched from both the bridge goroutine and the
// render loop. Push and DrainAvailable are mutually exclusive.
type Feed struct {
	mu       sync.Mutex
	messages []ChatMessage
	limit    int
	pushed   atomic.Uint64
}

func NewFeed(limit int) *Feed {
	if limit < 1 {
		limit = FeedCapacity
	}
	return &Feed{
		messages: make([]ChatMessage, 0, limit),
		limit:    limit,
	}
}

func (f *Feed) Push(msg ChatMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.messages = append(f.messages, msg)
	f.pushed.Add(1)

	// Evict from the front. append reallocates once the window reaches the
	// end of the backing array, copying only the retained messages.
	if over := len(f.messages) - f.limit; over > 0 {
		clear(f.messages[:over])
		f.messages = f.messages[over:]
	}
}

// DrainAvailable returns a copy of everything currently retained without
// waiting. ok is false when the writer holds the lock; callers keep their
// previous snapshot for that tick.
func (f *Feed) DrainAvailable() (msgs []ChatMessage, ok bool) {
	if !f.mu.TryLock() {
		return nil, false
	}
	defer f.mu.Unlock()

	result := make([]ChatMessage, len(f.messages))
	copy(result, f.messages)
	return result, true
}

// Pushed counts every message ever pushed, evicted or not. Readers compare it
// between ticks to skip re-wrapping an unchanged feed.
func (f *Feed) Pushed() uint64 {
	return f.pushed.Load()
}
