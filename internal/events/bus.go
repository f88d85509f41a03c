// Package events fans sensor state changes out to API subscribers.
package events

import (
	"sync"

	"github.com/micro-nova/imx585-go/internal/models"
)

const subBufferSize = 8

// Event is one published state change. Seq increases by one per Publish.
type Event struct {
	Seq   uint64
	State models.State
}

// Bus delivers events to every subscriber without blocking the publisher.
// A subscriber whose buffer is full misses the event.
type Bus struct {
	mu      sync.Mutex
	subs    map[string]chan Event
	seq     uint64
	dropped uint64
	onDrop  func()
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]chan Event)}
}

// OnDrop registers a callback run, under the bus lock, for every event a
// slow subscriber misses.
func (b *Bus) OnDrop(f func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onDrop = f
}

// Subscribe registers id and returns its event channel. Subscribing an id
// twice replaces the earlier channel, which is closed.
func (b *Bus) Subscribe(id string) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if old, ok := b.subs[id]; ok {
		close(old)
	}
	ch := make(chan Event, subBufferSize)
	b.subs[id] = ch
	return ch
}

// Unsubscribe removes id and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish sends state to all subscribers and returns its sequence number.
func (b *Bus) Publish(state models.State) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	ev := Event{Seq: b.seq, State: state}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.dropped++
			if b.onDrop != nil {
				b.onDrop()
			}
		}
	}
	return b.seq
}

func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped.
func (b *Bus) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
