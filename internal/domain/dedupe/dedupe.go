// Package dedupe tracks notification keys that were already delivered.
package dedupe

import (
	"container/list"
	"context"
	"sync"

	"github.com/okian/raffle/internal/domain/model"
)

const defaultMaxSize = 10000

// Deduper records seen keys to ensure at-most-once delivery.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded and records it
	// if not. The check and the write are atomic.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so a failed delivery can be retried.
	Unrecord(ctx context.Context, key string)

	// Size returns the number of recorded keys.
	Size() int
}

// Key identifies a notification for deduplication.
func Key(n model.Notification) string {
	return string(n.Kind) + ":" + n.SubjectID
}

// inMemoryDeduper keeps at most maxSize keys and evicts the oldest first.
// A maxSize of zero or less keeps every key.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		seen:    make(map[string]*list.Element),
		order:   list.New(),
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		oldest := d.order.Front()
		d.order.Remove(oldest)
		delete(d.seen, oldest.Value.(string))
	}
	d.seen[key] = d.order.PushBack(key)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
	}
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.order.Len()
}
