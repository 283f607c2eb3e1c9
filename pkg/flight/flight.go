// Package flight coalesces duplicate work: concurrent calls for the
// same key share one execution, and finished results are kept for a
// TTL. Image renders are deterministic given their seed and prompts,
// so serving a recent result for an identical key is safe.
package flight

import (
	"sync"
	"time"
)

type Cache[K comparable, V any] struct {
	work func(K) (V, error)
	ttl  time.Duration

	mu      sync.Mutex
	done    map[K]entry[V]
	pending map[K]*job[V]
}

type entry[V any] struct {
	val      V
	deadline time.Time // zero => never expires
}

type job[V any] struct {
	val  V
	err  error
	done chan struct{}
}

// NewCache builds a cache around work with a one-hour default TTL.
func NewCache[K comparable, V any](work func(K) (V, error)) *Cache[K, V] {
	return &Cache[K, V]{
		work:    work,
		ttl:     time.Hour,
		done:    make(map[K]entry[V]),
		pending: make(map[K]*job[V]),
	}
}

// Expiry sets how long finished results are held. d <= 0 keeps them
// forever.
func (c *Cache[K, V]) Expiry(d time.Duration) {
	c.mu.Lock()
	c.ttl = d
	c.mu.Unlock()
}

// Get returns the cached value for k, joins an in-flight computation if
// one exists, or runs the work itself.
func (c *Cache[K, V]) Get(k K) (V, error) {
	c.mu.Lock()
	if e, ok := c.done[k]; ok {
		if e.deadline.IsZero() || time.Now().Before(e.deadline) {
			c.mu.Unlock()
			return e.val, nil
		}
		delete(c.done, k)
	}
	if j, ok := c.pending[k]; ok {
		c.mu.Unlock()
		<-j.done
		return j.val, j.err
	}
	j := &job[V]{done: make(chan struct{})}
	c.pending[k] = j
	c.mu.Unlock()

	c.run(k, j)
	return j.val, j.err
}

// Force recomputes k even if a finished result exists. Concurrent
// callers still share a single execution.
func (c *Cache[K, V]) Force(k K) (V, error) {
	for {
		c.mu.Lock()
		if existing, ok := c.pending[k]; ok {
			c.mu.Unlock()
			<-existing.done
			continue
		}
		j := &job[V]{done: make(chan struct{})}
		c.pending[k] = j
		c.mu.Unlock()

		c.run(k, j)
		return j.val, j.err
	}
}

func (c *Cache[K, V]) run(k K, j *job[V]) {
	j.val, j.err = c.work(k)

	c.mu.Lock()
	if j.err == nil {
		e := entry[V]{val: j.val}
		if c.ttl > 0 {
			e.deadline = time.Now().Add(c.ttl)
		}
		c.done[k] = e
	}
	delete(c.pending, k)
	c.mu.Unlock()
	close(j.done)
}
