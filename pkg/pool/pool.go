// Package pool wraps sync.Pool with type safety.
package pool

import "sync"

type Pool[T any] struct {
	p sync.Pool
}

func New[T any](create func() T) *Pool[T] {
	return &Pool[T]{
		p: sync.Pool{
			New: func() any { return create() },
		},
	}
}

func (p *Pool[T]) Get() T {
	return p.p.Get().(T)
}

func (p *Pool[T]) Put(v T) {
	p.p.Put(v)
}
