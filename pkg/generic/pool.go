package generic

import "sync"

// Pool is a typed wrapper over sync.Pool.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T) T
}

func NewPool[T any](generate func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
	}
}

// WithReset installs a function applied to every value returned by Put.
func (p *Pool[T]) WithReset(reset func(T) T) *Pool[T] {
	p.reset = reset
	return p
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		value = p.reset(value)
	}
	p.pool.Put(value)
}

// Buffer is a reusable byte slice. Pools hold pointers so Put does not allocate.
type Buffer struct {
	B []byte
}

// NewBufferPool returns a pool of buffers with the given initial capacity.
// Buffers that grew beyond maxCap are replaced on Put.
func NewBufferPool(initCap, maxCap int) *Pool[*Buffer] {
	return NewPool(func() *Buffer {
		return &Buffer{B: make([]byte, 0, initCap)}
	}).WithReset(func(b *Buffer) *Buffer {
		if maxCap > 0 && cap(b.B) > maxCap {
			return &Buffer{B: make([]byte, 0, initCap)}
		}
		b.B = b.B[:0]
		return b
	})
}
