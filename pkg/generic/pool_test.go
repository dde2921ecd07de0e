package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ResetOnPut(t *testing.T) {
	p := NewPool(func() []int { return make([]int, 0, 4) }).WithReset(func(s []int) []int { return s[:0] })
	s := append(p.Get(), 1, 2, 3)
	require.Len(t, s, 3)
	p.Put(s)
	assert.Empty(t, p.Get())
}

func TestBufferPool_ResetsLength(t *testing.T) {
	p := NewBufferPool(16, 64)
	b := p.Get()
	require.NotNil(t, b)
	b.B = append(b.B, "hello"...)
	p.Put(b)
	assert.Empty(t, b.B)
	assert.GreaterOrEqual(t, cap(b.B), 5)
}

func TestBufferPool_DropsOversized(t *testing.T) {
	p := NewBufferPool(4, 8)
	b := p.Get()
	b.B = append(b.B, make([]byte, 32)...)
	p.Put(b)
	// the oversized buffer itself is left untouched
	assert.Len(t, b.B, 32)
}
