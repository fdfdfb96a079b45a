package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue(4)
	require.True(t, rq.IsEmpty())

	for i := 0; i < 3; i++ {
		require.NoError(t, rq.Enqueue(i))
	}
	assert.Equal(t, 3, rq.Len())

	front, err := rq.Peek()
	require.NoError(t, err)
	assert.Equal(t, 0, front)
	assert.Equal(t, 3, rq.Len(), "peek must not consume")

	for i := 0; i < 3; i++ {
		v, err := rq.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	assert.True(t, rq.IsEmpty())
}

func TestRingQueueFull(t *testing.T) {
	rq := NewRingQueue(2)
	require.NoError(t, rq.Enqueue("a"))
	require.NoError(t, rq.Enqueue("b"))
	require.True(t, rq.IsFull())
	assert.Error(t, rq.Enqueue("c"))

	// Draining one slot makes room again.
	_, err := rq.Dequeue()
	require.NoError(t, err)
	assert.NoError(t, rq.Enqueue("c"))
}

func TestRingQueueEmpty(t *testing.T) {
	rq := NewRingQueue(2)
	_, err := rq.Dequeue()
	assert.Error(t, err)
	_, err = rq.Peek()
	assert.Error(t, err)
}

func TestRingQueueWrapsAround(t *testing.T) {
	rq := NewRingQueue(3)
	// Cycle through the buffer several times to exercise index wrapping.
	for i := 0; i < 10; i++ {
		require.NoError(t, rq.Enqueue(i))
		v, err := rq.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
}
