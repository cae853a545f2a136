package admission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAcquireUpToMaxDoesNotBlock(t *testing.T) {
	c := New(2)
	id1 := c.Acquire()
	id2 := c.Acquire()
	require.NotEqual(t, id1, id2)
	require.Equal(t, 2, c.Active())
}

func TestAcquireBlocksAtMaxUntilRelease(t *testing.T) {
	c := New(1)
	id1 := c.Acquire()

	acquired := make(chan int64, 1)
	go func() { acquired <- c.Acquire() }()

	select {
	case <-acquired:
		t.Fatal("Acquire returned before a slot was released")
	case <-time.After(50 * time.Millisecond):
	}

	c.Release(id1)

	select {
	case id2 := <-acquired:
		require.NotEqual(t, id1, id2)
	case <-time.After(time.Second):
		t.Fatal("Acquire did not unblock after Release")
	}
}

func TestReleaseUnknownIDIsNoop(t *testing.T) {
	c := New(2)
	c.Release(999)
	require.Equal(t, 0, c.Active())
}
