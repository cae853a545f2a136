// Package admission bounds how many client sessions tagkv-server services
// concurrently, the way the original server's accept loop blocks on a
// condition variable before calling accept again once the client limit is
// reached.
package admission

import (
	"sync"

	"golang.org/x/exp/slices"
)

// Controller gates concurrent session admission at max. Acquire blocks while
// the active count is at max; Release frees a slot and wakes any blocked
// Acquire calls.
type Controller struct {
	mu     sync.Mutex
	cond   *sync.Cond
	max    int
	active []int64
	nextID int64
}

// New creates a Controller allowing up to max concurrently admitted
// sessions. max must be at least 1.
func New(max int) *Controller {
	if max < 1 {
		max = 1
	}
	c := &Controller{max: max}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Acquire blocks until a slot is available, then reserves one and returns
// its session ID. Callers must eventually call Release with the same ID.
func (c *Controller) Acquire() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.active) >= c.max {
		c.cond.Wait()
	}
	c.nextID++
	id := c.nextID
	c.active = append(c.active, id)
	slices.Sort(c.active)
	return id
}

// Release frees the slot held by id, waking any goroutine blocked in
// Acquire. Releasing an ID not currently held is a no-op.
func (c *Controller) Release(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, found := slices.BinarySearch(c.active, id); found {
		c.active = slices.Delete(c.active, i, i+1)
	}
	c.cond.Broadcast()
}

// Active returns the current number of admitted sessions.
func (c *Controller) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active)
}
