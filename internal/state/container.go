package state

import (
	"log/slog"
	"sync"
)

// Listener observes every state change. Listeners run with the container
// lock held, in dispatch order, and must not call Dispatch.
type Listener func(prev, next State)

// Container holds the current State and applies actions to it. Dispatch is
// the only way to change the state.
type Container struct {
	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int
	log       *slog.Logger
}

func NewContainer(log *slog.Logger) *Container {
	if log == nil {
		log = slog.Default()
	}
	return &Container{
		state:     Initial(),
		listeners: map[int]Listener{},
		log:       log,
	}
}

// Dispatch applies a and notifies listeners. Unknown actions leave the
// state untouched and are logged.
func (c *Container) Dispatch(a Action) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state
	next, ok := Reduce(prev, a)
	if !ok {
		c.log.Warn("ignoring unknown action", "action", a.Name())
		return
	}
	c.state = next
	c.log.Debug("state updated", "action", a.Name())

	for _, id := range c.listenerOrder() {
		c.listeners[id](prev, next)
	}
}

// Snapshot returns the current state. The result must be treated as read-only.
func (c *Container) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Subscribe registers l and returns a function that removes it.
func (c *Container) Subscribe(l Listener) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Container) listenerOrder() []int {
	ids := make([]int, 0, len(c.listeners))
	for id := 0; id < c.nextID; id++ {
		if _, ok := c.listeners[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
