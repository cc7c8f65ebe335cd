package cache

import (
	"context"
	"sync"
	"time"
)

const localSweepInterval = time.Minute

type entry struct {
	value   string
	expires time.Time
}

// Local is an in-process Cache.
type Local struct {
	mu      sync.RWMutex
	entries map[string]entry
	stop    chan struct{}
	once    sync.Once
}

// NewLocal creates a Local cache and starts its expiry sweep.
func NewLocal() *Local {
	c := &Local{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
	}

	go c.sweep()

	return c
}

func (c *Local) sweep() {
	ticker := time.NewTicker(localSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for key, e := range c.entries {
				if e.expires.Before(now) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

func (c *Local) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.expires.Before(time.Now()) {
		return "", false, nil
	}
	return e.value, true, nil
}

func (c *Local) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, expires: time.Now().Add(ttl)}
	return nil
}

func (c *Local) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Close stops the expiry sweep.
func (c *Local) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}
