package fsmkit

import "sync"

// Context is the extended state of a running machine: string-keyed data that
// only actions mutate. Each Interpreter owns exactly one Context; the engine
// guarantees a single action pipeline touches it per processed event.
//
// Reads are safe from any goroutine (subscribers, loggers); writes belong to
// actions invoked by the interpreter.
type Context struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{data: make(map[string]any)}
}

// newContextFrom creates a context seeded with a copy of initial.
func newContextFrom(initial map[string]any) *Context {
	c := NewContext()
	for k, v := range initial {
		c.data[k] = v
	}
	return c
}

// Get retrieves a value by key. Returns nil if the key does not exist.
func (c *Context) Get(key string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data[key]
}

// Lookup retrieves a value and reports whether the key exists.
func (c *Context) Lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

// Set stores a value by key.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

// Delete removes a key from the context.
func (c *Context) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Snapshot returns a defensive copy of all data. Values are copied by
// reference; treat them as read-only.
func (c *Context) Snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := make(map[string]any, len(c.data))
	for k, v := range c.data {
		snap[k] = v
	}
	return snap
}

// Restore atomically replaces all data in the context.
func (c *Context) Restore(data map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]any, len(data))
	for k, v := range data {
		c.data[k] = v
	}
}

// Len returns the number of stored keys.
func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
