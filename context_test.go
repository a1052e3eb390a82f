package fsmkit_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvid-labs/fsmkit"
)

func TestContextBasicOperations(t *testing.T) {
	t.Parallel()

	c := fsmkit.NewContext()
	assert.Nil(t, c.Get("missing"))

	c.Set("key", "value")
	assert.Equal(t, "value", c.Get("key"))

	v, ok := c.Lookup("key")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	c.Delete("key")
	_, ok = c.Lookup("key")
	assert.False(t, ok)
}

func TestContextSnapshotIsDefensiveCopy(t *testing.T) {
	t.Parallel()

	c := fsmkit.NewContext()
	c.Set("a", 1)

	snap := c.Snapshot()
	snap["a"] = 99
	snap["b"] = 2

	assert.Equal(t, 1, c.Get("a"))
	assert.Nil(t, c.Get("b"))
	assert.Equal(t, 1, c.Len())
}

func TestContextRestoreReplacesData(t *testing.T) {
	t.Parallel()

	c := fsmkit.NewContext()
	c.Set("old", true)

	c.Restore(map[string]any{"new": 1})
	assert.Nil(t, c.Get("old"))
	assert.Equal(t, 1, c.Get("new"))
	assert.Equal(t, 1, c.Len())
}

func TestContextConcurrentReads(t *testing.T) {
	t.Parallel()

	c := fsmkit.NewContext()
	c.Set("n", 42)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, 42, c.Get("n"))
				_ = c.Snapshot()
			}
		}()
	}
	wg.Wait()
}
