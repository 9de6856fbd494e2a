package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRU_GetSetEvict(t *testing.T) {
	c := NewLRU[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	_, _ = c.Get("a") // a becomes most recent
	c.Set("c", 3)     // evicts b

	_, okB := c.Get("b")
	va, okA := c.Get("a")
	assert.False(t, okB)
	assert.True(t, okA)
	assert.Equal(t, 1, va)
	assert.Equal(t, 2, c.Size())
}

func TestLRU_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	c.Set("other", "v")
	now = now.Add(2 * time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 0, c.Size())
}

func TestLRU_Update(t *testing.T) {
	c := NewLRU[int](4, time.Minute)

	got := c.Update("n", func(cur int, found bool) int {
		assert.False(t, found)
		return cur + 1
	})
	assert.Equal(t, 1, got)

	got = c.Update("n", func(cur int, found bool) int {
		assert.True(t, found)
		return cur + 1
	})
	assert.Equal(t, 2, got)

	c.Delete("n")
	_, ok := c.Get("n")
	assert.False(t, ok)
}

func TestJanitor_Sweep(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU[int](4, time.Second)
	c.now = func() time.Time { return now }
	c.Set("x", 1)
	now = now.Add(time.Minute)

	j := NewJanitor(c)
	assert.Equal(t, 1, j.Sweep())

	j.Start(time.Hour)
	j.Stop()
}
