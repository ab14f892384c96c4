package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLMap_Expiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewTTLMap(time.Minute)
	m.now = func() time.Time { return now }

	m.Set("run-1", "value")
	v, ok := m.Get("run-1")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	now = now.Add(2 * time.Minute)
	_, ok = m.Get("run-1")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestTTLMap_SetRefreshesExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewTTLMap(time.Minute)
	m.now = func() time.Time { return now }

	m.Set("k", 1)
	now = now.Add(50 * time.Second)
	m.Set("k", 2)
	now = now.Add(50 * time.Second)

	v, ok := m.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestTTLMap_DeleteAndClear(t *testing.T) {
	m := NewTTLMap(time.Minute)
	m.Set("a", 1)
	m.Set("b", 2)

	m.Delete("a")
	_, ok := m.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())

	m.Clear()
	assert.Equal(t, 0, m.Len())
}
