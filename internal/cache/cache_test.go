package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	err := m.Set(ctx, "k", []byte("v"), time.Minute)
	require.NoError(t, err)

	data, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), data)
}

func TestMemory_MissOnAbsentKey(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_ExpiryWithFakeClock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryWithClock(func() time.Time { return now })

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Hour))

	// Still fresh just before expiry.
	now = now.Add(59 * time.Minute)
	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	// Expired entry is evicted lazily on access.
	now = now.Add(2 * time.Minute)
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// A second read hits the now-empty map, not a resurrected entry.
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemory_ZeroTTLExpiresImmediately(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryWithClock(func() time.Time { return now })

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))

	now = now.Add(time.Nanosecond)
	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), time.Minute))

	require.NoError(t, m.Delete(ctx, "a"))
	_, ok, _ := m.Get(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, m.Clear(ctx))
	_, ok, _ = m.Get(ctx, "b")
	assert.False(t, ok)
}

func TestMemory_OverwriteResetsTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryWithClock(func() time.Time { return now })

	require.NoError(t, m.Set(ctx, "k", []byte("old"), time.Minute))
	now = now.Add(50 * time.Second)
	require.NoError(t, m.Set(ctx, "k", []byte("new"), time.Minute))

	now = now.Add(30 * time.Second)
	data, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("new"), data)
}

func TestGetJSON_RoundTrip(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	ctx := context.Background()
	m := NewMemory()

	in := &payload{Name: "acme", Count: 3}
	require.NoError(t, SetJSON(ctx, m, "k", in, time.Minute))

	out, ok, err := GetJSON[payload](ctx, m, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestGetJSON_CorruptEntryIsAMiss(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "k", []byte("{not json"), time.Minute))

	_, ok, err := GetJSON[payload](ctx, m, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// The corrupted entry should have been evicted.
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "user:profile:u1", ProfileKey("u1"))
	assert.Equal(t, "company:info:Acme", CompanyKey("Acme"))

	jobKey := JobKey("https://example.com/jobs/1")
	assert.True(t, strings.HasPrefix(jobKey, "job:posting:"))
	assert.Equal(t, jobKey, JobKey("https://example.com/jobs/1"), "same URL yields the same key")
	assert.NotEqual(t, jobKey, JobKey("https://example.com/jobs/2"))
}
