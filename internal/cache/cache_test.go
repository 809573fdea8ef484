// internal/cache/cache_test.go
package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/prospector/api/schemas"
	"github.com/xkilldash9x/prospector/internal/config"
)

func newTestStore(ttl time.Duration, max int) *Store {
	return New(config.CacheConfig{TTL: ttl, MaxEntries: max}, zap.NewNop())
}

func record(id string) *schemas.ProfileRecord {
	return &schemas.ProfileRecord{ProfileID: id, Name: "Someone"}
}

func TestSetGet(t *testing.T) {
	s := newTestStore(time.Hour, 10)
	s.Set("alice", record("alice"))

	got, ok := s.Get("alice")
	require.True(t, ok)
	assert.Equal(t, "alice", got.ProfileID)

	_, ok = s.Get("bob")
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	s := newTestStore(time.Hour, 10)
	base := time.Now()
	s.now = func() time.Time { return base }
	s.Set("alice", record("alice"))

	_, ok := s.Get("alice")
	require.True(t, ok)

	s.now = func() time.Time { return base.Add(time.Hour + time.Second) }
	_, ok = s.Get("alice")
	assert.False(t, ok)
	assert.Zero(t, s.Len(), "expired entry is removed on read")
}

func TestSetRefreshesTTL(t *testing.T) {
	s := newTestStore(time.Hour, 10)
	base := time.Now()
	s.now = func() time.Time { return base }
	s.Set("alice", record("alice"))

	s.now = func() time.Time { return base.Add(45 * time.Minute) }
	s.Set("alice", record("alice"))

	s.now = func() time.Time { return base.Add(90 * time.Minute) }
	_, ok := s.Get("alice")
	assert.True(t, ok, "rewrite extends the deadline")
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	s := newTestStore(time.Hour, 3)
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("p%d", i)
		s.Set(id, record(id))
	}
	// Touch p0 so p1 becomes the eviction candidate.
	_, ok := s.Get("p0")
	require.True(t, ok)

	s.Set("p3", record("p3"))

	_, ok = s.Get("p1")
	assert.False(t, ok)
	_, ok = s.Get("p0")
	assert.True(t, ok)
	assert.Equal(t, 3, s.Len())
}

func TestClear(t *testing.T) {
	s := newTestStore(time.Hour, 10)
	s.Set("a", record("a"))
	s.Set("b", record("b"))

	assert.Equal(t, 2, s.Clear())
	assert.Zero(t, s.Len())
	_, ok := s.Get("a")
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	s := newTestStore(time.Hour, 10)
	s.Set("a", record("a"))
	assert.True(t, s.Delete("a"))
	assert.False(t, s.Delete("missing"))

	_, ok := s.Get("a")
	assert.False(t, ok)
}
