package cache

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inari/internal/core"
)

func category(t *testing.T, id uuid.UUID, name string, at time.Time) core.Category {
	t.Helper()
	c, err := core.NewCategory(core.CategoryParams{
		ID:         id,
		WalletID:   uuid.MustParse("8d8ac610-566d-4ef0-9c22-186b2a5ed793"),
		Name:       name,
		IconName:   core.DefaultIconName,
		Color:      core.DefaultCategoryColor,
		ModifiedAt: at,
	})
	require.NoError(t, err)
	return c
}

func TestLRUKeepsNewestVersion(t *testing.T) {
	c := NewLRUCache[core.Category](10, time.Minute)
	id := uuid.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, c.Set(category(t, id, "v2", base.Add(time.Hour))))
	assert.False(t, c.Set(category(t, id, "v1", base)))

	got, ok := c.Get(id)
	require.True(t, ok)
	assert.Equal(t, "v2", got.Name())

	assert.True(t, c.Set(category(t, id, "v3", base.Add(2*time.Hour))))
	got, _ = c.Get(id)
	assert.Equal(t, "v3", got.Name())
	assert.Equal(t, 1, c.Size())
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[core.Category](2, time.Minute)
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a, b, d := uuid.New(), uuid.New(), uuid.New()

	c.Set(category(t, a, "a", at))
	c.Set(category(t, b, "b", at))
	_, ok := c.Get(a)
	require.True(t, ok)
	c.Set(category(t, d, "d", at))

	_, ok = c.Get(b)
	assert.False(t, ok)
	_, ok = c.Get(a)
	assert.True(t, ok)
	_, ok = c.Get(d)
	assert.True(t, ok)

	c.Delete(a)
	assert.Equal(t, 1, c.Size())
}

func TestLRUExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[core.Category](10, time.Minute)
	c.now = func() time.Time { return now }

	keep, drop := uuid.New(), uuid.New()
	c.Set(category(t, drop, "old", now))
	now = now.Add(30 * time.Second)
	c.Set(category(t, keep, "fresh", now))
	now = now.Add(45 * time.Second)

	m := NewManager()
	m.Register(c)
	assert.Equal(t, 1, m.CleanNow())
	_, ok := c.Get(drop)
	assert.False(t, ok)
	_, ok = c.Get(keep)
	assert.True(t, ok)

	now = now.Add(time.Hour)
	_, ok = c.Get(keep)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestManagerStartStop(t *testing.T) {
	m := NewManager()
	m.Register(NewLRUCache[core.Category](1, time.Minute))
	m.StartCleanup(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	m.Stop()
}
