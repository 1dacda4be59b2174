package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache() *Cache {
	return New(NewMemoryStore(), zap.NewNop())
}

func TestKeyFor(t *testing.T) {
	t.Run("stable across calls", func(t *testing.T) {
		a := KeyFor(PrefixSubjects, "list", "s1", 42)
		b := KeyFor(PrefixSubjects, "list", "s1", 42)
		assert.Equal(t, a, b)
	})

	t.Run("sensitive to argument order", func(t *testing.T) {
		a := KeyFor(PrefixSubjects, "list", "x", "y")
		b := KeyFor(PrefixSubjects, "list", "y", "x")
		assert.NotEqual(t, a, b)
	})

	t.Run("sensitive to operation name", func(t *testing.T) {
		a := KeyFor(PrefixSubjects, "list")
		b := KeyFor(PrefixSubjects, "by-subject")
		assert.NotEqual(t, a, b)
	})

	t.Run("prefixed for glob invalidation", func(t *testing.T) {
		key := KeyFor(PrefixQuizzes, "by-chapter", "c1")
		assert.Contains(t, key, PrefixQuizzes+":by-chapter:")
	})
}

func TestCacheRoundTrip(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	c.Set(ctx, "subjects:list:abc", payload{Name: "math", Count: 3}, time.Minute)

	var out payload
	require.True(t, c.Get(ctx, "subjects:list:abc", &out))
	assert.Equal(t, "math", out.Name)
	assert.Equal(t, 3, out.Count)

	assert.False(t, c.Get(ctx, "subjects:list:missing", &out))
}

func TestInvalidatePrefix(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	c.Set(ctx, "subjects:list:a", "one", time.Minute)
	c.Set(ctx, "subjects:by-id:b", "two", time.Minute)
	c.Set(ctx, "quizzes:by-chapter:c", "three", time.Minute)

	c.InvalidatePrefix(ctx, PrefixSubjects)

	var out string
	assert.False(t, c.Get(ctx, "subjects:list:a", &out))
	assert.False(t, c.Get(ctx, "subjects:by-id:b", &out))
	assert.True(t, c.Get(ctx, "quizzes:by-chapter:c", &out))
}

// failingStore errors on every operation.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("store down")
}

func (failingStore) Set(context.Context, string, string, time.Duration) error {
	return errors.New("store down")
}

func (failingStore) DeletePattern(context.Context, string) error {
	return errors.New("store down")
}

func TestCacheFailsOpen(t *testing.T) {
	c := New(failingStore{}, zap.NewNop())
	ctx := context.Background()

	var out string
	assert.False(t, c.Get(ctx, "k", &out))

	// None of these may panic or surface an error.
	c.Set(ctx, "k", "v", time.Minute)
	c.Invalidate(ctx, "k*")
	c.InvalidatePrefix(ctx, PrefixSubjects)
}

func TestCachedMemoizes(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	calls := 0
	fn := func() (int, error) {
		calls++
		return 7, nil
	}

	got, err := Cached(ctx, c, time.Minute, PrefixDashboard, "admin", fn)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, 1, calls)

	got, err = Cached(ctx, c, time.Minute, PrefixDashboard, "admin", fn)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, 1, calls, "second call must be served from the cache")

	c.InvalidatePrefix(ctx, PrefixDashboard)

	_, err = Cached(ctx, c, time.Minute, PrefixDashboard, "admin", fn)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "invalidation must force a recompute")
}

func TestCachedPassesThroughErrors(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	boom := errors.New("db down")
	_, err := Cached(ctx, c, time.Minute, PrefixSubjects, "list", func() ([]string, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	// The failed result must not have been cached.
	calls := 0
	got, err := Cached(ctx, c, time.Minute, PrefixSubjects, "list", func() ([]string, error) {
		calls++
		return []string{"ok"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, got)
	assert.Equal(t, 1, calls)
}

func TestCachedWorksWhenStoreDown(t *testing.T) {
	c := New(failingStore{}, zap.NewNop())
	ctx := context.Background()

	calls := 0
	for i := 0; i < 2; i++ {
		got, err := Cached(ctx, c, time.Minute, PrefixSubjects, "list", func() (string, error) {
			calls++
			return "fresh", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "fresh", got)
	}
	assert.Equal(t, 2, calls, "a dead store degrades to recompute, never to an error")
}

func TestMemoryStoreTTL(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v", 10*time.Millisecond))
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
