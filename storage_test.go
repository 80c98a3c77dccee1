// storage_test.go: the local storage adapter

package cacheme

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageSetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStorage("local", 100, 0)
	require.NoError(t, s.Connect(ctx))
	t.Cleanup(func() { _ = s.Close(ctx) })

	require.NoError(t, s.Set(ctx, "k1", 42, 0, nil))
	m, err := s.Get(ctx, "k1", nil)
	require.NoError(t, err)
	require.True(t, m.Ok)
	require.Equal(t, 42, m.Value.Value)

	m, err = s.Get(ctx, "missing", nil)
	require.NoError(t, err)
	require.False(t, m.Ok)
}

func TestLocalStorageGetAllAndRemove(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStorage("local", 100, 0)
	require.NoError(t, s.Connect(ctx))
	t.Cleanup(func() { _ = s.Close(ctx) })

	require.NoError(t, s.SetAll(ctx, map[string]interface{}{"a": 1, "b": 2}, 0, nil))
	got, err := s.GetAll(ctx, []string{"a", "b", "c"}, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.True(t, got["a"].Ok)
	require.True(t, got["b"].Ok)
	_, hasC := got["c"]
	require.False(t, hasC)

	require.NoError(t, s.Remove(ctx, "a"))
	m, err := s.Get(ctx, "a", nil)
	require.NoError(t, err)
	require.False(t, m.Ok)
}

func TestLocalStorageTTLExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStorage("local", 100, 0)
	require.NoError(t, s.Connect(ctx))
	t.Cleanup(func() { _ = s.Close(ctx) })

	require.NoError(t, s.Set(ctx, "k", "v", time.Millisecond, nil))
	time.Sleep(5 * time.Millisecond)
	m, err := s.Get(ctx, "k", nil)
	require.NoError(t, err)
	require.False(t, m.Ok, "an expired entry must read back as absent")
}

func TestLocalStorageSweepReclaimsExpired(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStorage("local", 100, 5*time.Millisecond)
	require.NoError(t, s.Connect(ctx))
	t.Cleanup(func() { _ = s.Close(ctx) })

	require.NoError(t, s.Set(ctx, "k", "v", time.Millisecond, nil))
	require.Eventually(t, func() bool {
		return s.Len() == 0
	}, 200*time.Millisecond, 5*time.Millisecond, "sweeper must reclaim the expired entry")
}

func TestLocalStorageEvictionsIncrementOnCapacityOverflow(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStorage("local", 10, 0)
	require.NoError(t, s.Connect(ctx))
	t.Cleanup(func() { _ = s.Close(ctx) })

	for i := 0; i < 500; i++ {
		require.NoError(t, s.Set(ctx, keyFor(i), i, 0, nil))
	}
	require.Greater(t, s.Evictions(), int64(0))
	require.LessOrEqual(t, s.Len(), 10)
}

func keyFor(i int) string {
	return "k" + string(rune('a'+i%26)) + string(rune('0'+i%10))
}

func TestNewLocalLRUStorageDegenerateMode(t *testing.T) {
	ctx := context.Background()
	s := NewLocalLRUStorage("local", 5, 0)
	require.NoError(t, s.Connect(ctx))
	t.Cleanup(func() { _ = s.Close(ctx) })

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Set(ctx, keyFor(i), i, 0, nil))
	}
	require.LessOrEqual(t, s.Len(), 5)
}
