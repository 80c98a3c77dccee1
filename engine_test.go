// engine_test.go: read-through engine scenarios from the design's concrete examples

package cacheme

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fooNode struct {
	id   string
	meta *NodeMeta
	load func(ctx context.Context) (interface{}, error)
}

func (n *fooNode) Key() string     { return "Foo:id=" + n.id }
func (n *fooNode) Tags() []string  { return nil }
func (n *fooNode) Meta() *NodeMeta { return n.meta }
func (n *fooNode) Load(ctx context.Context) (interface{}, error) {
	if n.load != nil {
		return n.load(ctx)
	}
	return strings.ToUpper(n.id), nil
}

func newTestEngine(t *testing.T, size int) (*Engine, *NodeMeta) {
	t.Helper()
	e := NewEngine(nil)
	local, err := OpenStorage("local", fmt.Sprintf("local://tlfu?size=%d", size))
	require.NoError(t, err)
	require.NoError(t, e.RegisterStorage(context.Background(), local))
	meta := &NodeMeta{Name: "Foo", Version: "v1", Caches: []Cache{{Storage: "local"}}}
	t.Cleanup(func() { _ = e.Close(context.Background()) })
	return e, meta
}

// S1: two gets, one loader call, hit/miss/load_success counts as specified.
func TestScenarioS1SingleGet(t *testing.T) {
	e, meta := newTestEngine(t, 50)
	ctx := context.Background()

	var calls int64
	n := &fooNode{id: "a", meta: meta, load: func(ctx context.Context) (interface{}, error) {
		atomic.AddInt64(&calls, 1)
		return "A", nil
	}}

	v, err := e.Get(ctx, n, nil)
	require.NoError(t, err)
	require.Equal(t, "A", v)

	v, err = e.Get(ctx, n, nil)
	require.NoError(t, err)
	require.Equal(t, "A", v)

	require.EqualValues(t, 1, atomic.LoadInt64(&calls))
	stats := e.Stats(meta)
	require.EqualValues(t, 1, stats.HitCount)
	require.EqualValues(t, 1, stats.MissCount)
	require.EqualValues(t, 1, stats.LoadSuccessCount)
}

// S2: 50 concurrent callers for the same key, one loader invocation, all
// observe the same value — the single-flight property.
func TestScenarioS2ConcurrentSingleFlight(t *testing.T) {
	e, meta := newTestEngine(t, 50)
	ctx := context.Background()

	var calls int64
	n := &fooNode{id: "x", meta: meta, load: func(ctx context.Context) (interface{}, error) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		return "X", nil
	}}

	var wg sync.WaitGroup
	results := make([]interface{}, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := e.Get(ctx, n, nil)
			require.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, 1, atomic.LoadInt64(&calls))
	for _, v := range results {
		require.Equal(t, "X", v)
	}
	stats := e.Stats(meta)
	require.EqualValues(t, 1, stats.MissCount)
	require.EqualValues(t, 49, stats.HitCount)
	require.EqualValues(t, 1, stats.LoadSuccessCount)
}

// S3: batch get_all preserves input order and the loader runs once per key.
func TestScenarioS3BatchOrdering(t *testing.T) {
	e, meta := newTestEngine(t, 50)
	ctx := context.Background()

	var calls int64
	newNode := func(id string) *fooNode {
		return &fooNode{id: id, meta: meta, load: func(ctx context.Context) (interface{}, error) {
			atomic.AddInt64(&calls, 1)
			return strings.ToUpper(id), nil
		}}
	}

	nodes := []Node{newNode("c"), newNode("a"), newNode("b")}
	values, err := e.GetAll(ctx, nodes, nil)
	require.NoError(t, err)
	require.Equal(t, []interface{}{"C", "A", "B"}, values)

	nodes2 := []Node{newNode("c"), newNode("a"), newNode("b")}
	values2, err := e.GetAll(ctx, nodes2, nil)
	require.NoError(t, err)
	require.Equal(t, []interface{}{"C", "A", "B"}, values2)

	require.EqualValues(t, 3, atomic.LoadInt64(&calls))
}

// S4: a two-tier node backfills both tiers, and removing just the nearer
// tier still hits the farther one without re-invoking the loader.
func TestScenarioS4TwoTierBackfill(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()

	nearLocal, err := OpenStorage("near", "local://tlfu?size=50")
	require.NoError(t, err)
	require.NoError(t, e.RegisterStorage(ctx, nearLocal))
	farLocal, err := OpenStorage("far", "local://tlfu?size=50")
	require.NoError(t, err)
	require.NoError(t, e.RegisterStorage(ctx, farLocal))
	t.Cleanup(func() { _ = e.Close(context.Background()) })

	meta := &NodeMeta{
		Name:    "Foo2",
		Version: "v1",
		Caches: []Cache{
			{Storage: "near", TTL: 10 * time.Second},
			{Storage: "far"},
		},
	}

	var calls int64
	n := &fooNode{id: "z", meta: meta, load: func(ctx context.Context) (interface{}, error) {
		atomic.AddInt64(&calls, 1)
		return "Z", nil
	}}

	v, err := e.Get(ctx, n, nil)
	require.NoError(t, err)
	require.Equal(t, "Z", v)
	require.EqualValues(t, 1, atomic.LoadInt64(&calls))

	require.NoError(t, e.Invalidate(ctx, &singleTierNode{n: n, caches: []Cache{{Storage: "near"}}}))

	v, err = e.Get(ctx, n, nil)
	require.NoError(t, err)
	require.Equal(t, "Z", v)
	require.EqualValues(t, 1, atomic.LoadInt64(&calls), "a hit on the farther tier must not re-invoke the loader")
}

// singleTierNode lets a test invalidate only one of a node's configured
// tiers without touching the shared NodeMeta other tests rely on.
type singleTierNode struct {
	n      *fooNode
	caches []Cache
}

func (s *singleTierNode) Key() string { return s.n.Key() }
func (s *singleTierNode) Tags() []string { return nil }
func (s *singleTierNode) Meta() *NodeMeta {
	return &NodeMeta{Name: s.n.meta.Name, Version: s.n.meta.Version, Caches: s.caches}
}
func (s *singleTierNode) Load(ctx context.Context) (interface{}, error) { return s.n.Load(ctx) }

// S6: invalidate then get loads a fresh value and accounts one more miss.
func TestScenarioS6Invalidate(t *testing.T) {
	e, meta := newTestEngine(t, 50)
	ctx := context.Background()

	version := "v1"
	n := &fooNode{id: "n", meta: meta, load: func(ctx context.Context) (interface{}, error) {
		return version, nil
	}}

	v, err := e.Get(ctx, n, nil)
	require.NoError(t, err)
	require.Equal(t, "v1", v)

	require.NoError(t, e.Invalidate(ctx, n))
	version = "v2"

	v, err = e.Get(ctx, n, nil)
	require.NoError(t, err)
	require.Equal(t, "v2", v)

	stats := e.Stats(meta)
	require.EqualValues(t, 2, stats.MissCount)
	require.EqualValues(t, 2, stats.LoadSuccessCount)
}

// Testable property 3: after invalidate, a direct storage Get on every
// tier returns absent.
func TestInvalidateThenDirectGetIsAbsent(t *testing.T) {
	e, meta := newTestEngine(t, 50)
	ctx := context.Background()
	n := &fooNode{id: "p", meta: meta}

	_, err := e.Get(ctx, n, nil)
	require.NoError(t, err)
	require.NoError(t, e.Invalidate(ctx, n))

	s, err := e.Storage("local")
	require.NoError(t, err)
	m, err := s.Get(ctx, FullKeyOf(n), nil)
	require.NoError(t, err)
	require.False(t, m.Ok)
}
