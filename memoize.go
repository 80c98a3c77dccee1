// memoize.go: the memoization façade

package cacheme

import "context"

// memoNode adapts a plain function into a Node: Load inlines the wrapped
// function, and key/meta come from the builder and the shared Memoize.
type memoNode struct {
	key  string
	meta *NodeMeta
	fn   func(ctx context.Context) (interface{}, error)
}

func (n *memoNode) Key() string       { return n.key }
func (n *memoNode) Tags() []string    { return nil }
func (n *memoNode) Meta() *NodeMeta   { return n.meta }
func (n *memoNode) Load(ctx context.Context) (interface{}, error) { return n.fn(ctx) }

// Memoized is the callable a Memoize wrapper hands back to the caller.
type Memoized[A any, V any] struct {
	engine    *Engine
	meta      *NodeMeta
	keyOf     func(A) string
	loaderFor func(A) func(context.Context) (interface{}, error)
}

// Memoize turns f into a cached callable: the returned function builds a
// node from args via keyOf, inlines f as that node's loader, and delegates
// to Engine.Get. It adds no caching semantics beyond Get itself — this is a
// thin adapter, matching the design's description of the façade.
func Memoize[A any, V any](e *Engine, meta *NodeMeta, keyOf func(A) string, f func(context.Context, A) (V, error)) *Memoized[A, V] {
	return &Memoized[A, V]{
		engine: e,
		meta:   meta,
		keyOf:  keyOf,
		loaderFor: func(a A) func(context.Context) (interface{}, error) {
			return func(ctx context.Context) (interface{}, error) {
				return f(ctx, a)
			}
		},
	}
}

// Call looks up the value for args, loading and caching it through f on a
// miss.
func (m *Memoized[A, V]) Call(ctx context.Context, args A) (V, error) {
	var zero V
	n := &memoNode{key: m.keyOf(args), meta: m.meta, fn: m.loaderFor(args)}
	v, err := m.engine.Get(ctx, n, nil)
	if err != nil {
		return zero, err
	}
	value, ok := v.(V)
	if !ok {
		return zero, &InvariantError{Msg: "memoize: cached value type mismatch"}
	}
	return value, nil
}
