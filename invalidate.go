// invalidate.go: invalidation and refresh

package cacheme

import "context"

// Invalidate removes n from every tier in its node type's cache list. It
// has no effect on an in-flight load for n; the next Get misses and loads
// fresh.
func (e *Engine) Invalidate(ctx context.Context, n Node) error {
	meta := n.Meta()
	fullKey := FullKeyOf(n)
	for _, c := range meta.Caches {
		s, err := e.Storage(c.Storage)
		if err != nil {
			return err
		}
		if err := s.Remove(ctx, fullKey); err != nil {
			return &StorageError{Storage: c.Storage, Op: "remove", Err: err}
		}
	}
	return nil
}

// Refresh is Invalidate followed by Get, returning the freshly loaded value.
func (e *Engine) Refresh(ctx context.Context, n Node, loader func(context.Context) (interface{}, error)) (interface{}, error) {
	if err := e.Invalidate(ctx, n); err != nil {
		return nil, err
	}
	return e.Get(ctx, n, loader)
}
