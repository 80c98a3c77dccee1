// api.go: convenience entry points over Engine

package cacheme

import "context"

// New builds an Engine with no storages registered and the default zap
// production logger. Most callers instead use Bootstrap with a config file
// once more than a single in-process tier is involved.
func New() *Engine {
	return NewEngine(nil)
}

// Stats returns the current metrics snapshot for a node type, or a zero
// snapshot if nothing has been recorded for it yet.
func (e *Engine) Stats(meta *NodeMeta) MetricsSnapshot {
	return e.Metrics(meta).Stats()
}

// GetDefault is Get with the loader override omitted, for call sites that
// always want n's own Load and would rather not thread a nil literal.
func (e *Engine) GetDefault(ctx context.Context, n Node) (interface{}, error) {
	return e.Get(ctx, n, nil)
}
