// registry.go: the Engine — the explicit process-wide bundle replacing
// module-level singletons (storage registry, metrics, single-flight, the
// dynamic-node table).

package cacheme

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Engine bundles everything that is process-global in the source design:
// the storage registry, per-node-type metrics, the single-flight registry
// and the dynamic-node table. Registration is expected to happen at
// startup, single-threaded; afterward only metrics, the single-flight
// group and GetAll's batch-handle table are mutated on hot paths, each of
// which is guarded for concurrent use.
type Engine struct {
	log *zap.Logger

	mu       sync.RWMutex
	storages map[string]Storage
	metrics  map[string]*Metrics
	dynamic  map[string]*NodeMeta

	sf singleflight.Group

	handleMu sync.Mutex
	handles  map[string]*batchHandle
}

// NewEngine builds an empty Engine. Pass nil to use zap's production
// logger; the caller owns its lifecycle.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log, _ = zap.NewProduction()
	}
	return &Engine{
		log:      log,
		storages: make(map[string]Storage),
		metrics:  make(map[string]*Metrics),
		dynamic:  make(map[string]*NodeMeta),
		handles:  make(map[string]*batchHandle),
	}
}

// RegisterStorage connects and registers s under its own Name. Re-registering
// the same name replaces the prior entry without closing it; callers that
// care about the old one's lifecycle must Close it themselves first.
func (e *Engine) RegisterStorage(ctx context.Context, s Storage) error {
	if err := s.Connect(ctx); err != nil {
		return &StorageError{Op: "connect", Storage: s.Name(), Err: err}
	}
	e.mu.Lock()
	e.storages[s.Name()] = s
	e.mu.Unlock()
	e.log.Info("storage registered", zap.String("name", s.Name()), zap.Bool("local", s.IsLocal()))
	return nil
}

// Storage resolves a registered storage by name.
func (e *Engine) Storage(name string) (Storage, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.storages[name]
	if !ok {
		return nil, &ConfigError{Msg: fmt.Sprintf("unknown storage %q", name)}
	}
	return s, nil
}

// Metrics returns the shared counters for a node type, creating them on
// first use.
func (e *Engine) Metrics(meta *NodeMeta) *Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.metrics[meta.Name]
	if !ok {
		m = &Metrics{}
		e.metrics[meta.Name] = m
	}
	return m
}

// RegisterDynamic stores a dynamically built node type's metadata under
// its Name, returning the previously registered value if the name was
// already taken (build_node's "identity by name" rule).
func (e *Engine) RegisterDynamic(meta *NodeMeta) *NodeMeta {
	e.mu.Lock()
	defer e.mu.Unlock()
	if existing, ok := e.dynamic[meta.Name]; ok {
		return existing
	}
	e.dynamic[meta.Name] = meta
	return meta
}

// Close closes every registered storage, collecting the first error.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.RLock()
	storages := make([]Storage, 0, len(e.storages))
	for _, s := range e.storages {
		storages = append(storages, s)
	}
	e.mu.RUnlock()

	var firstErr error
	for _, s := range storages {
		if err := s.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
