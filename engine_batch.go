// engine_batch.go: the read-through engine, batch path

package cacheme

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// batchHandle is the explicit single-flight completion handle GetAll uses
// to coalesce concurrent loads of the same key across batches: unlike the
// single-node path, a batch load must gather every genuinely new key before
// invoking the node type's batch loader once, so a plain singleflight.Group
// (which starts executing as soon as the first caller arrives) does not
// fit. Many GetAll calls may subscribe to the same handle; whichever call
// is first to observe the key as not-yet-loading registers it and owns
// delivering the result to every other subscriber.
type batchHandle struct {
	done  chan struct{}
	value interface{}
	err   error
}

// GetAll performs a read-through lookup for every node, all of which must
// share a concrete Go type (mixed types fail fast). loadAll overrides the
// node type's configured batch loader when non-nil. The returned slice
// preserves the input order; duplicate input nodes resolve to the same
// value.
func (e *Engine) GetAll(ctx context.Context, nodes []Node, loadAll func(context.Context, []Node) ([]interface{}, error)) ([]interface{}, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	typ := reflect.TypeOf(nodes[0])
	for _, n := range nodes[1:] {
		if reflect.TypeOf(n) != typ {
			return nil, &ConfigError{Msg: fmt.Sprintf("get_all: mixed node types %s and %s", typ, reflect.TypeOf(n))}
		}
	}

	meta := nodes[0].Meta()
	metrics := e.Metrics(meta)
	local, remote, err := partitionCaches(e, meta.Caches)
	if err != nil {
		return nil, err
	}

	fullKeys := make([]string, len(nodes))
	for i, n := range nodes {
		fullKeys[i] = FullKeyOf(n)
	}
	results := make([]interface{}, len(nodes))
	missedTiers := make(map[string][]Cache, len(nodes))

	pending := make([]int, len(nodes))
	for i := range nodes {
		pending[i] = i
	}

	for _, tierGroup := range [][]Cache{local, remote} {
		for _, c := range tierGroup {
			if len(pending) == 0 {
				break
			}
			s, err := e.Storage(c.Storage)
			if err != nil {
				return nil, err
			}
			keys := make([]string, len(pending))
			for j, idx := range pending {
				keys[j] = fullKeys[idx]
			}
			hits, err := s.GetAll(ctx, keys, meta.Serializer)
			if err != nil {
				return nil, &StorageError{Storage: c.Storage, Op: "get_all", Err: err}
			}
			var stillPending []int
			for _, idx := range pending {
				fk := fullKeys[idx]
				if m, ok := hits[fk]; ok && m.Ok {
					results[idx] = m.Value.Value
					metrics.IncHit()
				} else {
					missedTiers[fk] = append(missedTiers[fk], c)
					stillPending = append(stillPending, idx)
				}
			}
			pending = stillPending
		}
	}

	var fetchIdx, waitIdx []int
	fetchHandles := make(map[string]*batchHandle, len(pending))
	waitHandles := make(map[string]*batchHandle, len(pending))

	e.handleMu.Lock()
	for _, idx := range pending {
		fk := fullKeys[idx]
		if h, ok := e.handles[fk]; ok {
			waitIdx = append(waitIdx, idx)
			waitHandles[fk] = h
		} else {
			h := &batchHandle{done: make(chan struct{})}
			e.handles[fk] = h
			fetchHandles[fk] = h
			fetchIdx = append(fetchIdx, idx)
		}
	}
	e.handleMu.Unlock()

	if len(fetchIdx) > 0 {
		fetchNodes := make([]Node, len(fetchIdx))
		for j, idx := range fetchIdx {
			fetchNodes[j] = nodes[idx]
		}

		batchLoader := loadAll
		if batchLoader == nil {
			batchLoader = meta.LoadAll
		}

		start := time.Now()
		var values []interface{}
		var loadErr error
		if batchLoader != nil {
			values, loadErr = batchLoader(ctx, fetchNodes)
		} else {
			values = make([]interface{}, len(fetchNodes))
			for j, n := range fetchNodes {
				v, err := n.Load(ctx)
				if err != nil {
					loadErr = err
					break
				}
				values[j] = v
			}
		}
		metrics.RecordLoad(loadErr == nil, time.Since(start))

		e.handleMu.Lock()
		for j, idx := range fetchIdx {
			fk := fullKeys[idx]
			h := fetchHandles[fk]
			if loadErr != nil {
				h.err = &LoaderError{Node: meta.Name, Key: fk, Err: loadErr}
			} else {
				h.value = values[j]
			}
			delete(e.handles, fk)
			close(h.done)
		}
		e.handleMu.Unlock()

		if loadErr != nil {
			return nil, &LoaderError{Node: meta.Name, Key: "(batch)", Err: loadErr}
		}
		for range fetchIdx {
			metrics.IncMiss()
		}
		for j, idx := range fetchIdx {
			results[idx] = values[j]
		}
	}

	for _, idx := range waitIdx {
		h := waitHandles[fullKeys[idx]]
		<-h.done
		if h.err != nil {
			return nil, h.err
		}
		results[idx] = h.value
		metrics.IncHit()
	}

	loadedByIdx := make(map[int]bool, len(fetchIdx))
	for _, idx := range fetchIdx {
		loadedByIdx[idx] = true
	}
	for idx, tiers := range indexTiers(fullKeys, missedTiers) {
		if len(tiers) == 0 {
			continue
		}
		if loadedByIdx[idx] && meta.Doorkeeper != nil {
			if alreadySeen := meta.Doorkeeper.Set(HashKey(fullKeys[idx])); !alreadySeen {
				continue
			}
		}
		e.backfill(ctx, tiers, fullKeys[idx], results[idx], meta)
	}

	return results, nil
}

// indexTiers maps missedTiers (keyed by full key) back onto node index so
// the back-fill pass can look up each node's result by position.
func indexTiers(fullKeys []string, missedTiers map[string][]Cache) map[int][]Cache {
	out := make(map[int][]Cache, len(missedTiers))
	for idx, fk := range fullKeys {
		if tiers, ok := missedTiers[fk]; ok {
			out[idx] = tiers
		}
	}
	return out
}
