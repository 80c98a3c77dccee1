// engine.go: the read-through engine, single-node path

package cacheme

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// sfOutcome is what a single-flight-coalesced load produces: the value and
// whether producing it actually required invoking the node's loader (as
// opposed to a late remote-tier hit), which decides whether the call that
// led the group records a hit or a miss.
type sfOutcome struct {
	value  interface{}
	loaded bool
}

// Get performs a read-through lookup for n. When loader is nil, n.Load is
// used; passing a non-nil loader overrides it without touching the node's
// own Load method, matching the design's "loader override" allowance.
func (e *Engine) Get(ctx context.Context, n Node, loader func(context.Context) (interface{}, error)) (interface{}, error) {
	meta := n.Meta()
	metrics := e.Metrics(meta)
	fullKey := FullKeyOf(n)

	local, remote, err := partitionCaches(e, meta.Caches)
	if err != nil {
		return nil, err
	}

	var missedLocal []Cache
	for _, c := range local {
		s, err := e.Storage(c.Storage)
		if err != nil {
			return nil, err
		}
		maybe, err := s.Get(ctx, fullKey, meta.Serializer)
		if err != nil {
			return nil, &StorageError{Storage: c.Storage, Op: "get", Err: err}
		}
		if maybe.Ok {
			metrics.IncHit()
			e.backfill(ctx, missedLocal, fullKey, maybe.Value.Value, meta)
			return maybe.Value.Value, nil
		}
		missedLocal = append(missedLocal, c)
	}

	if loader == nil {
		loader = n.Load
	}

	// led is set only when this call's own closure runs, i.e. when this call
	// leads the single-flight group; singleflight's shared flag cannot tell,
	// since it is true for the leader as well once others have joined.
	led := false
	result, err, _ := e.sf.Do(fullKey, func() (interface{}, error) {
		led = true
		var missedRemote []Cache
		for _, c := range remote {
			s, err := e.Storage(c.Storage)
			if err != nil {
				return nil, err
			}
			maybe, err := s.Get(ctx, fullKey, meta.Serializer)
			if err != nil {
				return nil, &StorageError{Storage: c.Storage, Op: "get", Err: err}
			}
			if maybe.Ok {
				e.backfill(ctx, append(append([]Cache{}, missedLocal...), missedRemote...), fullKey, maybe.Value.Value, meta)
				return sfOutcome{value: maybe.Value.Value, loaded: false}, nil
			}
			missedRemote = append(missedRemote, c)
		}

		start := time.Now()
		value, lerr := loader(ctx)
		metrics.RecordLoad(lerr == nil, time.Since(start))
		if lerr != nil {
			return nil, &LoaderError{Node: meta.Name, Key: fullKey, Err: lerr}
		}

		if meta.Doorkeeper != nil {
			if alreadySeen := meta.Doorkeeper.Set(HashKey(fullKey)); !alreadySeen {
				return sfOutcome{value: value, loaded: true}, nil
			}
		}
		e.backfill(ctx, append(append([]Cache{}, missedLocal...), missedRemote...), fullKey, value, meta)
		return sfOutcome{value: value, loaded: true}, nil
	})
	if err != nil {
		return nil, err
	}

	outcome := result.(sfOutcome)
	if !led || !outcome.loaded {
		metrics.IncHit()
	} else {
		metrics.IncMiss()
	}
	return outcome.value, nil
}

// backfill writes value into every tier in tiers, logging but not failing
// the call on an individual write error — a missed back-fill merely costs
// the next lookup an extra tier walk. Writes to a local tier that evict an
// existing entry are folded into the node type's eviction_count.
func (e *Engine) backfill(ctx context.Context, tiers []Cache, fullKey string, value interface{}, meta *NodeMeta) {
	metrics := e.Metrics(meta)
	for _, c := range tiers {
		s, err := e.Storage(c.Storage)
		if err != nil {
			continue
		}
		var before int64
		local, isLocal := s.(*LocalStorage)
		if isLocal {
			before = local.Evictions()
		}
		if err := s.Set(ctx, fullKey, value, c.TTL, meta.Serializer); err != nil {
			e.log.Warn("back-fill failed", zap.String("storage", c.Storage), zap.String("key", fullKey), zap.Error(err))
			continue
		}
		if isLocal && local.Evictions() > before {
			metrics.IncEviction()
		}
	}
}
