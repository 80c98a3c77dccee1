// node.go: the node model — explicit per-type metadata in place of metaclasses

package cacheme

import (
	"context"
	"time"
)

// Cache is an ordered (storage, ttl) pair in a node's tier list. A zero TTL
// means the entry never expires in that tier.
type Cache struct {
	Storage string
	TTL     time.Duration
}

// NodeMeta is the per-node-type configuration that, in the source system,
// lived on a metaclass-generated inner class. Every node type owns exactly
// one NodeMeta, built once and shared across every instance of that type.
type NodeMeta struct {
	// Name identifies the node type for metrics grouping and dynamic-node
	// registration (GetAll's type-mismatch check compares Go types, not
	// Name). Two different Go types must not share a Name.
	Name string
	// Version is appended to the full key; bump it to invalidate an entire
	// node type at once without touching storages.
	Version string
	// Caches is the ordered tier list, fastest/nearest first.
	Caches []Cache
	// Serializer encodes values for any remote tier in Caches. Required if
	// Caches contains a non-local storage.
	Serializer Serializer
	// Doorkeeper, if set, gates back-fill on first-seen keys.
	Doorkeeper Doorkeeper
	// LoadAll is the batch loader used by get_all. When nil, the engine
	// falls back to calling Load on each remaining node in order.
	LoadAll func(ctx context.Context, nodes []Node) ([]interface{}, error)
}

// Node is a user-defined cacheable fact: a deterministic key, optional
// tags, a reference to its type's shared metadata, and a loader. Nodes are
// cheap value types created per request; they carry no mutable state
// beyond what Key returns.
type Node interface {
	// Key derives the cache key fragment from the node's fields. It must
	// already disambiguate the node's type (e.g. by including a type tag)
	// since the full key does not separately encode the Go type.
	Key() string
	// Tags lists arbitrary labels associated with the node; may be empty.
	Tags() []string
	// Meta returns the node type's shared configuration.
	Meta() *NodeMeta
	// Load computes the value on a cache miss.
	Load(ctx context.Context) (interface{}, error)
}

// FullKeyOf computes a node's full key: "<prefix>:<key>:<version>".
func FullKeyOf(n Node) string {
	return FullKey(n.Key(), n.Meta().Version)
}

// partitionCaches splits a node type's tier list into local and remote
// tiers, preserving order, by asking the registered storage for each tier
// whether it is local.
func partitionCaches(e *Engine, caches []Cache) (local, remote []Cache, err error) {
	for _, c := range caches {
		s, err := e.Storage(c.Storage)
		if err != nil {
			return nil, nil, err
		}
		if s.IsLocal() {
			local = append(local, c)
		} else {
			remote = append(remote, c)
		}
	}
	return local, remote, nil
}
