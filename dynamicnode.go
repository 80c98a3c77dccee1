// dynamicnode.go: runtime-declared node types

package cacheme

import "context"

// dynamicNode is a Node instance parameterized by a single string key,
// produced by a type built with BuildNode.
type dynamicNode struct {
	meta *NodeMeta
	key  string
	fn   func(ctx context.Context) (interface{}, error)
}

func (n *dynamicNode) Key() string     { return n.key }
func (n *dynamicNode) Tags() []string  { return nil }
func (n *dynamicNode) Meta() *NodeMeta { return n.meta }
func (n *dynamicNode) Load(ctx context.Context) (interface{}, error) {
	if n.fn == nil {
		return nil, &InvariantError{Msg: "dynamic node built without a loader"}
	}
	return n.fn(ctx)
}

// DynamicNodeType is the reusable factory BuildNode returns: New produces
// instances parameterized by a key and a per-call loader.
type DynamicNodeType struct {
	meta *NodeMeta
}

// New builds a Node instance of this dynamic type for key, whose Load
// invokes fn.
func (t *DynamicNodeType) New(key string, fn func(ctx context.Context) (interface{}, error)) Node {
	return &dynamicNode{meta: t.meta, key: key, fn: fn}
}

// Meta returns the type's shared configuration.
func (t *DynamicNodeType) Meta() *NodeMeta { return t.meta }

// BuildNode produces a reusable node type identified by name, parameterized
// by a single string key, for callers that need runtime-declared cache
// namespaces. Identity is by name: rebuilding with a name already known to
// e returns the type wrapping the previously registered metadata rather
// than a fresh one.
func BuildNode(e *Engine, name, version string, caches []Cache, ser Serializer, dk Doorkeeper) *DynamicNodeType {
	meta := &NodeMeta{
		Name:       name,
		Version:    version,
		Caches:     caches,
		Serializer: ser,
		Doorkeeper: dk,
	}
	return &DynamicNodeType{meta: e.RegisterDynamic(meta)}
}
