// models.go: key derivation and the cached value envelope

package cacheme

import (
	"time"

	"github.com/cespare/xxhash/v2"
)

// prefix is the process-global namespace prepended to every full key.
// It defaults to "cacheme" and is meant to be set once, during startup.
var prefix = "cacheme"

// SetPrefix overrides the process-global key prefix. Call it before any
// node is evaluated; it is not safe to change concurrently with Get/GetAll.
func SetPrefix(p string) {
	if p != "" {
		prefix = p
	}
}

// Prefix returns the current process-global key prefix.
func Prefix() string { return prefix }

// FullKey formats the storage key used for a node: "<prefix>:<key>:<version>".
func FullKey(key, version string) string {
	return prefix + ":" + key + ":" + version
}

// HashKey returns a 64-bit hash of a full key, used by the admission cache's
// frequency sketch and by the engine's doorkeeper check.
func HashKey(fullKey string) uint64 {
	return xxhash.Sum64String(fullKey)
}

// Cached is the result of a successful tier lookup: the value itself, when
// it was written, and (for remote tiers) when it expires.
type Cached struct {
	Value     interface{}
	UpdatedAt time.Time
	Expire    *time.Time
}

// Expired reports whether the envelope's expiry, if any, has passed.
func (c Cached) Expired(now time.Time) bool {
	return c.Expire != nil && !c.Expire.IsZero() && !now.Before(*c.Expire)
}

// Maybe is the sentinel return type that distinguishes "absent" from
// "present with a falsy value" across the storage contract.
type Maybe struct {
	Value Cached
	Ok    bool
}

// Present wraps a found value.
func Present(v Cached) Maybe { return Maybe{Value: v, Ok: true} }

// Absent is the "not found" marker.
func Absent() Maybe { return Maybe{} }
