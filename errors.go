// errors.go: error taxonomy for cacheme

package cacheme

import "fmt"

// StorageError wraps a connection, protocol, or I/O failure reported by a
// storage adapter. It does not poison the cache: a subsequent call retries.
type StorageError struct {
	Storage string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("cacheme: storage %q: %s: %v", e.Storage, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// SerializationError wraps a serializer failure. On read, remote adapters
// treat the offending entry as absent and do not return this error. On
// write, a remote adapter's Set returns it; the engine's back-fill logs it
// and still returns the loaded value, and no load failure is recorded.
type SerializationError struct {
	Op  string // "dumps" or "loads"
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cacheme: serializer %s: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// LoaderError wraps a failure raised by a node's Load or LoadAll. It is
// recorded as a load failure and propagated to every current single-flight
// waiter; the value is never cached.
type LoaderError struct {
	Node string
	Key  string
	Err  error
}

func (e *LoaderError) Error() string {
	return fmt.Sprintf("cacheme: load %s(%s): %v", e.Node, e.Key, e.Err)
}

func (e *LoaderError) Unwrap() error { return e.Err }

// ConfigError reports an unknown storage scheme, a missing storage
// registration, or a mismatched node type in GetAll. It is fatal for the
// call and surfaced synchronously.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "cacheme: config: " + e.Msg }

// InvariantError reports a state the library cannot proceed from. It is
// returned when a dynamic node built without a loader is loaded, and when a
// memoized call finds a cached value of a type other than its own V.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "cacheme: invariant violated: " + e.Msg }
