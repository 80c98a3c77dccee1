// serializer.go: the serializer contract

package cacheme

// Serializer converts values to and from the bytes a remote store persists.
// Implementations (JSON, MessagePack, a compressing wrapper around either)
// live in the sibling serializers package; the engine only depends on this
// contract.
type Serializer interface {
	Dumps(v interface{}) ([]byte, error)
	Loads(b []byte, out interface{}) error
}
