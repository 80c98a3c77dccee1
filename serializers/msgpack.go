// msgpack.go: the MessagePack serializer

package serializers

import "github.com/vmihailenco/msgpack/v5"

// MsgPack serializes values with MessagePack, trading JSON's readability
// for a denser wire format — worthwhile once a remote tier's network or
// storage cost dominates.
type MsgPack struct{}

func (MsgPack) Dumps(v interface{}) ([]byte, error) { return msgpack.Marshal(v) }

func (MsgPack) Loads(b []byte, out interface{}) error { return msgpack.Unmarshal(b, out) }
