// json.go: the JSON serializer

// Package serializers provides the cacheme.Serializer implementations
// interchangeable across remote storage tiers.
package serializers

import "encoding/json"

// JSON serializes values with the standard library's encoding/json. It is
// the default: readable, debuggable, and the safest choice when a remote
// tier is inspected by tooling outside this process.
type JSON struct{}

func (JSON) Dumps(v interface{}) ([]byte, error) { return json.Marshal(v) }

func (JSON) Loads(b []byte, out interface{}) error { return json.Unmarshal(b, out) }
