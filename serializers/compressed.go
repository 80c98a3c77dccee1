// compressed.go: a zstd-compressing wrapper around any Serializer

package serializers

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Serializer mirrors cacheme.Serializer structurally so this package never
// imports the core package (which would invert the dependency direction
// storage adapters and serializers are meant to have on it).
type Serializer interface {
	Dumps(v interface{}) ([]byte, error)
	Loads(b []byte, out interface{}) error
}

// Compressed wraps an inner Serializer with zstd, worthwhile once entries
// are large enough that transport/storage cost outweighs the codec
// overhead. Small payloads pass through uncompressed behind a one-byte
// marker so Loads does not pay decompression cost on data that never
// benefited from it.
type Compressed struct {
	Inner     Serializer
	MinBytes  int // payloads smaller than this skip compression; 0 uses a sane default
}

const (
	flagRaw        byte = 0
	flagCompressed byte = 1
)

func (c Compressed) minBytes() int {
	if c.MinBytes > 0 {
		return c.MinBytes
	}
	return 256
}

func (c Compressed) Dumps(v interface{}) ([]byte, error) {
	raw, err := c.Inner.Dumps(v)
	if err != nil {
		return nil, err
	}
	if len(raw) < c.minBytes() {
		return append([]byte{flagRaw}, raw...), nil
	}
	buf := getBuffer()
	defer putBuffer(buf)

	enc, err := zstd.NewWriter(buf)
	if err != nil {
		return nil, fmt.Errorf("compressed serializer: new encoder: %w", err)
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return nil, fmt.Errorf("compressed serializer: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("compressed serializer: encode: %w", err)
	}

	out := make([]byte, buf.Len()+1)
	out[0] = flagCompressed
	copy(out[1:], buf.Bytes())
	return out, nil
}

func (c Compressed) Loads(b []byte, out interface{}) error {
	if len(b) == 0 {
		return fmt.Errorf("compressed serializer: empty payload")
	}
	flag, payload := b[0], b[1:]
	if flag == flagRaw {
		return c.Inner.Loads(payload, out)
	}
	dec, err := zstd.NewReader(bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("compressed serializer: new decoder: %w", err)
	}
	defer dec.Close()

	buf := getBuffer()
	defer putBuffer(buf)
	if _, err := io.Copy(buf, dec); err != nil {
		return fmt.Errorf("compressed serializer: decode: %w", err)
	}

	raw := make([]byte, buf.Len())
	copy(raw, buf.Bytes())
	return c.Inner.Loads(raw, out)
}
