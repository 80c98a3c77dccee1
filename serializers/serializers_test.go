// serializers_test.go: round-trip tests for each Serializer implementation

package serializers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string
	Count int
}

func TestJSONRoundTrip(t *testing.T) {
	s := JSON{}
	b, err := s.Dumps(payload{Name: "a", Count: 3})
	require.NoError(t, err)

	var out payload
	require.NoError(t, s.Loads(b, &out))
	require.Equal(t, payload{Name: "a", Count: 3}, out)
}

func TestMsgPackRoundTrip(t *testing.T) {
	s := MsgPack{}
	b, err := s.Dumps(payload{Name: "b", Count: 9})
	require.NoError(t, err)

	var out payload
	require.NoError(t, s.Loads(b, &out))
	require.Equal(t, payload{Name: "b", Count: 9}, out)
}

func TestCompressedPassesThroughSmallPayloadsUncompressed(t *testing.T) {
	c := Compressed{Inner: JSON{}}
	b, err := c.Dumps(payload{Name: "tiny", Count: 1})
	require.NoError(t, err)
	require.Equal(t, flagRaw, b[0])

	var out payload
	require.NoError(t, c.Loads(b, &out))
	require.Equal(t, payload{Name: "tiny", Count: 1}, out)
}

func TestCompressedCompressesLargePayloads(t *testing.T) {
	c := Compressed{Inner: JSON{}, MinBytes: 16}
	big := payload{Name: strings.Repeat("x", 1000), Count: 42}
	b, err := c.Dumps(big)
	require.NoError(t, err)
	require.Equal(t, flagCompressed, b[0])

	var out payload
	require.NoError(t, c.Loads(b, &out))
	require.Equal(t, big, out)
}

func TestCompressedLoadsEmptyPayloadErrors(t *testing.T) {
	c := Compressed{Inner: JSON{}}
	var out payload
	err := c.Loads(nil, &out)
	require.Error(t, err)
}
