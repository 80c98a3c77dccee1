// models_test.go: key derivation and the Maybe sentinel

package cacheme

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFullKeyFormat(t *testing.T) {
	SetPrefix("cacheme")
	require.Equal(t, "cacheme:User:id=1:v1", FullKey("User:id=1", "v1"))
}

func TestSetPrefixOverride(t *testing.T) {
	SetPrefix("myapp")
	defer SetPrefix("cacheme")
	require.Equal(t, "myapp:k:v1", FullKey("k", "v1"))
}

func TestMaybePresentAbsent(t *testing.T) {
	absent := Absent()
	require.False(t, absent.Ok)

	present := Present(Cached{Value: false})
	require.True(t, present.Ok, "a falsy value must still report present")
	require.Equal(t, false, present.Value.Value)
}

func TestCachedExpired(t *testing.T) {
	now := time.Now()
	noExpiry := Cached{Value: 1}
	require.False(t, noExpiry.Expired(now))

	future := now.Add(time.Hour)
	notYet := Cached{Value: 1, Expire: &future}
	require.False(t, notYet.Expired(now))

	past := now.Add(-time.Hour)
	expired := Cached{Value: 1, Expire: &past}
	require.True(t, expired.Expired(now))
}

func TestHashKeyDeterministic(t *testing.T) {
	require.Equal(t, HashKey("same"), HashKey("same"))
	require.NotEqual(t, HashKey("a"), HashKey("b"))
}
