// urlscheme_test.go: database/sql-style storage construction from URLs

package cacheme

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenStorageLocalTLFU(t *testing.T) {
	s, err := OpenStorage("hot", "local://tlfu?size=64")
	require.NoError(t, err)
	require.Equal(t, "hot", s.Name())
	require.True(t, s.IsLocal())

	ls, ok := s.(*LocalStorage)
	require.True(t, ok)
	require.NoError(t, ls.Connect(context.Background()))
	t.Cleanup(func() { _ = ls.Close(context.Background()) })
}

func TestOpenStorageLocalLRU(t *testing.T) {
	s, err := OpenStorage("cold", "local://lru?size=8")
	require.NoError(t, err)
	require.Equal(t, "cold", s.Name())
	require.True(t, s.IsLocal())
}

func TestOpenStorageLocalDefaultSize(t *testing.T) {
	s, err := OpenStorage("hot", "local://tlfu")
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestOpenStorageLocalInvalidSize(t *testing.T) {
	_, err := OpenStorage("hot", "local://tlfu?size=not-a-number")
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestOpenStorageLocalUnknownVariant(t *testing.T) {
	_, err := OpenStorage("hot", "local://bogus")
	require.Error(t, err)
}

func TestOpenStorageUnknownScheme(t *testing.T) {
	_, err := OpenStorage("x", "ftp://example.com")
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestOpenStorageInvalidURL(t *testing.T) {
	_, err := OpenStorage("x", "://not a url")
	require.Error(t, err)
}

func TestRegisterSchemeAndDispatch(t *testing.T) {
	RegisterScheme("memtest", func(u *url.URL) (Storage, error) {
		return NewLocalStorage("inner", 10, 0), nil
	})
	s, err := OpenStorage("wrapped", "memtest://whatever")
	require.NoError(t, err)
	require.Equal(t, "wrapped", s.Name(), "OpenStorage must rename the factory's storage to the caller's name")
}
