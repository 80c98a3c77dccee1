// urlscheme.go: storage construction from URLs, database/sql-style registration

package cacheme

import (
	"fmt"
	"net/url"
	"strconv"
	"sync"
)

// StorageFactory builds a Storage from a parsed URL. Concrete adapters
// (storages/redisstore, storages/postgresstore, ...) register one per
// scheme from an init func, the same way database/sql drivers register
// themselves — cacheme's core never imports a concrete adapter package, so
// only the adapters actually linked into a binary pull in their driver
// dependency.
type StorageFactory func(u *url.URL) (Storage, error)

var (
	schemeMu sync.RWMutex
	schemes  = make(map[string]StorageFactory)
)

// RegisterScheme associates scheme with factory. Calling it twice for the
// same scheme overwrites the prior registration; adapters normally call it
// exactly once from an init func.
func RegisterScheme(scheme string, factory StorageFactory) {
	schemeMu.Lock()
	defer schemeMu.Unlock()
	schemes[scheme] = factory
}

// OpenStorage parses rawURL and dispatches to the registered factory for
// its scheme. local://lru and local://tlfu are built in; every other
// scheme must have been registered by importing its adapter package.
func OpenStorage(name, rawURL string) (Storage, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("storage %q: invalid URL: %v", name, err)}
	}

	switch u.Scheme {
	case "local":
		return openLocal(name, u)
	}

	schemeMu.RLock()
	factory, ok := schemes[u.Scheme]
	schemeMu.RUnlock()
	if !ok {
		return nil, &ConfigError{Msg: fmt.Sprintf("storage %q: unknown scheme %q", name, u.Scheme)}
	}
	s, err := factory(u)
	if err != nil {
		return nil, err
	}
	return namedStorage{Storage: s, name: name}, nil
}

// namedStorage overrides Name so a single adapter implementation can be
// registered under whatever name the caller picked at registration time.
type namedStorage struct {
	Storage
	name string
}

func (n namedStorage) Name() string { return n.name }

func openLocal(name string, u *url.URL) (Storage, error) {
	size := 10000
	if v := u.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &ConfigError{Msg: fmt.Sprintf("storage %q: invalid size %q", name, v)}
		}
		size = n
	}
	sweep := defaultSweepInterval

	switch u.Host {
	case "lru":
		return NewLocalLRUStorage(name, size, sweep), nil
	case "tlfu":
		return NewLocalStorage(name, size, sweep), nil
	default:
		return nil, &ConfigError{Msg: fmt.Sprintf("storage %q: unknown local scheme %q", name, u.Host)}
	}
}
