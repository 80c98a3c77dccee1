// storage.go: the storage contract and the in-process local adapter

package cacheme

import (
	"context"
	"sync/atomic"
	"time"
)

// Storage is the keyed mapping from full-key strings to values that every
// cache tier, local or remote, implements. Local tiers ignore the
// serializer argument and store raw values; remote tiers use it to encode
// and decode the {value, updated_at, expire} envelope. Concrete remote
// adapters (Redis, Postgres, MySQL, SQLite, MongoDB) live under storages/.
type Storage interface {
	// Name is the identifier nodes reference from their Cache declarations.
	Name() string
	// IsLocal reports whether the tier may be probed synchronously.
	IsLocal() bool
	// Connect establishes any resources; idempotent, must run before first use.
	Connect(ctx context.Context) error
	// Close releases resources.
	Close(ctx context.Context) error

	Get(ctx context.Context, fullKey string, ser Serializer) (Maybe, error)
	GetAll(ctx context.Context, fullKeys []string, ser Serializer) (map[string]Maybe, error)
	Set(ctx context.Context, fullKey string, value interface{}, ttl time.Duration, ser Serializer) error
	SetAll(ctx context.Context, values map[string]interface{}, ttl time.Duration, ser Serializer) error
	Remove(ctx context.Context, fullKey string) error
}

// LocalStorage wraps an admissionCache behind the Storage contract. It is
// what local://lru and local://tlfu resolve to.
type LocalStorage struct {
	name      string
	cache     *admissionCache
	evictions int64 // atomic

	sweepInterval time.Duration
	sweepStop     chan struct{}
	sweepDone     chan struct{}
}

// NewLocalStorage builds a W-TinyLFU-backed local tier holding up to size
// entries. A background sweeper reclaims expired entries every
// sweepInterval as an optimization; pass 0 to disable it (Get still
// re-checks expiry on every lookup either way).
func NewLocalStorage(name string, size int, sweepInterval time.Duration) *LocalStorage {
	ls := &LocalStorage{
		name:          name,
		cache:         newAdmissionCache(size),
		sweepInterval: sweepInterval,
	}
	return ls
}

// NewLocalLRUStorage builds a plain-LRU local tier (the degenerate,
// window-only W-TinyLFU backing local://lru).
func NewLocalLRUStorage(name string, size int, sweepInterval time.Duration) *LocalStorage {
	return &LocalStorage{
		name:          name,
		cache:         newLRUCache(size),
		sweepInterval: sweepInterval,
	}
}

func (l *LocalStorage) Name() string  { return l.name }
func (l *LocalStorage) IsLocal() bool { return true }

func (l *LocalStorage) Connect(ctx context.Context) error {
	if l.sweepInterval <= 0 || l.sweepStop != nil {
		return nil
	}
	l.sweepStop = make(chan struct{})
	l.sweepDone = make(chan struct{})
	go l.sweepLoop()
	return nil
}

func (l *LocalStorage) Close(ctx context.Context) error {
	if l.sweepStop != nil {
		close(l.sweepStop)
		<-l.sweepDone
		l.sweepStop = nil
	}
	return nil
}

func (l *LocalStorage) sweepLoop() {
	defer close(l.sweepDone)
	t := time.NewTicker(l.sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			l.cache.sweepExpired(time.Now(), 10)
		case <-l.sweepStop:
			return
		}
	}
}

func (l *LocalStorage) Get(ctx context.Context, fullKey string, ser Serializer) (Maybe, error) {
	v, ok := l.cache.Get(fullKey, time.Now())
	if !ok {
		return Absent(), nil
	}
	return Present(Cached{Value: v, UpdatedAt: time.Now()}), nil
}

func (l *LocalStorage) GetAll(ctx context.Context, fullKeys []string, ser Serializer) (map[string]Maybe, error) {
	out := make(map[string]Maybe, len(fullKeys))
	now := time.Now()
	for _, k := range fullKeys {
		if v, ok := l.cache.Get(k, now); ok {
			out[k] = Present(Cached{Value: v, UpdatedAt: now})
		}
	}
	return out, nil
}

func (l *LocalStorage) Set(ctx context.Context, fullKey string, value interface{}, ttl time.Duration, ser Serializer) error {
	var expireAt time.Time
	if ttl > 0 {
		expireAt = time.Now().Add(ttl)
	}
	evictedKey, evicted := l.cache.Set(fullKey, value, expireAt)
	_ = evictedKey
	if evicted {
		atomic.AddInt64(&l.evictions, 1)
	}
	return nil
}

func (l *LocalStorage) SetAll(ctx context.Context, values map[string]interface{}, ttl time.Duration, ser Serializer) error {
	for k, v := range values {
		if err := l.Set(ctx, k, v, ttl, ser); err != nil {
			return err
		}
	}
	return nil
}

func (l *LocalStorage) Remove(ctx context.Context, fullKey string) error {
	l.cache.Remove(fullKey)
	return nil
}

// Len reports the number of entries currently resident.
func (l *LocalStorage) Len() int { return l.cache.Len() }

// Evictions reports the cumulative number of entries this tier has evicted
// to make room for new ones (expirations are not evictions).
func (l *LocalStorage) Evictions() int64 { return atomic.LoadInt64(&l.evictions) }
