// redisstore.go: a Redis-backed remote storage tier

// Package redisstore implements cacheme.Storage over Redis, registering
// itself under the redis:// scheme.
package redisstore

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Yiling-J/cacheme"
)

func init() {
	cacheme.RegisterScheme("redis", func(u *url.URL) (cacheme.Storage, error) {
		return New("redis", parseOptions(u)), nil
	})
}

// parseOptions builds *redis.Options from a redis:// URL: host:port from
// the authority, pool_size from the query string (default 10), and
// username/password from userinfo when present. Split out from init so the
// parsing can be verified without dialing a server.
func parseOptions(u *url.URL) *redis.Options {
	poolSize := 10
	if v := u.Query().Get("pool_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			poolSize = n
		}
	}
	opts := &redis.Options{
		Addr:     u.Host,
		PoolSize: poolSize,
	}
	if u.User != nil {
		opts.Username = u.User.Username()
		opts.Password, _ = u.User.Password()
	}
	return opts
}

// envelope is the {value, updated_at, expire} tuple remote tiers persist,
// serialized in full by the node's configured serializer.
type envelope struct {
	Value     interface{} `json:"value" msgpack:"value"`
	UpdatedAt time.Time   `json:"updated_at" msgpack:"updated_at"`
	Expire    *time.Time  `json:"expire,omitempty" msgpack:"expire,omitempty"`
}

// Storage is a Redis-backed cacheme.Storage.
type Storage struct {
	name   string
	client *redis.Client
}

// New builds a Storage bound to a *redis.Client constructed from opts.
func New(name string, opts *redis.Options) *Storage {
	return &Storage{name: name, client: redis.NewClient(opts)}
}

func (s *Storage) Name() string  { return s.name }
func (s *Storage) IsLocal() bool { return false }

func (s *Storage) Connect(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Storage) Close(ctx context.Context) error {
	return s.client.Close()
}

func (s *Storage) Get(ctx context.Context, fullKey string, ser cacheme.Serializer) (cacheme.Maybe, error) {
	b, err := s.client.Get(ctx, fullKey).Bytes()
	if err == redis.Nil {
		return cacheme.Absent(), nil
	}
	if err != nil {
		return cacheme.Maybe{}, err
	}
	return decode(b, ser)
}

func (s *Storage) GetAll(ctx context.Context, fullKeys []string, ser cacheme.Serializer) (map[string]cacheme.Maybe, error) {
	out := make(map[string]cacheme.Maybe, len(fullKeys))
	if len(fullKeys) == 0 {
		return out, nil
	}
	vals, err := s.client.MGet(ctx, fullKeys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if v == nil {
			continue
		}
		str, ok := v.(string)
		if !ok {
			continue
		}
		m, err := decode([]byte(str), ser)
		if err != nil {
			continue
		}
		if m.Ok {
			out[fullKeys[i]] = m
		}
	}
	return out, nil
}

func (s *Storage) Set(ctx context.Context, fullKey string, value interface{}, ttl time.Duration, ser cacheme.Serializer) error {
	b, err := encode(value, ttl, ser)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, fullKey, b, ttl).Err()
}

func (s *Storage) SetAll(ctx context.Context, values map[string]interface{}, ttl time.Duration, ser cacheme.Serializer) error {
	pipe := s.client.Pipeline()
	for k, v := range values {
		b, err := encode(v, ttl, ser)
		if err != nil {
			return err
		}
		pipe.Set(ctx, k, b, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) Remove(ctx context.Context, fullKey string) error {
	return s.client.Del(ctx, fullKey).Err()
}

func encode(value interface{}, ttl time.Duration, ser cacheme.Serializer) ([]byte, error) {
	env := envelope{Value: value, UpdatedAt: time.Now().UTC()}
	if ttl > 0 {
		t := env.UpdatedAt.Add(ttl)
		env.Expire = &t
	}
	b, err := ser.Dumps(env)
	if err != nil {
		return nil, &cacheme.SerializationError{Op: "dumps", Err: err}
	}
	return b, nil
}

func decode(b []byte, ser cacheme.Serializer) (cacheme.Maybe, error) {
	var env envelope
	if err := ser.Loads(b, &env); err != nil {
		// A decode failure is treated as a miss on read, per the design's
		// serialization-error handling, not propagated as a hard error.
		return cacheme.Absent(), nil
	}
	if env.Expire != nil && time.Now().UTC().After(*env.Expire) {
		return cacheme.Absent(), nil
	}
	return cacheme.Present(cacheme.Cached{Value: env.Value, UpdatedAt: env.UpdatedAt, Expire: env.Expire}), nil
}
