// mongostore.go: MongoDB-backed storage tier

// Package mongostore registers the mongodb:// storage scheme.
package mongostore

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Yiling-J/cacheme"
)

func init() {
	cacheme.RegisterScheme("mongodb", func(u *url.URL) (cacheme.Storage, error) {
		database, collection, poolSize := parseDatabaseCollectionPoolSize(u)
		clientOpts := options.Client().ApplyURI(u.String()).SetMaxPoolSize(poolSize)
		client, err := mongo.Connect(context.Background(), clientOpts)
		if err != nil {
			return nil, err
		}
		return New("mongodb", client, database, collection), nil
	})
}

// parseDatabaseCollectionPoolSize reads the database, collection and
// pool_size query parameters, defaulting to "cacheme", "entries" and 10.
// Split out from init so the URL handling can be verified without dialing
// a server.
func parseDatabaseCollectionPoolSize(u *url.URL) (database, collection string, poolSize uint64) {
	database = u.Query().Get("database")
	if database == "" {
		database = "cacheme"
	}
	collection = u.Query().Get("collection")
	if collection == "" {
		collection = "entries"
	}
	poolSize = 10
	if v := u.Query().Get("pool_size"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			poolSize = n
		}
	}
	return database, collection, poolSize
}

// doc stores the node's serializer output as opaque bytes rather than a
// native BSON value, so the envelope schema matches every other remote
// adapter and a node's choice of serializer is honored uniformly.
type doc struct {
	FullKey   string     `bson:"_id"`
	Value     []byte     `bson:"value"`
	UpdatedAt time.Time  `bson:"updated_at"`
	Expire    *time.Time `bson:"expire,omitempty"`
}

// Storage is a MongoDB-backed cacheme.Storage storing one document per
// full key, keyed on _id.
type Storage struct {
	name string
	coll *mongo.Collection
}

// New builds a Storage bound to database.collection on an already-connected
// client.
func New(name string, client *mongo.Client, database, collection string) *Storage {
	return &Storage{name: name, coll: client.Database(database).Collection(collection)}
}

func (s *Storage) Name() string  { return s.name }
func (s *Storage) IsLocal() bool { return false }

func (s *Storage) Connect(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

func (s *Storage) Close(ctx context.Context) error {
	return s.coll.Database().Client().Disconnect(ctx)
}

func (s *Storage) Get(ctx context.Context, fullKey string, ser cacheme.Serializer) (cacheme.Maybe, error) {
	var d doc
	err := s.coll.FindOne(ctx, bson.M{"_id": fullKey}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return cacheme.Absent(), nil
	}
	if err != nil {
		return cacheme.Maybe{}, err
	}
	if d.Expire != nil && time.Now().UTC().After(*d.Expire) {
		return cacheme.Absent(), nil
	}
	var value interface{}
	if err := ser.Loads(d.Value, &value); err != nil {
		return cacheme.Absent(), nil
	}
	return cacheme.Present(cacheme.Cached{Value: value, UpdatedAt: d.UpdatedAt, Expire: d.Expire}), nil
}

func (s *Storage) GetAll(ctx context.Context, fullKeys []string, ser cacheme.Serializer) (map[string]cacheme.Maybe, error) {
	out := make(map[string]cacheme.Maybe, len(fullKeys))
	cur, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": fullKeys}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	now := time.Now().UTC()
	for cur.Next(ctx) {
		var d doc
		if err := cur.Decode(&d); err != nil {
			continue
		}
		if d.Expire != nil && now.After(*d.Expire) {
			continue
		}
		var value interface{}
		if err := ser.Loads(d.Value, &value); err != nil {
			continue
		}
		out[d.FullKey] = cacheme.Present(cacheme.Cached{Value: value, UpdatedAt: d.UpdatedAt, Expire: d.Expire})
	}
	return out, cur.Err()
}

func (s *Storage) Set(ctx context.Context, fullKey string, value interface{}, ttl time.Duration, ser cacheme.Serializer) error {
	raw, err := ser.Dumps(value)
	if err != nil {
		return &cacheme.SerializationError{Op: "dumps", Err: err}
	}
	now := time.Now().UTC()
	d := doc{FullKey: fullKey, Value: raw, UpdatedAt: now}
	if ttl > 0 {
		t := now.Add(ttl)
		d.Expire = &t
	}
	opts := options.Replace().SetUpsert(true)
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": fullKey}, d, opts)
	return err
}

func (s *Storage) SetAll(ctx context.Context, values map[string]interface{}, ttl time.Duration, ser cacheme.Serializer) error {
	for k, v := range values {
		if err := s.Set(ctx, k, v, ttl, ser); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) Remove(ctx context.Context, fullKey string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": fullKey})
	return err
}
