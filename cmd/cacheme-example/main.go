// main.go: example usage of cacheme

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Yiling-J/cacheme"
	"github.com/google/uuid"
)

// UserNode looks a user up by ID, backed by an in-process W-TinyLFU tier.
type UserNode struct {
	ID string
}

var userMeta = &cacheme.NodeMeta{
	Name:    "User",
	Version: "v1",
	Caches: []cacheme.Cache{
		{Storage: "local", TTL: 30 * time.Second},
	},
	Serializer: nil,
}

func (n UserNode) Key() string         { return "User:id=" + n.ID }
func (n UserNode) Tags() []string      { return []string{"user"} }
func (n UserNode) Meta() *cacheme.NodeMeta { return userMeta }
func (n UserNode) Load(ctx context.Context) (interface{}, error) {
	return fmt.Sprintf("user-%s-from-source", n.ID), nil
}

func main() {
	ctx := context.Background()

	e := cacheme.New()
	local, err := cacheme.OpenStorage("local", "local://tlfu?size=10000")
	if err != nil {
		panic(err)
	}
	if err := e.RegisterStorage(ctx, local); err != nil {
		panic(err)
	}
	defer e.Close(ctx)

	// A fresh request ID per run, the way a real service would tag a
	// request for tracing; it plays no part in the cache key.
	requestID := uuid.NewString()
	fmt.Println("request:", requestID)

	v, err := e.GetDefault(ctx, UserNode{ID: "42"})
	if err != nil {
		panic(err)
	}
	fmt.Println("first get:", v)

	v, err = e.GetDefault(ctx, UserNode{ID: "42"})
	if err != nil {
		panic(err)
	}
	fmt.Println("second get (cached):", v)

	stats := e.Stats(userMeta)
	fmt.Printf("hits=%d misses=%d hit_rate=%.2f\n", stats.HitCount, stats.MissCount, stats.HitRate)
}
