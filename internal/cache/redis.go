package cache

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

// InitRedis connects to Redis if configured. The mirror is best-effort, so a
// missing or unreachable Redis leaves Client nil instead of aborting startup.
func InitRedis(ctx context.Context) {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		log.Println("REDIS_URL not set, skipping Redis connection")
		return
	}
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("failed to connect to Redis, signal mirroring disabled: %v", err)
		return
	}
	Client = client
	log.Println("Connected to Redis")
}
