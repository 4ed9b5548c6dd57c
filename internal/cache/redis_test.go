package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestInitRedisNoAddr(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	Client = nil
	InitRedis(context.Background())
	if Client != nil {
		t.Fatal("expected nil client without an address")
	}
}

func TestInitRedisUnreachable(t *testing.T) {
	t.Setenv("REDIS_URL", "127.0.0.1:1")
	Client = nil
	// Must degrade to a nil client, not abort.
	InitRedis(context.Background())
	if Client != nil {
		t.Fatal("expected nil client when Redis is unreachable")
	}
}

func TestInitRedisConnects(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_URL", mr.Addr())
	Client = nil
	InitRedis(context.Background())
	if Client == nil {
		t.Fatal("expected live client")
	}
	Client = nil
}
