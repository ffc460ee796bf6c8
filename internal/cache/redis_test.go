package cache

import (
	"context"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

func TestBreakerOpensOnUnreachableRedis(t *testing.T) {
	// nothing listens on port 1
	c, err := NewRedisCache("127.0.0.1:1", time.Minute, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		var dest []string
		if _, _, err := c.GetListing(ctx, "trending", 20, &dest); err == nil {
			t.Fatalf("read %d succeeded against an unreachable server", i)
		}
	}
	if state := c.breaker.State(); state != gobreaker.StateOpen {
		t.Fatalf("breaker state = %v, want open", state)
	}

	var dest []string
	key, hit, err := c.GetListing(ctx, "trending", 20, &dest)
	if err != nil || hit || key != "" {
		t.Errorf("open breaker: key %q hit %v err %v, want a silent miss", key, hit, err)
	}
	if err := c.SetListing(ctx, "movies:v0:trending:x", dest); err != nil {
		t.Errorf("open breaker fill: %v", err)
	}
	if err := c.Invalidate(ctx); err == nil {
		t.Error("Invalidate bypasses the breaker and should report the failure")
	}
}
