package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

const testRedisAddr = "localhost:6379"

// setupTestCache connects to a local Redis or skips the test.
func setupTestCache(t *testing.T) (*Cache, func()) {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: testRedisAddr,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	prefix := "test:" + t.Name() + ":"
	c := New(client, prefix, time.Minute)

	cleanup := func() {
		c.DeletePattern(ctx, "*")
		client.Close()
	}
	return c, cleanup
}

type testValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCache_SetGetDelete(t *testing.T) {
	c, cleanup := setupTestCache(t)
	defer cleanup()
	ctx := context.Background()

	value := testValue{Name: "widget", Count: 3}
	if err := c.Set(ctx, "key1", value); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got testValue
	found, err := c.Get(ctx, "key1", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() found = false, want true")
	}
	if got != value {
		t.Errorf("got = %+v, want %+v", got, value)
	}

	if err := c.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	found, err = c.Get(ctx, "key1", &got)
	if err != nil {
		t.Fatalf("Get() after delete error = %v", err)
	}
	if found {
		t.Error("Get() after delete found = true, want false")
	}
}

func TestCache_MissIsNotAnError(t *testing.T) {
	c, cleanup := setupTestCache(t)
	defer cleanup()

	var got testValue
	found, err := c.Get(context.Background(), "absent", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() of absent key found = true, want false")
	}
}

func TestCache_Stats(t *testing.T) {
	c, cleanup := setupTestCache(t)
	defer cleanup()
	ctx := context.Background()

	var got testValue
	c.Get(ctx, "absent", &got)
	c.Set(ctx, "key", testValue{Name: "x"})
	c.Get(ctx, "key", &got)

	stats := c.GetStats()
	if stats.Misses != 1 {
		t.Errorf("stats.Misses = %d, want 1", stats.Misses)
	}
	if stats.Hits != 1 {
		t.Errorf("stats.Hits = %d, want 1", stats.Hits)
	}
	if stats.Sets != 1 {
		t.Errorf("stats.Sets = %d, want 1", stats.Sets)
	}
	if stats.TotalGets != 2 {
		t.Errorf("stats.TotalGets = %d, want 2", stats.TotalGets)
	}
}
