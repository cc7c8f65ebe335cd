package cache

import (
	"context"
	"testing"
	"time"
)

func TestLocalSetGetDel(t *testing.T) {
	c := NewLocal()
	defer c.Close()
	ctx := context.Background()

	if _, ok, _ := c.Get(ctx, "user_exists:user1"); ok {
		t.Fatal("empty cache reported a hit")
	}

	if err := c.Set(ctx, "user_exists:user1", "y", time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	v, ok, err := c.Get(ctx, "user_exists:user1")
	if err != nil || !ok || v != "y" {
		t.Fatalf("Get() = %q, %t, %v", v, ok, err)
	}

	if err := c.Del(ctx, "user_exists:user1"); err != nil {
		t.Fatalf("Del() failed: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "user_exists:user1"); ok {
		t.Error("deleted key still present")
	}
}

func TestLocalExpiry(t *testing.T) {
	c := NewLocal()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", -time.Second); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expired key reported as present")
	}
}

func TestLocalCloseIsIdempotent(t *testing.T) {
	c := NewLocal()
	c.Close()
	c.Close()
}
