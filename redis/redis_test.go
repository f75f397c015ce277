package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/zoobzio/cell"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get endpoint: %v", err)
	}

	return redis.NewClient(&redis.Options{
		Addr: endpoint,
	})
}

func TestStore_MissingKey(t *testing.T) {
	client := setupRedis(t)
	s := New(client)

	_, found, err := s.Get(context.Background(), "1:absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("expected missing key")
	}
}

func TestStore_SetGetOverwrite(t *testing.T) {
	ctx := context.Background()
	client := setupRedis(t)
	s := New(client)

	if err := s.Set(ctx, "1:k", "first"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "1:k", "second"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, found, err := s.Get(ctx, "1:k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("expected key to exist")
	}
	if v != "second" {
		t.Errorf("expected second, got %q", v)
	}
}

func TestStore_TTLExpiresKeys(t *testing.T) {
	ctx := context.Background()
	client := setupRedis(t)
	s := New(client, WithTTL(time.Second))

	if err := s.Set(ctx, "1:ttl", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_, found, err := s.Get(ctx, "1:ttl")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !found {
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	t.Error("expected key to expire")
}

func TestStore_BacksACoordinator(t *testing.T) {
	ctx := context.Background()
	client := setupRedis(t)
	s := New(client)
	co := cell.NewCoordinator(s)

	c := cell.New("hello")
	err := cell.Save(ctx, co, c, "greeting", cell.SaveOptions[string]{})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	fresh := cell.New("")
	err = cell.Load(ctx, cell.NewCoordinator(s), fresh, "greeting", cell.LoadOptions[string]{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v, _ := fresh.Value(); v != "hello" {
		t.Errorf("expected hello, got %q", v)
	}
}
