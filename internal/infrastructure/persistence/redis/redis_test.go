package redis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"prompt-deck-api/internal/domain/entity"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewClientFromRedis(rdb), mr
}

func TestHealthCheck(t *testing.T) {
	c, mr := newTestClient(t)
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	mr.Close()
	if err := c.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error after server closed")
	}
}

func TestCacheGetOrLoadSafe(t *testing.T) {
	c, mr := newTestClient(t)
	cache := NewCache(c, "img:")
	ctx := context.Background()

	var loads int32
	loader := func(context.Context) ([]byte, bool, error) {
		atomic.AddInt32(&loads, 1)
		return []byte("data:image/png;base64,AAA"), true, nil
	}

	val, hit, err := cache.GetOrLoadSafe(ctx, "k1", time.Hour, loader)
	if err != nil || hit || string(val) != "data:image/png;base64,AAA" {
		t.Fatalf("first load: val=%q hit=%v err=%v", val, hit, err)
	}
	if !mr.Exists("img:k1") {
		t.Fatal("value not stored under prefixed key")
	}

	val, hit, err = cache.GetOrLoadSafe(ctx, "k1", time.Hour, loader)
	if err != nil || !hit || string(val) != "data:image/png;base64,AAA" {
		t.Fatalf("second load: val=%q hit=%v err=%v", val, hit, err)
	}
	if loads != 1 {
		t.Fatalf("loader called %d times", loads)
	}
}

func TestCacheSkipsUncacheableResults(t *testing.T) {
	c, mr := newTestClient(t)
	cache := NewCache(c, "img:")

	val, hit, err := cache.GetOrLoadSafe(context.Background(), "k2", time.Hour, func(context.Context) ([]byte, bool, error) {
		return []byte("fallback"), false, nil
	})
	if err != nil || hit || string(val) != "fallback" {
		t.Fatalf("val=%q hit=%v err=%v", val, hit, err)
	}
	if mr.Exists("img:k2") {
		t.Fatal("uncacheable result must not be stored")
	}
}

func TestCacheCollapsesConcurrentLoads(t *testing.T) {
	c, _ := newTestClient(t)
	cache := NewCache(c, "")

	var loads int32
	release := make(chan struct{})
	loader := func(context.Context) ([]byte, bool, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return []byte("v"), true, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := cache.GetOrLoadSafe(context.Background(), "hot", time.Minute, loader); err != nil {
				t.Errorf("GetOrLoadSafe: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&loads); n < 1 || n > 8 {
		t.Fatalf("unexpected load count %d", n)
	}
}

func TestCacheLoaderError(t *testing.T) {
	c, _ := newTestClient(t)
	cache := NewCache(c, "")
	boom := errors.New("boom")

	_, _, err := cache.GetOrLoadSafe(context.Background(), "k", time.Minute, func(context.Context) ([]byte, bool, error) {
		return nil, false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestRateLimiterAllow(t *testing.T) {
	c, _ := newTestClient(t)
	l := NewRateLimiter(c)
	ctx := context.Background()
	key := BuildRateLimitKey("ws-1", "generate")

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, key, 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("request %d: ok=%v err=%v", i, ok, err)
		}
	}
	ok, err := l.Allow(ctx, key, 3, time.Minute)
	if err != nil || ok {
		t.Fatalf("fourth request should be limited: ok=%v err=%v", ok, err)
	}

	if err := l.Reset(ctx, key); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if ok, _ := l.Allow(ctx, key, 3, time.Minute); !ok {
		t.Fatal("reset should clear the window")
	}
}

func TestIdentityRepository(t *testing.T) {
	c, _ := newTestClient(t)
	repo := NewIdentityRepository(c, "deck:identity:")
	ctx := context.Background()

	id := entity.NewIdentity("alice", "pragyanai.com", "1990-01-01")
	id.PasswordHash = "hash"
	if err := repo.Create(ctx, id); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, id); !errors.Is(err, entity.ErrDuplicateUsername) {
		t.Fatalf("duplicate create err = %v", err)
	}

	got, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if got.Address != "alice.pragyanai.com" || got.PasswordHash != "hash" || got.DOB != "1990-01-01" {
		t.Fatalf("unexpected identity %+v", got)
	}
	if !got.RegisteredAt.Equal(id.RegisteredAt) {
		t.Fatalf("registered_at = %v, want %v", got.RegisteredAt, id.RegisteredAt)
	}

	if _, err := repo.GetByUsername(ctx, "bob"); !errors.Is(err, entity.ErrIdentityNotFound) {
		t.Fatalf("missing identity err = %v", err)
	}
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
