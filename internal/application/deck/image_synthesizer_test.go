package deck

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	infraredis "prompt-deck-api/internal/infrastructure/persistence/redis"
)

type slowImages struct{}

func (slowImages) Generate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestFallbackSynthesizerSuccessAndFailure(t *testing.T) {
	gen := &fakeImages{fail: map[string]bool{"bad": true}}
	s := NewFallbackSynthesizer(gen, testFallback)

	if got := s.SynthesizeImage(context.Background(), "good"); got != "data:image/png;base64,good" {
		t.Fatalf("success = %q", got)
	}
	if got := s.SynthesizeImage(context.Background(), "bad"); got != testFallback {
		t.Fatalf("failure should yield fallback, got %q", got)
	}
	if s.FallbackURL() != testFallback {
		t.Fatalf("FallbackURL = %q", s.FallbackURL())
	}
}

func TestFallbackSynthesizerTimeoutDegrades(t *testing.T) {
	s := NewFallbackSynthesizer(slowImages{}, testFallback, WithTimeout(10*time.Millisecond))
	if got := s.SynthesizeImage(context.Background(), "x"); got != testFallback {
		t.Fatalf("timeout should yield fallback, got %q", got)
	}
}

func TestFallbackSynthesizerNilGenerator(t *testing.T) {
	s := NewFallbackSynthesizer(nil, testFallback)
	if got := s.SynthesizeImage(context.Background(), "x"); got != testFallback {
		t.Fatalf("got %q", got)
	}
}

func TestFallbackSynthesizerCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cache := infraredis.NewCache(infraredis.NewClientFromRedis(rdb), "deck:image:")

	gen := &fakeImages{fail: map[string]bool{"bad": true}}
	s := NewFallbackSynthesizer(gen, testFallback, WithCache(cache, time.Hour))
	ctx := context.Background()

	first := s.SynthesizeImage(ctx, "good")
	second := s.SynthesizeImage(ctx, "good")
	if first != "data:image/png;base64,good" || second != first {
		t.Fatalf("first=%q second=%q", first, second)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("generator called %d times, want 1", len(gen.prompts))
	}

	// 兜底结果不缓存，下次仍会重新生成
	if got := s.SynthesizeImage(ctx, "bad"); got != testFallback {
		t.Fatalf("got %q", got)
	}
	if got := s.SynthesizeImage(ctx, "bad"); got != testFallback {
		t.Fatalf("got %q", got)
	}
	if len(gen.prompts) != 3 {
		t.Fatalf("fallback must not be cached; generator calls = %d", len(gen.prompts))
	}
	if mr.Exists("deck:image:" + promptKey("bad")) {
		t.Fatal("fallback stored in cache")
	}
}
