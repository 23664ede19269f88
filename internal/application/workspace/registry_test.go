package workspace

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"prompt-deck-api/internal/application/deck"
	"prompt-deck-api/internal/domain/entity"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestRegistryLifecycle(t *testing.T) {
	r := newTestRegistry(&fakeGenerator{})

	ws, err := r.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := r.Get(ws.ID)
	if err != nil || got != ws {
		t.Fatalf("Get: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("len = %d", r.Len())
	}

	if err := r.Close(ws.ID); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := r.Get(ws.ID); !errors.Is(err, entity.ErrWorkspaceNotFound) {
		t.Fatalf("Get after close: %v", err)
	}
	if err := r.Close(ws.ID); !errors.Is(err, entity.ErrWorkspaceNotFound) {
		t.Fatalf("double close: %v", err)
	}
	if _, err := ws.Generate(entity.DeckRequest{Topic: "x", SlideCount: 5}); !errors.Is(err, entity.ErrWorkspaceNotFound) {
		t.Fatalf("generate on closed workspace: %v", err)
	}
}

func TestRegistryLimit(t *testing.T) {
	r := NewRegistry(context.Background(), Deps{Generator: &fakeGenerator{}, Limits: deck.Limits{MinSlides: 5, MaxSlides: 20}, FreeMaxSlides: 10},
		Options{MaxWorkspaces: 1})
	if _, err := r.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := r.Create(); !errors.Is(err, entity.ErrWorkspaceLimit) {
		t.Fatalf("second Create: %v", err)
	}
}

func TestCloseCancelsInFlightGeneration(t *testing.T) {
	gen := blockingGenerator()
	r := newTestRegistry(gen)
	ws, _ := r.Create()

	if _, err := ws.Generate(entity.DeckRequest{Topic: "Mars", SlideCount: 5}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	<-gen.started
	if err := r.Close(ws.ID); err != nil {
		t.Fatalf("Close: %v", err)
	}
	ws.Wait()

	s := ws.State()
	if s.Phase != entity.PhaseLanding || s.LastFailure != entity.FailureCancelled {
		t.Fatalf("state = %+v", s)
	}
}

func TestSweepClosesIdleWorkspaces(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	gen := blockingGenerator()
	r := newTestRegistry(gen)
	r.now = clock.Now

	idle, _ := r.Create()
	busy, _ := r.Create()
	if _, err := busy.Generate(entity.DeckRequest{Topic: "Mars", SlideCount: 5}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	<-gen.started

	clock.Advance(30 * time.Minute)
	if n := r.Sweep(); n != 0 {
		t.Fatalf("swept %d before ttl", n)
	}

	clock.Advance(2 * time.Hour)
	if n := r.Sweep(); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if _, err := r.Get(idle.ID); !errors.Is(err, entity.ErrWorkspaceNotFound) {
		t.Fatal("idle workspace should be gone")
	}
	if _, err := r.Get(busy.ID); err != nil {
		t.Fatal("generating workspace must not be swept")
	}

	close(gen.release)
	busy.Wait()
}

func TestShutdownWaitsForGenerations(t *testing.T) {
	gen := blockingGenerator()
	r := newTestRegistry(gen)
	ws, _ := r.Create()
	if _, err := ws.Generate(entity.DeckRequest{Topic: "Mars", SlideCount: 5}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	<-gen.started

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if r.Len() != 0 || ws.State().Phase != entity.PhaseLanding {
		t.Fatalf("len=%d phase=%s", r.Len(), ws.State().Phase)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	r := NewRegistry(context.Background(), Deps{}, Options{IdleTTL: time.Millisecond, JanitorInterval: 5 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
