package viewer

import (
	"errors"
	"fmt"
	"testing"

	"prompt-deck-api/internal/domain/entity"
)

func testDeck(n int) *entity.Deck {
	d := &entity.Deck{Title: "Mars", Topic: "Mars colonization"}
	for i := 0; i < n; i++ {
		d.Slides = append(d.Slides, entity.Slide{
			Title:           fmt.Sprintf("Slide %d", i+1),
			Content:         []string{"a"},
			VisualPrompt:    "p",
			BackgroundImage: "img",
		})
	}
	return d
}

func viewing(t *testing.T, n int) *StateMachine {
	t.Helper()
	m := NewStateMachine()
	gen, err := m.Start("Mars colonization")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !m.Succeed(gen, testDeck(n)) {
		t.Fatal("Succeed rejected")
	}
	return m
}

func TestStartRejections(t *testing.T) {
	m := NewStateMachine()
	if _, err := m.Start("  "); !errors.Is(err, entity.ErrInvalidRequest) {
		t.Fatalf("blank topic: %v", err)
	}
	if m.Snapshot().Phase != entity.PhaseLanding {
		t.Fatal("blank topic must not change phase")
	}

	if _, err := m.Start("topic"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := m.Start("again"); !errors.Is(err, entity.ErrGenerationInFlight) {
		t.Fatalf("second Start: %v", err)
	}

	v := viewing(t, 5)
	if _, err := v.Start("topic"); !errors.Is(err, entity.ErrInvalidTransition) {
		t.Fatalf("Start from viewing: %v", err)
	}
}

func TestSucceedEntersViewingAtFirstSlide(t *testing.T) {
	m := viewing(t, 5)
	s := m.Snapshot()
	if s.Phase != entity.PhaseViewing || s.CurrentSlideIndex != 0 || s.IsFullscreen || s.Deck.Len() != 5 {
		t.Fatalf("state = %+v", s)
	}
	if s.CurrentSlide().Title != "Slide 1" {
		t.Fatalf("current slide = %+v", s.CurrentSlide())
	}
}

func TestNavigationClampsWithoutWraparound(t *testing.T) {
	m := viewing(t, 5)

	s, err := m.Prev()
	if err != nil || s.CurrentSlideIndex != 0 {
		t.Fatalf("Prev at first: idx=%d err=%v", s.CurrentSlideIndex, err)
	}
	for i := 0; i < 10; i++ {
		s, err = m.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
	}
	if s.CurrentSlideIndex != 4 {
		t.Fatalf("idx = %d, want 4", s.CurrentSlideIndex)
	}
	s, _ = m.Prev()
	if s.CurrentSlideIndex != 3 {
		t.Fatalf("idx = %d, want 3", s.CurrentSlideIndex)
	}
}

func TestFullscreenOnlyInViewing(t *testing.T) {
	m := NewStateMachine()
	if _, err := m.ToggleFullscreen(); !errors.Is(err, entity.ErrInvalidTransition) {
		t.Fatalf("toggle on landing: %v", err)
	}

	m = viewing(t, 5)
	s, _ := m.ToggleFullscreen()
	if !s.IsFullscreen {
		t.Fatal("expected fullscreen")
	}
	s, _ = m.Exit()
	if s.IsFullscreen || s.Phase != entity.PhaseLanding || s.Deck != nil || s.CurrentSlideIndex != 0 {
		t.Fatalf("after exit = %+v", s)
	}
	if s.LastFailure != entity.FailureNone {
		t.Fatalf("exit must not look like a failure: %q", s.LastFailure)
	}
}

func TestIllegalTransitionsLeaveStateUntouched(t *testing.T) {
	m := NewStateMachine()
	gen, _ := m.Start("topic")
	before := m.Snapshot()

	for name, op := range map[string]func() (entity.ViewerState, error){
		"next": m.Next, "prev": m.Prev, "exit": m.Exit, "fullscreen": m.ToggleFullscreen,
	} {
		if _, err := op(); !errors.Is(err, entity.ErrInvalidTransition) {
			t.Errorf("%s during generating: %v", name, err)
		}
	}
	after := m.Snapshot()
	if after.Phase != before.Phase || after.Generation != gen {
		t.Fatalf("state changed: %+v -> %+v", before, after)
	}
}

func TestFailReturnsToLandingWithKind(t *testing.T) {
	m := NewStateMachine()
	gen, _ := m.Start("topic")
	m.Progress(gen, "Architecting slide deck structure...")
	if m.Snapshot().ProgressMessage == "" {
		t.Fatal("progress not recorded")
	}
	if !m.Fail(gen, entity.FailureContentGeneration) {
		t.Fatal("Fail rejected")
	}
	s := m.Snapshot()
	if s.Phase != entity.PhaseLanding || s.LastFailure != entity.FailureContentGeneration || s.ProgressMessage != "" {
		t.Fatalf("state = %+v", s)
	}

	if _, err := m.Start("retry"); err != nil {
		t.Fatalf("restart after failure: %v", err)
	}
	if m.Snapshot().LastFailure != entity.FailureNone {
		t.Fatal("Start should clear last failure")
	}
}

func TestStaleCompletionsAreDropped(t *testing.T) {
	m := NewStateMachine()
	gen, _ := m.Start("topic")
	m.Reset()

	if m.Progress(gen, "late") || m.Succeed(gen, testDeck(5)) || m.Fail(gen, entity.FailureCancelled) {
		t.Fatal("stale generation accepted")
	}
	if s := m.Snapshot(); s.Phase != entity.PhaseLanding || s.Deck != nil {
		t.Fatalf("state = %+v", s)
	}

	next, _ := m.Start("topic")
	if next == gen {
		t.Fatal("generation number reused")
	}
	if m.Succeed(gen, testDeck(5)) {
		t.Fatal("old generation completed the new run")
	}
	if !m.Succeed(next, testDeck(5)) {
		t.Fatal("current generation rejected")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	m := viewing(t, 5)
	s := m.Snapshot()
	s.Deck.Slides[0].Title = "mutated"
	if m.Snapshot().Deck.Slides[0].Title != "Slide 1" {
		t.Fatal("snapshot shares deck with state machine")
	}
}

func TestSubscribeReceivesTransitions(t *testing.T) {
	m := NewStateMachine()
	ch, cancel := m.Subscribe(8)
	defer cancel()

	if s := <-ch; s.Phase != entity.PhaseLanding {
		t.Fatalf("initial = %+v", s)
	}
	gen, _ := m.Start("topic")
	m.Progress(gen, "working")
	m.Succeed(gen, testDeck(5))

	want := []entity.Phase{entity.PhaseGenerating, entity.PhaseGenerating, entity.PhaseViewing}
	for i, p := range want {
		if s := <-ch; s.Phase != p {
			t.Fatalf("event %d phase = %s, want %s", i, s.Phase, p)
		}
	}
}

func TestSubscribeSlowConsumerKeepsLatest(t *testing.T) {
	m := viewing(t, 5)
	ch, cancel := m.Subscribe(1)
	for i := 0; i < 3; i++ {
		_, _ = m.Next()
	}
	if s := <-ch; s.CurrentSlideIndex != 3 {
		t.Fatalf("latest idx = %d, want 3", s.CurrentSlideIndex)
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after cancel")
	}
	_, _ = m.Next()
}
