package entity

import (
	"errors"
	"testing"
)

func stubs(n int) []SlideStub {
	out := make([]SlideStub, n)
	for i := range out {
		out[i] = SlideStub{Title: "t", Content: []string{"a"}, VisualPrompt: "p"}
	}
	return out
}

func TestDeckRequestValidate(t *testing.T) {
	cases := []struct {
		name string
		req  DeckRequest
		ok   bool
	}{
		{"valid lower bound", DeckRequest{Topic: "Mars", SlideCount: 5}, true},
		{"valid upper bound", DeckRequest{Topic: "Mars", SlideCount: 20}, true},
		{"blank topic", DeckRequest{Topic: "   ", SlideCount: 5}, false},
		{"below min", DeckRequest{Topic: "Mars", SlideCount: 4}, false},
		{"above max", DeckRequest{Topic: "Mars", SlideCount: 21}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate(5, 20)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("want ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestSkeletonValidate(t *testing.T) {
	good := &DeckSkeleton{Title: "Deck", Slides: stubs(5)}
	if err := good.Validate(5); err != nil {
		t.Fatalf("valid skeleton rejected: %v", err)
	}
	if err := good.Validate(6); !errors.Is(err, ErrContentGeneration) {
		t.Fatalf("count mismatch should be ErrContentGeneration, got %v", err)
	}

	noBullets := &DeckSkeleton{Title: "Deck", Slides: stubs(2)}
	noBullets.Slides[1].Content = nil
	if err := noBullets.Validate(2); !errors.Is(err, ErrContentGeneration) {
		t.Fatalf("empty content should fail, got %v", err)
	}

	var nilSkel *DeckSkeleton
	if err := nilSkel.Validate(5); !errors.Is(err, ErrContentGeneration) {
		t.Fatalf("nil skeleton should fail, got %v", err)
	}
}

func TestDeckCloneIsDeep(t *testing.T) {
	d := &Deck{Title: "x", Slides: []Slide{{Title: "a", Content: []string{"1"}}}}
	cp := d.Clone()
	cp.Slides[0].Content[0] = "changed"
	cp.Slides[0].Title = "changed"
	if d.Slides[0].Content[0] != "1" || d.Slides[0].Title != "a" {
		t.Fatal("clone shares memory with original")
	}
	var nilDeck *Deck
	if nilDeck.Clone() != nil || nilDeck.Len() != 0 {
		t.Fatal("nil deck helpers should be nil safe")
	}
}
