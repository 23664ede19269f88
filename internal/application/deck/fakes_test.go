package deck

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/schema"

	"prompt-deck-api/internal/domain/entity"
	wfmodel "prompt-deck-api/internal/workflow/model"
)

const testFallback = "https://fallback.example/img.jpg"

func makeSkeleton(n int) *entity.DeckSkeleton {
	s := &entity.DeckSkeleton{Title: "Mars Deck"}
	for i := 0; i < n; i++ {
		s.Slides = append(s.Slides, entity.SlideStub{
			Title:        fmt.Sprintf("Slide %d", i+1),
			Content:      []string{"point a", "point b"},
			VisualPrompt: fmt.Sprintf("prompt-%d", i),
		})
	}
	return s
}

type fakeContent struct {
	mu    sync.Mutex
	skel  *entity.DeckSkeleton
	err   error
	calls int
	block chan struct{}
}

func (f *fakeContent) GenerateSkeleton(ctx context.Context, _ string, _ int) (*entity.DeckSkeleton, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.skel, f.err
}

type fakeImages struct {
	mu      sync.Mutex
	prompts []string
	fail    map[string]bool
	onCall  func(i int)
}

func (f *fakeImages) Generate(_ context.Context, p string) (string, error) {
	f.mu.Lock()
	i := len(f.prompts)
	f.prompts = append(f.prompts, p)
	cb := f.onCall
	f.mu.Unlock()
	if cb != nil {
		cb(i)
	}
	if f.fail[p] {
		return "", errors.New("imagen 500")
	}
	return "data:image/png;base64," + p, nil
}

type fakeInvoker struct {
	reply string
	err   error
	in    *wfmodel.DeckSkeletonInput
}

func (f *fakeInvoker) Invoke(_ context.Context, in *wfmodel.DeckSkeletonInput) (*schema.Message, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}
