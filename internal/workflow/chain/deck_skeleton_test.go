package chain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	wfmodel "prompt-deck-api/internal/workflow/model"
)

type fakeChatModel struct {
	mu       sync.Mutex
	errs     []error
	reply    string
	calls    int
	lastMsgs []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, in []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastMsgs = in
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

type fakeFactory struct {
	m    model.BaseChatModel
	err  error
	name string
}

func (f *fakeFactory) Get(_ context.Context, name string) (model.BaseChatModel, error) {
	f.name = name
	if f.err != nil {
		return nil, f.err
	}
	return f.m, nil
}

func TestDeckSkeletonChainInvoke(t *testing.T) {
	m := &fakeChatModel{reply: `{"title":"Mars","slides":[]}`}
	f := &fakeFactory{m: m}
	c := NewDeckSkeletonChain(f, nil)

	out, err := c.Invoke(context.Background(), &wfmodel.DeckSkeletonInput{Topic: " Mars colonization ", SlideCount: 5, Provider: "gemini"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if out.Content != m.reply {
		t.Fatalf("content = %q", out.Content)
	}
	if m.calls != 1 {
		t.Fatalf("calls = %d, want exactly one attempt", m.calls)
	}
	if f.name != "gemini" {
		t.Fatalf("factory provider = %q", f.name)
	}
	if len(m.lastMsgs) != 2 || m.lastMsgs[1].Content != "Topic: Mars colonization" {
		t.Fatalf("unexpected prompt messages: %+v", m.lastMsgs)
	}
	if !strings.Contains(m.lastMsgs[0].Content, "exactly 5 slide objects") {
		t.Fatalf("system prompt missing slide count: %q", m.lastMsgs[0].Content)
	}
}

func TestDeckSkeletonChainFallsBackWhenResponseFormatRejected(t *testing.T) {
	m := &fakeChatModel{
		errs:  []error{errors.New("400 Bad Request: Unknown parameter: 'response_format'")},
		reply: `{"title":"ok"}`,
	}
	c := NewDeckSkeletonChain(&fakeFactory{m: m}, nil)

	out, err := c.Invoke(context.Background(), &wfmodel.DeckSkeletonInput{Topic: "x", SlideCount: 5})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if out.Content != `{"title":"ok"}` || m.calls != 2 {
		t.Fatalf("content=%q calls=%d", out.Content, m.calls)
	}
}

func TestDeckSkeletonChainDoesNotRetryTransportErrors(t *testing.T) {
	m := &fakeChatModel{errs: []error{errors.New("dial tcp: connection refused")}, reply: "{}"}
	c := NewDeckSkeletonChain(&fakeFactory{m: m}, nil)

	if _, err := c.Invoke(context.Background(), &wfmodel.DeckSkeletonInput{Topic: "x", SlideCount: 5}); err == nil {
		t.Fatal("expected error")
	}
	if m.calls != 1 {
		t.Fatalf("calls = %d, want 1", m.calls)
	}
}

func TestDeckSkeletonChainInputErrors(t *testing.T) {
	c := NewDeckSkeletonChain(&fakeFactory{m: &fakeChatModel{}}, nil)
	if _, err := c.Invoke(context.Background(), nil); err == nil {
		t.Error("nil input should fail")
	}
	if _, err := c.Invoke(context.Background(), &wfmodel.DeckSkeletonInput{Topic: "  ", SlideCount: 5}); err == nil {
		t.Error("blank topic should fail")
	}

	factoryErr := errors.New("provider not configured")
	c = NewDeckSkeletonChain(&fakeFactory{err: factoryErr}, nil)
	if _, err := c.Invoke(context.Background(), &wfmodel.DeckSkeletonInput{Topic: "x", SlideCount: 5}); err == nil || !strings.Contains(err.Error(), factoryErr.Error()) {
		t.Errorf("factory error not propagated: %v", err)
	}

	var nilChain *DeckSkeletonChain
	if _, err := nilChain.Invoke(context.Background(), &wfmodel.DeckSkeletonInput{}); err == nil {
		t.Error("nil chain should fail")
	}
}

func TestDeckSkeletonJSONSchemaPinsCount(t *testing.T) {
	s := deckSkeletonJSONSchema(7)
	slides := s["properties"].(map[string]any)["slides"].(map[string]any)
	if slides["minItems"] != 7 || slides["maxItems"] != 7 {
		t.Fatalf("slides bounds = %v/%v", slides["minItems"], slides["maxItems"])
	}
}
