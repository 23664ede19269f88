package prompt

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestDeckSkeletonTemplateFormats(t *testing.T) {
	r := NewRegistry()
	tpl, err := r.ChatTemplate(PromptDeckSkeletonV1)
	if err != nil {
		t.Fatalf("ChatTemplate: %v", err)
	}

	msgs, err := tpl.Format(context.Background(), map[string]any{
		"topic":       "Mars colonization",
		"slide_count": 7,
	})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("messages = %d", len(msgs))
	}
	if msgs[0].Role != schema.System || !strings.Contains(msgs[0].Content, "exactly 7 slide objects") {
		t.Errorf("system message = %q", msgs[0].Content)
	}
	if msgs[1].Role != schema.User || msgs[1].Content != "Topic: Mars colonization" {
		t.Errorf("user message = %q", msgs[1].Content)
	}

	again, err := r.ChatTemplate(PromptDeckSkeletonV1)
	if err != nil || again != tpl {
		t.Errorf("template should be cached")
	}
}

func TestUnknownPrompt(t *testing.T) {
	if _, err := NewRegistry().ChatTemplate("nope"); err == nil {
		t.Fatal("expected error for unknown prompt id")
	}
	var nilReg *Registry
	if _, err := nilReg.ChatTemplate(PromptDeckSkeletonV1); err == nil {
		t.Fatal("expected error for nil registry")
	}
}
