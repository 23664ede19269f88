// Package deck 实现幻灯片生成流水线：骨架生成、配图、组装与编排
package deck

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"prompt-deck-api/internal/domain/entity"
	wfmodel "prompt-deck-api/internal/workflow/model"
	wfnode "prompt-deck-api/internal/workflow/node"
)

// ContentGenerator 生成幻灯片骨架，单次调用，不重试
// 任何失败都以 entity.ErrContentGeneration 返回
type ContentGenerator interface {
	GenerateSkeleton(ctx context.Context, topic string, slideCount int) (*entity.DeckSkeleton, error)
}

// SkeletonInvoker 骨架工作流
type SkeletonInvoker interface {
	Invoke(ctx context.Context, in *wfmodel.DeckSkeletonInput) (*schema.Message, error)
}

// SkeletonGenerator 基于 LLM 工作流的 ContentGenerator
type SkeletonGenerator struct {
	chain    SkeletonInvoker
	provider string
	timeout  time.Duration
}

var _ ContentGenerator = (*SkeletonGenerator)(nil)

// NewSkeletonGenerator 创建骨架生成器，timeout 为 0 表示不设超时
func NewSkeletonGenerator(chain SkeletonInvoker, provider string, timeout time.Duration) *SkeletonGenerator {
	return &SkeletonGenerator{chain: chain, provider: provider, timeout: timeout}
}

func (g *SkeletonGenerator) GenerateSkeleton(ctx context.Context, topic string, slideCount int) (*entity.DeckSkeleton, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	msg, err := g.chain.Invoke(ctx, &wfmodel.DeckSkeletonInput{
		Topic:      topic,
		SlideCount: slideCount,
		Provider:   g.provider,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrContentGeneration, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: empty llm response", entity.ErrContentGeneration)
	}

	skel, err := ParseDeckSkeleton(msg.Content)
	if err != nil {
		return nil, err
	}
	if err := skel.Validate(slideCount); err != nil {
		return nil, err
	}
	return skel, nil
}

// ParseDeckSkeleton 从模型输出中解析骨架
func ParseDeckSkeleton(raw string) (*entity.DeckSkeleton, error) {
	var out wfmodel.DeckSkeletonOutput
	if err := wfnode.DecodeJSONObject(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrContentGeneration, err)
	}

	skel := &entity.DeckSkeleton{
		Title:  strings.TrimSpace(out.Title),
		Slides: make([]entity.SlideStub, 0, len(out.Slides)),
	}
	for _, s := range out.Slides {
		content := make([]string, 0, len(s.Content))
		for _, c := range s.Content {
			if c = strings.TrimSpace(c); c != "" {
				content = append(content, c)
			}
		}
		skel.Slides = append(skel.Slides, entity.SlideStub{
			Title:        strings.TrimSpace(s.Title),
			Content:      content,
			VisualPrompt: strings.TrimSpace(s.VisualPrompt),
		})
	}
	return skel, nil
}
