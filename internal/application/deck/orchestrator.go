package deck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"prompt-deck-api/internal/domain/entity"
	"prompt-deck-api/pkg/logger"
	"prompt-deck-api/pkg/metrics"
	"prompt-deck-api/pkg/tracer"
)

// State 编排阶段
type State string

const (
	StateIdle            State = "idle"
	StateSkeletonPending State = "skeleton_pending"
	StateImagePending    State = "image_pending"
	StateAssembled       State = "assembled"
	StateFailed          State = "failed"
)

// ArchitectingMessage 骨架生成阶段的进度提示
const ArchitectingMessage = "Architecting slide deck structure..."

// SlideProgressMessage 第 i 页（从 0 开始）配图阶段的进度提示
func SlideProgressMessage(i, n int) string {
	return fmt.Sprintf("Designing Slide %d of %d", i+1, n)
}

// Hooks 编排过程的观察回调，均可为空
type Hooks struct {
	// Progress 进度提示，严格按顺序触发
	Progress func(msg string)
	// StateChange 阶段变化；slide 仅在 image_pending 阶段有意义
	StateChange func(state State, slide int)
}

func (h Hooks) progress(msg string) {
	if h.Progress != nil {
		h.Progress(msg)
	}
}

func (h Hooks) state(s State, slide int) {
	if h.StateChange != nil {
		h.StateChange(s, slide)
	}
}

// Limits 页数上下限
type Limits struct {
	MinSlides int
	MaxSlides int
}

// Orchestrator 串联骨架生成、逐页配图与组装
type Orchestrator struct {
	content ContentGenerator
	images  ImageSynthesizer
	limits  Limits
	now     func() time.Time
}

// NewOrchestrator 创建编排器
func NewOrchestrator(content ContentGenerator, images ImageSynthesizer, limits Limits) *Orchestrator {
	return &Orchestrator{
		content: content,
		images:  images,
		limits:  limits,
		now:     time.Now,
	}
}

// Generate 执行一次完整生成
//
// 参数不合法时直接返回 entity.ErrInvalidRequest，不触发任何回调与远端调用。
// 骨架生成失败返回 entity.ErrContentGeneration；ctx 取消返回 entity.ErrGenerationCancelled。
// 配图逐页串行，单页失败降级为兜底图片，不会导致整体失败。
func (o *Orchestrator) Generate(ctx context.Context, req entity.DeckRequest, hooks Hooks) (deck *entity.Deck, err error) {
	req = req.Normalize()
	if err := req.Validate(o.limits.MinSlides, o.limits.MaxSlides); err != nil {
		metrics.DeckGenerationTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "deck.Generate")
	span.SetAttributes(
		attribute.Int("deck.slide_count", req.SlideCount),
		attribute.Int("deck.topic_length", len(req.Topic)),
	)
	start := o.now()
	metrics.DeckSlideCount.Observe(float64(req.SlideCount))

	defer func() {
		status := "success"
		switch {
		case errors.Is(err, entity.ErrGenerationCancelled):
			status = "cancelled"
		case err != nil:
			status = "failed"
		}
		metrics.DeckGenerationTotal.WithLabelValues(status).Inc()
		metrics.DeckGenerationDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
		tracer.End(span, err)
	}()

	hooks.state(StateSkeletonPending, -1)
	hooks.progress(ArchitectingMessage)

	skel, err := o.content.GenerateSkeleton(ctx, req.Topic, req.SlideCount)
	if err != nil {
		hooks.state(StateFailed, -1)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrGenerationCancelled, ctx.Err())
		}
		logger.Warn(ctx, "deck skeleton generation failed", "error", err.Error())
		if !errors.Is(err, entity.ErrContentGeneration) {
			err = fmt.Errorf("%w: %v", entity.ErrContentGeneration, err)
		}
		return nil, err
	}
	if err := skel.Validate(req.SlideCount); err != nil {
		hooks.state(StateFailed, -1)
		logger.Warn(ctx, "deck skeleton rejected", "error", err.Error())
		return nil, err
	}

	n := len(skel.Slides)
	images := make([]string, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			hooks.state(StateFailed, i)
			return nil, fmt.Errorf("%w: %v", entity.ErrGenerationCancelled, err)
		}
		hooks.state(StateImagePending, i)
		hooks.progress(SlideProgressMessage(i, n))
		images[i] = o.images.SynthesizeImage(ctx, skel.Slides[i].VisualPrompt)
	}

	deck, err = Assemble(skel, images)
	if err != nil {
		hooks.state(StateFailed, -1)
		return nil, err
	}
	deck.Topic = req.Topic
	deck.GeneratedAt = o.now().UTC()

	hooks.state(StateAssembled, -1)
	logger.Info(ctx, "deck assembled",
		"slides", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return deck, nil
}
