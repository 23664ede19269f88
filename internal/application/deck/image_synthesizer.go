package deck

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"prompt-deck-api/pkg/logger"
	"prompt-deck-api/pkg/metrics"
)

// ImageSynthesizer 为视觉提示生成背景图，永不返回错误
// 失败时返回固定的兜底图片地址
type ImageSynthesizer interface {
	SynthesizeImage(ctx context.Context, visualPrompt string) string
}

// ImageGenerator 远端图片生成
type ImageGenerator interface {
	Generate(ctx context.Context, visualPrompt string) (string, error)
}

// ImageCache 图片结果缓存，cacheable 为 false 的结果不写入
type ImageCache interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration,
		loader func(ctx context.Context) ([]byte, bool, error)) ([]byte, bool, error)
}

const (
	outcomeSuccess  = "success"
	outcomeFallback = "fallback"
	outcomeCacheHit = "cache_hit"
)

// FallbackSynthesizer 失败降级为兜底图片的 ImageSynthesizer
type FallbackSynthesizer struct {
	gen         ImageGenerator
	cache       ImageCache
	fallbackURL string
	timeout     time.Duration
	cacheTTL    time.Duration
}

var _ ImageSynthesizer = (*FallbackSynthesizer)(nil)

// SynthesizerOption 可选配置
type SynthesizerOption func(*FallbackSynthesizer)

// WithCache 启用结果缓存
func WithCache(cache ImageCache, ttl time.Duration) SynthesizerOption {
	return func(s *FallbackSynthesizer) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithTimeout 单次生成超时，超时同样降级
func WithTimeout(d time.Duration) SynthesizerOption {
	return func(s *FallbackSynthesizer) {
		s.timeout = d
	}
}

// NewFallbackSynthesizer 创建 FallbackSynthesizer
func NewFallbackSynthesizer(gen ImageGenerator, fallbackURL string, opts ...SynthesizerOption) *FallbackSynthesizer {
	s := &FallbackSynthesizer{gen: gen, fallbackURL: fallbackURL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FallbackURL 返回兜底图片地址
func (s *FallbackSynthesizer) FallbackURL() string {
	return s.fallbackURL
}

func (s *FallbackSynthesizer) SynthesizeImage(ctx context.Context, visualPrompt string) string {
	start := time.Now()
	defer func() { metrics.ImageSynthesisDuration.Observe(time.Since(start).Seconds()) }()

	if s.cache == nil {
		img, ok := s.generate(ctx, visualPrompt)
		if !ok {
			metrics.ImageSynthesisTotal.WithLabelValues(outcomeFallback).Inc()
			return s.fallbackURL
		}
		metrics.ImageSynthesisTotal.WithLabelValues(outcomeSuccess).Inc()
		return img
	}

	val, hit, err := s.cache.GetOrLoadSafe(ctx, promptKey(visualPrompt), s.cacheTTL,
		func(ctx context.Context) ([]byte, bool, error) {
			img, ok := s.generate(ctx, visualPrompt)
			if !ok {
				return []byte(s.fallbackURL), false, nil
			}
			return []byte(img), true, nil
		})
	switch {
	case err != nil || len(val) == 0:
		if err != nil {
			logger.Warn(ctx, "image cache failed, using fallback", "error", err.Error())
		}
		metrics.ImageSynthesisTotal.WithLabelValues(outcomeFallback).Inc()
		return s.fallbackURL
	case hit:
		metrics.ImageSynthesisTotal.WithLabelValues(outcomeCacheHit).Inc()
	case string(val) == s.fallbackURL:
		metrics.ImageSynthesisTotal.WithLabelValues(outcomeFallback).Inc()
	default:
		metrics.ImageSynthesisTotal.WithLabelValues(outcomeSuccess).Inc()
	}
	return string(val)
}

// generate 调用远端生成，失败只记日志
func (s *FallbackSynthesizer) generate(ctx context.Context, visualPrompt string) (string, bool) {
	if s.gen == nil {
		return "", false
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	img, err := s.gen.Generate(ctx, visualPrompt)
	if err != nil {
		logger.Warn(ctx, "image synthesis degraded to fallback", "error", err.Error())
		return "", false
	}
	if strings.TrimSpace(img) == "" {
		return "", false
	}
	return img, true
}

func promptKey(visualPrompt string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(visualPrompt)))
	return hex.EncodeToString(sum[:])
}
