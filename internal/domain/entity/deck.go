// Package entity 定义领域实体
package entity

import (
	"fmt"
	"strings"
	"time"
)

// DeckRequest 生成请求
type DeckRequest struct {
	Topic      string `json:"topic"`
	SlideCount int    `json:"slide_count"`
}

// Normalize 返回去除首尾空白后的请求
func (r DeckRequest) Normalize() DeckRequest {
	r.Topic = strings.TrimSpace(r.Topic)
	return r
}

// Validate 校验主题非空且页数落在 [min, max]
func (r DeckRequest) Validate(min, max int) error {
	if strings.TrimSpace(r.Topic) == "" {
		return fmt.Errorf("%w: topic is empty", ErrInvalidRequest)
	}
	if r.SlideCount < min || r.SlideCount > max {
		return fmt.Errorf("%w: slide count %d out of range [%d, %d]", ErrInvalidRequest, r.SlideCount, min, max)
	}
	return nil
}

// SlideStub 单页骨架
type SlideStub struct {
	Title        string   `json:"title"`
	Content      []string `json:"content"`
	VisualPrompt string   `json:"visualPrompt"`
}

// DeckSkeleton 不含图片的幻灯片结构
// 创建后不可修改，编排过程只读
type DeckSkeleton struct {
	Title  string      `json:"title"`
	Slides []SlideStub `json:"slides"`
}

// Validate 校验骨架完整性与页数
func (s *DeckSkeleton) Validate(want int) error {
	if s == nil {
		return fmt.Errorf("%w: empty skeleton", ErrContentGeneration)
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: missing deck title", ErrContentGeneration)
	}
	if len(s.Slides) != want {
		return fmt.Errorf("%w: got %d slides, want %d", ErrContentGeneration, len(s.Slides), want)
	}
	for i, st := range s.Slides {
		if strings.TrimSpace(st.Title) == "" {
			return fmt.Errorf("%w: slide %d missing title", ErrContentGeneration, i+1)
		}
		if len(st.Content) == 0 {
			return fmt.Errorf("%w: slide %d has no content", ErrContentGeneration, i+1)
		}
		if strings.TrimSpace(st.VisualPrompt) == "" {
			return fmt.Errorf("%w: slide %d missing visual prompt", ErrContentGeneration, i+1)
		}
	}
	return nil
}

// Slide 完成的单页
type Slide struct {
	Title           string   `json:"title"`
	Content         []string `json:"content"`
	VisualPrompt    string   `json:"visual_prompt"`
	BackgroundImage string   `json:"background_image"`
}

// Deck 完整幻灯片
type Deck struct {
	Title       string    `json:"title"`
	Topic       string    `json:"topic"`
	Slides      []Slide   `json:"slides"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Len 返回页数，nil 安全
func (d *Deck) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Slides)
}

// Clone 深拷贝，对外读取一律返回副本
func (d *Deck) Clone() *Deck {
	if d == nil {
		return nil
	}
	cp := *d
	cp.Slides = make([]Slide, len(d.Slides))
	for i, s := range d.Slides {
		s.Content = append([]string(nil), s.Content...)
		cp.Slides[i] = s
	}
	return &cp
}
