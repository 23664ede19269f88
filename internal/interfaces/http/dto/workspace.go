package dto

import (
	"time"

	"prompt-deck-api/internal/domain/entity"
)

// SlideDTO 单页
type SlideDTO struct {
	Index           int      `json:"index"`
	Title           string   `json:"title"`
	Content         []string `json:"content"`
	VisualPrompt    string   `json:"visual_prompt"`
	BackgroundImage string   `json:"background_image"`
}

// DeckDTO 幻灯片
type DeckDTO struct {
	Title       string     `json:"title"`
	Topic       string     `json:"topic"`
	SlideCount  int        `json:"slide_count"`
	GeneratedAt time.Time  `json:"generated_at"`
	Slides      []SlideDTO `json:"slides"`
}

// ViewerStateDTO 查看器状态
type ViewerStateDTO struct {
	Phase             string    `json:"phase"`
	CurrentSlideIndex int       `json:"current_slide_index"`
	IsFullscreen      bool      `json:"is_fullscreen"`
	ProgressMessage   string    `json:"progress_message,omitempty"`
	LastFailure       string    `json:"last_failure,omitempty"`
	Generation        uint64    `json:"generation"`
	CurrentSlide      *SlideDTO `json:"current_slide,omitempty"`
	Deck              *DeckDTO  `json:"deck,omitempty"`
}

// WorkspaceResponse 工作区
type WorkspaceResponse struct {
	ID           string          `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	Unlocked     bool            `json:"unlocked"`
	SlideCeiling int             `json:"slide_ceiling"`
	HasIdentity  bool            `json:"has_identity"`
	State        *ViewerStateDTO `json:"state"`
}

// GenerateRequest 生成请求
type GenerateRequest struct {
	Topic      string `json:"topic" binding:"required"`
	SlideCount int    `json:"slide_count" binding:"required"`
}

// ToDeckRequest 转换为领域请求
func (r *GenerateRequest) ToDeckRequest() entity.DeckRequest {
	return entity.DeckRequest{Topic: r.Topic, SlideCount: r.SlideCount}
}

// GenerateResponse 已受理的生成
type GenerateResponse struct {
	Generation uint64          `json:"generation"`
	State      *ViewerStateDTO `json:"state"`
}

// UnlockResponse 解锁结果
type UnlockResponse struct {
	Unlocked     bool `json:"unlocked"`
	SlideCeiling int  `json:"slide_ceiling"`
}

func toSlideDTO(i int, s entity.Slide) SlideDTO {
	return SlideDTO{
		Index:           i,
		Title:           s.Title,
		Content:         s.Content,
		VisualPrompt:    s.VisualPrompt,
		BackgroundImage: s.BackgroundImage,
	}
}

// ToDeckDTO 转换幻灯片
func ToDeckDTO(d *entity.Deck) *DeckDTO {
	if d == nil {
		return nil
	}
	out := &DeckDTO{
		Title:       d.Title,
		Topic:       d.Topic,
		SlideCount:  d.Len(),
		GeneratedAt: d.GeneratedAt,
		Slides:      make([]SlideDTO, 0, d.Len()),
	}
	for i, s := range d.Slides {
		out.Slides = append(out.Slides, toSlideDTO(i, s))
	}
	return out
}

// ToViewerStateDTO 转换查看器状态
func ToViewerStateDTO(s entity.ViewerState) *ViewerStateDTO {
	out := &ViewerStateDTO{
		Phase:             string(s.Phase),
		CurrentSlideIndex: s.CurrentSlideIndex,
		IsFullscreen:      s.IsFullscreen,
		ProgressMessage:   s.ProgressMessage,
		LastFailure:       string(s.LastFailure),
		Generation:        s.Generation,
		Deck:              ToDeckDTO(s.Deck),
	}
	if cur := s.CurrentSlide(); cur != nil {
		slide := toSlideDTO(s.CurrentSlideIndex, *cur)
		out.CurrentSlide = &slide
	}
	return out
}
