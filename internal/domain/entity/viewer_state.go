package entity

// Phase 查看器阶段
type Phase string

const (
	PhaseLanding    Phase = "landing"
	PhaseGenerating Phase = "generating"
	PhaseViewing    Phase = "viewing"
)

// FailureKind 最近一次生成失败的粗粒度类型
type FailureKind string

const (
	FailureNone              FailureKind = ""
	FailureContentGeneration FailureKind = "content_generation_failed"
	FailureCancelled         FailureKind = "cancelled"
)

// ViewerState 查看器状态快照
// CurrentSlideIndex 仅在 viewing 阶段有效；IsFullscreen 只会在 viewing 阶段为 true
type ViewerState struct {
	Phase             Phase       `json:"phase"`
	CurrentSlideIndex int         `json:"current_slide_index"`
	IsFullscreen      bool        `json:"is_fullscreen"`
	ProgressMessage   string      `json:"progress_message,omitempty"`
	Deck              *Deck       `json:"deck,omitempty"`
	LastFailure       FailureKind `json:"last_failure,omitempty"`
	Generation        uint64      `json:"generation"`
}

// CurrentSlide 返回当前页，非 viewing 阶段返回 nil
func (s ViewerState) CurrentSlide() *Slide {
	if s.Phase != PhaseViewing || s.Deck.Len() == 0 {
		return nil
	}
	sl := s.Deck.Slides[s.CurrentSlideIndex]
	return &sl
}
