package model

// DeckSkeletonInput 骨架生成输入
type DeckSkeletonInput struct {
	Topic      string
	SlideCount int

	Provider    string
	Model       string
	Temperature *float32
	MaxTokens   *int
}

// DeckSkeletonOutput 模型返回的骨架结构
type DeckSkeletonOutput struct {
	Title  string             `json:"title"`
	Slides []SlideStubOutput `json:"slides"`
}

// SlideStubOutput 单页骨架
type SlideStubOutput struct {
	Title        string   `json:"title"`
	Content      []string `json:"content"`
	VisualPrompt string   `json:"visualPrompt"`
}
