package deck

import (
	"fmt"

	"prompt-deck-api/internal/domain/entity"
)

// Assemble 按下标把骨架与图片合成为 Deck，纯函数
// 图片数量与骨架页数不一致属于调用方错误，不做补齐或截断
func Assemble(skel *entity.DeckSkeleton, images []string) (*entity.Deck, error) {
	if skel == nil {
		return nil, fmt.Errorf("assemble: skeleton is nil")
	}
	if len(images) != len(skel.Slides) {
		return nil, fmt.Errorf("assemble: %d images for %d slides", len(images), len(skel.Slides))
	}

	slides := make([]entity.Slide, len(skel.Slides))
	for i, stub := range skel.Slides {
		slides[i] = entity.Slide{
			Title:           stub.Title,
			Content:         append([]string(nil), stub.Content...),
			VisualPrompt:    stub.VisualPrompt,
			BackgroundImage: images[i],
		}
	}
	return &entity.Deck{Title: skel.Title, Slides: slides}, nil
}
