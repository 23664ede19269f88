// Package export 将幻灯片渲染为可打印的分页文档
package export

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"regexp"
	"strings"

	"prompt-deck-api/internal/domain/entity"
)

const (
	// PageWidth 页面宽度（px）
	PageWidth = 1600
	// PageHeight 页面高度（px）
	PageHeight = 900

	// ContentType 导出文档的 MIME 类型
	ContentType = "text/html; charset=utf-8"

	footerPrefix = "Generated via Prompt Deck • "
)

var (
	// ErrNoDeck 当前没有可导出的幻灯片
	ErrNoDeck = errors.New("no deck to export")
	// ErrNoIdentity 导出需要身份
	ErrNoIdentity = errors.New("identity required for export")
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var deckTemplate = template.Must(template.ParseFS(templateFS, "templates/deck.html.tmpl"))

// Snapshot 导出所需的一致性快照
type Snapshot struct {
	Deck     *entity.Deck
	Identity *entity.Identity
}

// Document 导出结果
type Document struct {
	Filename    string
	ContentType string
	Pages       int
	Body        []byte
}

type pageView struct {
	Number int
	Title  string
	Points []string
	Image  template.URL
}

type documentView struct {
	Title  string
	Width  int
	Height int
	Footer string
	Total  int
	Pages  []pageView
}

// Render 渲染快照，每页一张幻灯片
func Render(snap Snapshot) (*Document, error) {
	if snap.Deck.Len() == 0 {
		return nil, ErrNoDeck
	}
	if snap.Identity == nil {
		return nil, ErrNoIdentity
	}

	deck := snap.Deck
	n := deck.Len()
	view := documentView{
		Title:  deck.Title,
		Width:  PageWidth,
		Height: PageHeight,
		Footer: Footer(snap.Identity.Address),
		Total:  n,
		Pages:  make([]pageView, n),
	}
	for i, s := range deck.Slides {
		view.Pages[i] = pageView{
			Number: i + 1,
			Title:  s.Title,
			Points: s.Content,
			Image:  imageURL(s.BackgroundImage),
		}
	}

	var buf bytes.Buffer
	if err := deckTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}
	return &Document{
		Filename:    filename(deck.Title),
		ContentType: ContentType,
		Pages:       n,
		Body:        buf.Bytes(),
	}, nil
}

// Footer 页脚署名
func Footer(address string) string {
	return footerPrefix + address
}

// imageURL 仅放行 http(s) 与 data:image 引用
func imageURL(raw string) template.URL {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "https://"), strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "data:image/"):
		return template.URL(s)
	default:
		return ""
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func filename(title string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		slug = "deck"
	}
	return slug + ".html"
}
