package htmltext

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

type CleanConfig struct {
	// TagsToRemove: поддеревья, текст которых не попадает в результат
	TagsToRemove  []string
	MaxOutputSize int
}

// DefaultCleanConfig убирает навигацию и служебные теги страницы.
var DefaultCleanConfig = CleanConfig{
	TagsToRemove: []string{
		"nav", "header", "footer",
		"script", "style", "noscript", "svg", "iframe", "template", "head",
	},
	MaxOutputSize: 100_000,
}

// VisibleText возвращает читаемый текст фрагмента HTML без навигации и мусорных тегов.
// Ошибки разбора не пробрасываются: в худшем случае вернётся пустая строка.
func VisibleText(rawHTML string, cfg *CleanConfig) string {
	if cfg == nil {
		cfg = &DefaultCleanConfig
	}

	nodes, err := html.ParseFragment(strings.NewReader(rawHTML), &html.Node{
		Type: html.ElementNode,
		Data: "body",
	})
	if err != nil {
		return ""
	}

	var sb strings.Builder
	for _, n := range nodes {
		collectText(n, cfg, &sb)
	}

	return Truncate(CollapseSpace(sb.String()), cfg.MaxOutputSize)
}

// collectText рекурсивно собирает текстовые узлы, пропуская удаляемые теги
func collectText(n *html.Node, cfg *CleanConfig, sb *strings.Builder) {
	switch n.Type {
	case html.CommentNode:
		return
	case html.TextNode:
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	case html.ElementNode:
		if isOneOf(n.Data, cfg.TagsToRemove...) {
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, cfg, sb)
	}
}

// CollapseSpace сводит любые последовательности пробельных символов к одному пробелу.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate обрезает строку до maxSize байт, не разрывая UTF-8 последовательности.
func Truncate(s string, maxSize int) string {
	if maxSize <= 0 || len(s) <= maxSize {
		return s
	}
	s = s[:maxSize]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
