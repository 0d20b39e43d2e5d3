package inquiry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"voice-browser/internal/application/port/input"
	"voice-browser/internal/application/port/output"
	"voice-browser/internal/infrastructure/browser/htmltext"
	"voice-browser/internal/infrastructure/prompts"
)

const Apology = "I'm sorry, I couldn't find that information on this page."

var _ input.InfoExtractor = (*InfoExtractor)(nil)

type Truncator interface {
	Truncate(text string, maxTokens int) string
}

type Config struct {
	PageLoadTimeout time.Duration
	ElementTimeout  time.Duration
	// GatherBudget bounds collecting text from all selectors.
	GatherBudget   time.Duration
	MaxTokens      int
	MaxPerSelector int
	Selectors      []string
}

func DefaultConfig() Config {
	return Config{
		PageLoadTimeout: 7 * time.Second,
		ElementTimeout:  200 * time.Millisecond,
		GatherBudget:    3 * time.Second,
		MaxTokens:       3000,
		MaxPerSelector:  40,
		Selectors: []string{
			"main",
			"article",
			`[role="main"]`,
			"#content",
			".content",
			"h1, h2, h3",
			"p",
			"li",
			"td",
			"dd",
		},
	}
}

// InfoExtractor answers questions from the full text of a page.
type InfoExtractor struct {
	renderer  output.PageRenderer
	completer output.TextCompleter
	truncator Truncator
	prompts   *prompts.Library
	cfg       Config
	logger    output.LoggerPort
}

func New(
	renderer output.PageRenderer,
	completer output.TextCompleter,
	truncator Truncator,
	library *prompts.Library,
	cfg Config,
	logger output.LoggerPort,
) *InfoExtractor {
	return &InfoExtractor{
		renderer:  renderer,
		completer: completer,
		truncator: truncator,
		prompts:   library,
		cfg:       cfg,
		logger:    logger,
	}
}

// Answer returns spoken-style prose answering query from url, or Apology.
func (x *InfoExtractor) Answer(ctx context.Context, url, query string) string {
	content, err := x.pageText(ctx, url)
	if err != nil {
		x.logger.Warn("Page text unavailable", "url", url, "error", err)
		return Apology
	}
	content = x.truncator.Truncate(content, x.cfg.MaxTokens)

	extracted, err := x.complete(ctx, prompts.InfoExtract, map[string]any{
		"Query":   query,
		"Content": content,
	})
	if err != nil {
		x.logger.Warn("Info extraction failed", "url", url, "error", err)
		return Apology
	}

	answer, err := x.complete(ctx, prompts.InfoRewrite, map[string]any{
		"Query":     query,
		"Extracted": extracted,
	})
	if err != nil {
		x.logger.Warn("Info rewrite failed", "url", url, "error", err)
		return Apology
	}
	return answer
}

func (x *InfoExtractor) pageText(ctx context.Context, url string) (string, error) {
	openCtx, cancel := context.WithTimeout(ctx, x.cfg.PageLoadTimeout)
	err := x.renderer.Open(openCtx, url)
	cancel()
	if err != nil && !(errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil) {
		return "", fmt.Errorf("open page: %w", err)
	}

	gatherCtx, cancel := context.WithTimeout(ctx, x.cfg.GatherBudget)
	defer cancel()

	text := x.gather(gatherCtx)
	if text == "" {
		text = x.bodyText(gatherCtx)
	}
	if text == "" {
		return "", errors.New("no content found")
	}
	return text, nil
}

// gather collects de-duplicated text blocks in selector order.
func (x *InfoExtractor) gather(ctx context.Context) string {
	seen := make(map[string]struct{})
	var parts []string

	for _, selector := range x.cfg.Selectors {
		if ctx.Err() != nil {
			break
		}
		els, err := x.renderer.QueryAll(ctx, selector)
		if err != nil {
			continue
		}
		if len(els) > x.cfg.MaxPerSelector {
			els = els[:x.cfg.MaxPerSelector]
		}
		for _, el := range els {
			if ctx.Err() != nil {
				break
			}
			elCtx, cancel := context.WithTimeout(ctx, x.cfg.ElementTimeout)
			raw, err := x.renderer.TextContent(elCtx, el)
			cancel()
			if err != nil {
				continue
			}
			text := htmltext.CollapseSpace(raw)
			if text == "" || covered(parts, text) {
				continue
			}
			if _, ok := seen[text]; ok {
				continue
			}
			seen[text] = struct{}{}
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

func (x *InfoExtractor) bodyText(ctx context.Context) string {
	body, err := x.renderer.QueryOne(ctx, "body")
	if err != nil || body == nil {
		return ""
	}
	markup, err := x.renderer.Evaluate(ctx, `() => this.outerHTML`, body)
	if err != nil {
		return ""
	}
	return htmltext.VisibleText(markup, &htmltext.CleanConfig{
		TagsToRemove: []string{"script", "style", "noscript", "svg", "iframe", "template", "head"},
	})
}

func (x *InfoExtractor) complete(ctx context.Context, name string, data map[string]any) (string, error) {
	prompt, err := x.prompts.Render(name, data)
	if err != nil {
		return "", err
	}
	text, err := x.completer.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("empty completion")
	}
	return text, nil
}

// covered reports whether text already appears inside a collected block,
// as happens when a paragraph sits inside <main>.
func covered(parts []string, text string) bool {
	for _, p := range parts {
		if len(p) > len(text) && strings.Contains(p, text) {
			return true
		}
	}
	return false
}
