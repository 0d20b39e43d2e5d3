package extractor

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"voice-browser/internal/application/port/output"
	"voice-browser/internal/domain/entity"
	"voice-browser/internal/infrastructure/browser/htmltext"
)

// outerHTMLScript returns the element markup; nav/header/footer are removed on the Go side.
const outerHTMLScript = `() => this.outerHTML`

type Extractor struct {
	renderer output.PageRenderer
	cfg      Config
	logger   output.LoggerPort
}

func New(renderer output.PageRenderer, cfg Config, logger output.LoggerPort) *Extractor {
	return &Extractor{
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Extract builds a digest of the page currently loaded in the renderer.
// It never fails: every part falls back to its default on timeout or DOM error.
func (e *Extractor) Extract(ctx context.Context, pageURL string) entity.PageDigest {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Budget)
	defer cancel()

	digest := entity.PageDigest{
		URL:      pageURL,
		Title:    entity.UnknownTitle,
		Headings: []string{},
		NavLinks: entity.NewLinkSet(),
	}

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		digest.Title = e.extractTitle(ctx)
	}()
	go func() {
		defer wg.Done()
		digest.NavLinks = e.extractNavLinks(ctx, pageURL)
	}()
	go func() {
		defer wg.Done()
		digest.Headings = e.extractHeadings(ctx)
	}()
	go func() {
		defer wg.Done()
		digest.MainText = e.extractMainContent(ctx)
	}()
	wg.Wait()

	e.logger.Debug("Page extracted",
		"url", pageURL,
		"title", digest.Title,
		"links", digest.NavLinks.Len(),
		"headings", len(digest.Headings),
		"main_text_len", len(digest.MainText),
	)
	return digest
}

func (e *Extractor) extractTitle(ctx context.Context) string {
	title := within(ctx, e.cfg.ContentTimeout, "", e.renderer.Title)
	title = strings.TrimSpace(title)
	if title == "" {
		return entity.UnknownTitle
	}
	return title
}

func (e *Extractor) extractNavLinks(ctx context.Context, pageURL string) *entity.LinkSet {
	links := entity.NewLinkSet()
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	for _, selector := range e.cfg.NavSelectors {
		if links.Len() >= e.cfg.MaxLinks || ctx.Err() != nil {
			break
		}
		anchors, err := e.renderer.QueryAll(ctx, selector)
		if err != nil {
			e.logger.Debug("Nav selector failed", "selector", selector, "error", err)
			continue
		}
		for _, a := range anchors {
			if links.Len() >= e.cfg.MaxLinks || ctx.Err() != nil {
				break
			}
			link := within(ctx, e.cfg.ElementTimeout, entity.NavLink{}, func(ctx context.Context) (entity.NavLink, error) {
				return e.readAnchor(ctx, a)
			})
			label, ok := e.cleanLabel(link.Label)
			if !ok || link.URL == "" {
				continue
			}
			abs, ok := resolveHref(base, link.URL)
			if !ok {
				continue
			}
			links.Add(label, abs)
		}
	}
	return links
}

func (e *Extractor) readAnchor(ctx context.Context, a output.Element) (entity.NavLink, error) {
	text, err := e.renderer.TextContent(ctx, a)
	if err != nil {
		return entity.NavLink{}, err
	}
	href, ok, err := e.renderer.Attribute(ctx, a, "href")
	if err != nil {
		return entity.NavLink{}, err
	}
	if !ok {
		return entity.NavLink{}, nil
	}
	return entity.NavLink{Label: text, URL: href}, nil
}

func (e *Extractor) cleanLabel(raw string) (string, bool) {
	label := htmltext.CollapseSpace(raw)
	if n := utf8.RuneCountInString(label); n < 2 || n >= e.cfg.MaxLabelLength {
		return "", false
	}
	for _, ignored := range e.cfg.IgnoredLabels {
		if strings.EqualFold(label, ignored) {
			return "", false
		}
	}
	return label, true
}

func (e *Extractor) extractHeadings(ctx context.Context) []string {
	headings := []string{}
	els, err := e.renderer.QueryAll(ctx, e.cfg.HeadingSelector)
	if err != nil {
		return headings
	}
	for _, el := range els {
		if len(headings) >= e.cfg.MaxHeadings || ctx.Err() != nil {
			break
		}
		text := within(ctx, e.cfg.ElementTimeout, "", func(ctx context.Context) (string, error) {
			return e.renderer.TextContent(ctx, el)
		})
		if text = htmltext.CollapseSpace(text); text != "" {
			headings = append(headings, text)
		}
	}
	return headings
}

func (e *Extractor) extractMainContent(ctx context.Context) string {
	for _, selector := range e.cfg.ContentSelectors {
		if ctx.Err() != nil {
			return ""
		}
		text := within(ctx, e.cfg.ContentTimeout, "", func(ctx context.Context) (string, error) {
			return e.blockText(ctx, selector)
		})
		if len(text) > e.cfg.MinContentLength {
			return htmltext.Truncate(text, e.cfg.MaxMainText)
		}
	}
	return e.paragraphFallback(ctx)
}

func (e *Extractor) blockText(ctx context.Context, selector string) (string, error) {
	el, err := e.renderer.QueryOne(ctx, selector)
	if err != nil || el == nil {
		return "", err
	}
	markup, err := e.renderer.Evaluate(ctx, outerHTMLScript, el)
	if err != nil {
		return "", err
	}
	return htmltext.VisibleText(markup, nil), nil
}

func (e *Extractor) paragraphFallback(ctx context.Context) string {
	els, err := e.renderer.QueryAll(ctx, "p")
	if err != nil {
		return ""
	}
	var parts []string
	for _, el := range els {
		if len(parts) >= e.cfg.MaxParagraphs || ctx.Err() != nil {
			break
		}
		text := within(ctx, e.cfg.ElementTimeout, "", func(ctx context.Context) (string, error) {
			return e.renderer.TextContent(ctx, el)
		})
		if text = htmltext.CollapseSpace(text); len(text) > e.cfg.MinContentLength {
			parts = append(parts, text)
		}
	}
	return htmltext.Truncate(strings.Join(parts, " "), e.cfg.MaxMainText)
}

// within runs op with its own deadline and returns fallback on error, panic or timeout.
// An op that ignores ctx is abandoned; its result is dropped into a buffered channel.
func within[T any](ctx context.Context, timeout time.Duration, fallback T, op func(context.Context) (T, error)) T {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("extraction panic: %v", r)}
			}
		}()
		v, err := op(ctx)
		done <- result{val: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return fallback
		}
		return r.val
	case <-ctx.Done():
		return fallback
	}
}

func resolveHref(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return "", false
	}
	if ref.Host == "" {
		return "", false
	}
	return ref.String(), true
}
