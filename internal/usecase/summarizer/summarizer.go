package summarizer

import (
	"context"
	"errors"
	"strings"
	"time"

	"voice-browser/internal/application/port/input"
	"voice-browser/internal/application/port/output"
	"voice-browser/internal/domain/entity"
	"voice-browser/internal/infrastructure/browser/htmltext"
	"voice-browser/internal/infrastructure/prompts"
)

const (
	FailedSummaryText = "Could not generate summary"
	EmptyPageText     = "I could not analyze this page."
)

var _ input.Summarizer = (*Summarizer)(nil)

// DigestSource extracts a digest from the page currently open in the renderer.
type DigestSource interface {
	Extract(ctx context.Context, pageURL string) entity.PageDigest
}

type Config struct {
	PageLoadTimeout    time.Duration
	PromptContentChars int
}

func DefaultConfig() Config {
	return Config{
		PageLoadTimeout:    7 * time.Second,
		PromptContentChars: 300,
	}
}

type Summarizer struct {
	renderer  output.PageRenderer
	extractor DigestSource
	completer output.TextCompleter
	cache     output.SummaryCache
	prompts   *prompts.Library
	cfg       Config
	logger    output.LoggerPort
}

func New(
	renderer output.PageRenderer,
	extractor DigestSource,
	completer output.TextCompleter,
	cache output.SummaryCache,
	library *prompts.Library,
	cfg Config,
	logger output.LoggerPort,
) *Summarizer {
	return &Summarizer{
		renderer:  renderer,
		extractor: extractor,
		completer: completer,
		cache:     cache,
		prompts:   library,
		cfg:       cfg,
		logger:    logger,
	}
}

// Summarize returns the cached summary for url or renders, extracts and summarizes it.
// Only successful summaries are cached, so a degraded result can be retried.
func (s *Summarizer) Summarize(ctx context.Context, url string) entity.PageSummary {
	if entry, ok := s.cache.Get(ctx, url); ok {
		s.logger.Debug("Summary cache hit", "url", url)
		return entry.ToSummary(url)
	}

	digest := s.Digest(ctx, url)
	summary := entity.PageSummary{
		URL:   url,
		Title: digest.Title,
		Links: digest.NavLinks,
	}

	if digest.Empty() {
		s.logger.Warn("Nothing to summarize", "url", url, "title", digest.Title)
		summary.Text = EmptyPageText
		summary.Degraded = true
		return summary
	}

	text, err := s.generate(ctx, digest)
	if err != nil {
		s.logger.Warn("Summary generation failed", "url", url, "error", err)
		summary.Text = FailedSummaryText
		summary.Degraded = true
		return summary
	}

	summary.Text = text
	s.cache.Put(ctx, url, entity.NewCacheEntry(summary))
	return summary
}

// Digest opens url and extracts it. A load timeout still extracts whatever has rendered;
// any other load failure yields the failed-page digest.
func (s *Summarizer) Digest(ctx context.Context, url string) entity.PageDigest {
	openCtx, cancel := context.WithTimeout(ctx, s.cfg.PageLoadTimeout)
	err := s.renderer.Open(openCtx, url)
	cancel()

	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		s.logger.Info("Page load timed out, extracting partial page", "url", url)
	default:
		s.logger.Warn("Page load failed", "url", url, "error", err)
		return entity.FailedDigest(url)
	}

	base := url
	if final, ok := entity.AbsoluteURL(s.renderer.CurrentURL()); ok && final != url {
		s.logger.Debug("Page redirected", "url", url, "final_url", final)
		base = final
	}

	// relative links resolve against where the browser landed
	d := s.extractor.Extract(ctx, base)
	d.URL = url
	return d
}

func (s *Summarizer) generate(ctx context.Context, d entity.PageDigest) (string, error) {
	prompt, err := s.prompts.Render(prompts.Summary, map[string]any{
		"Title":    d.Title,
		"Headings": d.Headings,
		"Content":  htmltext.Truncate(d.MainText, s.cfg.PromptContentChars),
	})
	if err != nil {
		return "", err
	}

	text, err := s.completer.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("empty summary")
	}
	return text, nil
}
