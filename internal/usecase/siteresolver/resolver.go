package siteresolver

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"voice-browser/internal/application/port/input"
	"voice-browser/internal/application/port/output"
	"voice-browser/internal/domain/entity"
	"voice-browser/internal/infrastructure/prompts"
)

const (
	ClarifyText = "I'm not sure which website you mean. Could you tell me a bit more about what you're looking for?"
	maxTitleLen = 60
)

var _ input.SiteFinder = (*SiteResolver)(nil)

// SiteResolver turns a free-text site request into a verified, summarized URL.
type SiteResolver struct {
	completer  output.TextCompleter
	summarizer input.Summarizer
	prompts    *prompts.Library
	logger     output.LoggerPort
}

func New(completer output.TextCompleter, summarizer input.Summarizer, library *prompts.Library, logger output.LoggerPort) *SiteResolver {
	return &SiteResolver{
		completer:  completer,
		summarizer: summarizer,
		prompts:    library,
		logger:     logger,
	}
}

func (r *SiteResolver) FindWebsite(ctx context.Context, request string) entity.SiteResult {
	candidate, err := r.complete(ctx, prompts.SiteFind, map[string]any{"Request": request})
	if err != nil {
		r.logger.Warn("Site lookup failed", "request", request, "error", err)
		return clarify()
	}

	siteURL, ok := entity.SiteURL(firstLine(candidate))
	if !ok {
		r.logger.Info("No site for request", "request", request, "reply", candidate)
		return clarify()
	}

	summary := r.summarizer.Summarize(ctx, siteURL)
	if summary.Degraded {
		r.logger.Warn("Resolved site could not be summarized", "url", siteURL)
		summary.Text = fmt.Sprintf("I found %s but couldn't load it properly. Would you like me to try again?", hostOf(siteURL))
		return entity.SiteResult{
			Summary:        summary,
			URL:            &siteURL,
			StillSearching: true,
		}
	}

	return entity.SiteResult{
		Summary: summary,
		URL:     &siteURL,
		Title:   r.title(ctx, siteURL, summary),
	}
}

// title asks for a short human name and falls back to the page title, then the host.
func (r *SiteResolver) title(ctx context.Context, siteURL string, summary entity.PageSummary) string {
	reply, err := r.complete(ctx, prompts.SiteTitle, map[string]any{
		"URL":     siteURL,
		"Summary": summary.Text,
	})
	if err == nil {
		if t := cleanTitle(reply); t != "" {
			return t
		}
	}
	if t := summary.UsableTitle(); t != "" {
		return t
	}
	return hostOf(siteURL)
}

func (r *SiteResolver) complete(ctx context.Context, name string, data map[string]any) (string, error) {
	prompt, err := r.prompts.Render(name, data)
	if err != nil {
		return "", err
	}
	return r.completer.Generate(ctx, prompt)
}

func clarify() entity.SiteResult {
	return entity.SiteResult{
		Summary:        entity.PageSummary{Text: ClarifyText, Links: entity.NewLinkSet()},
		StillSearching: true,
	}
}

func cleanTitle(s string) string {
	t := strings.Trim(strings.TrimSpace(firstLine(s)), "\"'`*.")
	t = strings.TrimSpace(t)
	if len(t) > maxTitleLen || strings.EqualFold(t, "none") {
		return ""
	}
	return t
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimPrefix(u.Host, "www.")
}
