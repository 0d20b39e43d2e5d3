package input

import (
	"context"

	"voice-browser/internal/domain/entity"
)

type Summarizer interface {
	Summarize(ctx context.Context, url string) entity.PageSummary
}

type InfoExtractor interface {
	Answer(ctx context.Context, url, query string) string
}

type SiteFinder interface {
	FindWebsite(ctx context.Context, prompt string) entity.SiteResult
}
