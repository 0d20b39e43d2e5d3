package output

import (
	"context"

	"voice-browser/internal/domain/entity"
)

// SummaryCache stores summaries by exact URL. Entries are write-once:
// Put on an existing key is a no-op.
type SummaryCache interface {
	Get(ctx context.Context, url string) (entity.CacheEntry, bool)
	Put(ctx context.Context, url string, entry entity.CacheEntry)
}
