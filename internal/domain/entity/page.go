package entity

const (
	UnknownTitle    = "Unknown Title"
	FailedPageTitle = "Could not load page"
)

// PageDigest is the bounded, time-boxed view of a loaded page.
type PageDigest struct {
	URL      string
	Title    string
	Headings []string
	MainText string
	NavLinks *LinkSet
}

// FailedDigest is returned when the page could not be rendered at all.
func FailedDigest(url string) PageDigest {
	return PageDigest{
		URL:      url,
		Title:    FailedPageTitle,
		Headings: []string{},
		NavLinks: NewLinkSet(),
	}
}

// Empty reports whether extraction produced nothing a summary could be built from.
func (d PageDigest) Empty() bool {
	return len(d.Headings) == 0 && d.MainText == "" && d.NavLinks.Len() == 0
}

// UsableTitle returns the page title unless it is one of the fallback values.
func (d PageDigest) UsableTitle() string {
	return usableTitle(d.Title)
}

func usableTitle(title string) string {
	switch title {
	case "", UnknownTitle, FailedPageTitle:
		return ""
	}
	return title
}

type PageSummary struct {
	URL   string
	Text  string
	Title string
	Links *LinkSet
	// Degraded is set when the page could not be loaded or summarized.
	Degraded bool
}

func (s PageSummary) UsableTitle() string {
	return usableTitle(s.Title)
}

type CacheEntry struct {
	Summary string    `json:"summary"`
	Title   string    `json:"title,omitempty"`
	Links   []NavLink `json:"links"`
}

// ToSummary rebuilds a summary from a cached entry.
func (e CacheEntry) ToSummary(url string) PageSummary {
	links := NewLinkSet()
	for _, l := range e.Links {
		links.Set(l.Label, l.URL)
	}
	return PageSummary{
		URL:   url,
		Text:  e.Summary,
		Title: e.Title,
		Links: links,
	}
}

func NewCacheEntry(s PageSummary) CacheEntry {
	return CacheEntry{
		Summary: s.Text,
		Title:   s.Title,
		Links:   s.Links.Items(),
	}
}
