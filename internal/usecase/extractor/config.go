package extractor

import "time"

type Config struct {
	// ElementTimeout bounds reading one anchor, heading or paragraph.
	ElementTimeout time.Duration
	// ContentTimeout bounds the title read and each content-block evaluation.
	ContentTimeout time.Duration
	// Budget bounds the whole extraction; sub-extractions return what they have when it runs out.
	Budget time.Duration

	MaxLinks         int
	MaxHeadings      int
	MaxParagraphs    int
	MinContentLength int
	MaxMainText      int
	MaxLabelLength   int

	NavSelectors     []string
	HeadingSelector  string
	ContentSelectors []string
	// IgnoredLabels are dropped from navigation options, compared case-insensitively.
	IgnoredLabels []string
}

func DefaultConfig() Config {
	return Config{
		ElementTimeout: 200 * time.Millisecond,
		ContentTimeout: time.Second,
		Budget:         4 * time.Second,

		MaxLinks:         10,
		MaxHeadings:      3,
		MaxParagraphs:    3,
		MinContentLength: 50,
		MaxMainText:      500,
		MaxLabelLength:   50,

		NavSelectors: []string{
			"nav a[href]",
			"header a[href]",
			"#nav-main a[href]",
			".nav-links a[href]",
		},
		HeadingSelector: "h1, h2",
		ContentSelectors: []string{
			"main",
			"article",
			"#content",
			".content",
			`[role="main"]`,
			".main-content",
			"#main-content",
			"section:first-of-type",
			".page-content",
			`[data-testid="content"]`,
		},
		IgnoredLabels: []string{"en", "fr", ".com", ".ca"},
	}
}
