package entity

// Turn describes one orchestration cycle. It is never persisted.
type Turn struct {
	Utterance string
	Intent    Intent
	Response  string
	URL       *string
}

// Response is the per-turn payload handed to the transport.
type Response struct {
	Summary string  `json:"summary"`
	URL     *string `json:"url"`
}

func (t Turn) ToResponse() Response {
	return Response{Summary: t.Response, URL: t.URL}
}

// SiteResult is the outcome of resolving a natural-language site request.
type SiteResult struct {
	Summary        PageSummary
	URL            *string
	Title          string
	StillSearching bool
}
