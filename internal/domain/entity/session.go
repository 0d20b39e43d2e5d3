package entity

// Session is the mutable per-session browsing state.
// Only one turn runs against a Session at a time; it holds no locks.
type Session struct {
	ID           string
	History      []string
	Bookmarks    *LinkSet
	CurrentTitle string
}

func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		History:   []string{},
		Bookmarks: NewLinkSet(),
	}
}

func (s *Session) Current() (string, bool) {
	if len(s.History) == 0 {
		return "", false
	}
	return s.History[len(s.History)-1], true
}

func (s *Session) Push(url string) {
	s.History = append(s.History, url)
}

// Pop removes the top of history unless it is the only entry.
func (s *Session) Pop() (string, bool) {
	if len(s.History) <= 1 {
		return "", false
	}
	s.History = s.History[:len(s.History)-1]
	return s.History[len(s.History)-1], true
}

// Snapshot returns a deep copy that can be mutated and later committed with Restore.
func (s *Session) Snapshot() *Session {
	history := make([]string, len(s.History))
	copy(history, s.History)
	return &Session{
		ID:           s.ID,
		History:      history,
		Bookmarks:    s.Bookmarks.Clone(),
		CurrentTitle: s.CurrentTitle,
	}
}

func (s *Session) Restore(from *Session) {
	s.History = from.History
	s.Bookmarks = from.Bookmarks
	s.CurrentTitle = from.CurrentTitle
}
