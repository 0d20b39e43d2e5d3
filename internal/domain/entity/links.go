package entity

type NavLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// LinkSet is an insertion-ordered label to URL mapping with unique labels.
// The zero value is not usable; call NewLinkSet. A nil *LinkSet reads as empty.
type LinkSet struct {
	labels []string
	urls   map[string]string
}

func NewLinkSet() *LinkSet {
	return &LinkSet{urls: make(map[string]string)}
}

// Set stores url under label. An existing label keeps its position and gets the new URL.
func (s *LinkSet) Set(label, url string) {
	if _, ok := s.urls[label]; !ok {
		s.labels = append(s.labels, label)
	}
	s.urls[label] = url
}

// Add stores url under label only if the label is new. Reports whether it was added.
func (s *LinkSet) Add(label, url string) bool {
	if _, ok := s.urls[label]; ok {
		return false
	}
	s.Set(label, url)
	return true
}

func (s *LinkSet) Get(label string) (string, bool) {
	if s == nil {
		return "", false
	}
	url, ok := s.urls[label]
	return url, ok
}

func (s *LinkSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.labels)
}

func (s *LinkSet) Labels() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

func (s *LinkSet) Items() []NavLink {
	if s == nil {
		return []NavLink{}
	}
	out := make([]NavLink, 0, len(s.labels))
	for _, l := range s.labels {
		out = append(out, NavLink{Label: l, URL: s.urls[l]})
	}
	return out
}

func (s *LinkSet) Clone() *LinkSet {
	c := NewLinkSet()
	if s == nil {
		return c
	}
	for _, l := range s.labels {
		c.Set(l, s.urls[l])
	}
	return c
}
