package tokens

import (
	"context"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const (
	DefaultEncoding = "cl100k_base"
	// charsPerToken is used when no tokenizer is available.
	charsPerToken = 4
)

// Truncator cuts text to a token budget. The BPE ranks are loaded in the
// background (tiktoken may download them without a deadline); until they are
// available, or if loading fails, a character budget of maxTokens*4 is used.
type Truncator struct {
	encoding string
	loadEnc  func(string) (*tiktoken.Tiktoken, error)

	start sync.Once
	done  chan struct{}

	mu  sync.RWMutex
	enc *tiktoken.Tiktoken
}

func NewTruncator(encoding string) *Truncator {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	return &Truncator{encoding: encoding, loadEnc: tiktoken.GetEncoding, done: make(chan struct{})}
}

// NewCharTruncator never loads a tokenizer.
func NewCharTruncator() *Truncator {
	t := &Truncator{done: make(chan struct{})}
	t.start.Do(func() { close(t.done) })
	return t
}

// Warm starts loading the encoding and waits until it is ready or ctx ends.
// It reports whether token counting is available.
func (t *Truncator) Warm(ctx context.Context) bool {
	t.begin()
	select {
	case <-t.done:
		return t.encoder() != nil
	case <-ctx.Done():
		return false
	}
}

func (t *Truncator) begin() {
	t.start.Do(func() {
		go func() {
			defer close(t.done)
			enc, err := t.loadEnc(t.encoding)
			if err != nil {
				return
			}
			t.mu.Lock()
			t.enc = enc
			t.mu.Unlock()
		}()
	})
}

func (t *Truncator) encoder() *tiktoken.Tiktoken {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enc
}

// Truncate never waits for the encoding to load.
func (t *Truncator) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return ""
	}

	t.begin()
	enc := t.encoder()
	if enc == nil {
		return truncateChars(text, maxTokens*charsPerToken)
	}

	ids := enc.Encode(text, nil, nil)
	if len(ids) <= maxTokens {
		return text
	}
	return enc.Decode(ids[:maxTokens])
}

func truncateChars(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[:max]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
