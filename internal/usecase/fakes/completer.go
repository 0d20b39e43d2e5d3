package fakes

import (
	"context"
	"strings"
	"sync"

	"voice-browser/internal/application/port/output"
)

var _ output.TextCompleter = (*Completer)(nil)

// Rule answers prompts containing Contains.
type Rule struct {
	Contains string
	Reply    string
	Err      error
}

// Completer replies using the first matching rule, else Default/DefaultErr.
type Completer struct {
	Rules      []Rule
	Default    string
	DefaultErr error
	// Panic makes every call panic with this value when non-nil.
	Panic any

	mu      sync.Mutex
	prompts []string
}

func (c *Completer) Generate(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()

	if c.Panic != nil {
		panic(c.Panic)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	for _, r := range c.Rules {
		if strings.Contains(prompt, r.Contains) {
			return r.Reply, r.Err
		}
	}
	return c.Default, c.DefaultErr
}

func (c *Completer) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.prompts))
	copy(out, c.prompts)
	return out
}

func (c *Completer) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}
