// Package fakes holds in-memory collaborators for use-case tests.
package fakes

import (
	"context"
	"errors"
	"sync"
	"time"

	"voice-browser/internal/application/port/output"
)

var _ output.PageRenderer = (*Renderer)(nil)

var ErrNoSuchPage = errors.New("no such page")

type Element struct {
	Text  string
	Attrs map[string]string
	HTML  string
	Err   error
	// Delay is honored with ctx; Stall sleeps for Delay ignoring ctx.
	Delay time.Duration
	Stall bool
}

type Page struct {
	Title      string
	TitleDelay time.Duration
	OpenErr    error
	OpenDelay  time.Duration
	// RedirectTo is reported by CurrentURL after Open; content stays keyed by the requested URL.
	RedirectTo string
	// Elements maps an exact selector string to its matches.
	Elements map[string][]*Element
}

// Renderer serves canned pages keyed by URL.
type Renderer struct {
	mu       sync.Mutex
	pages    map[string]*Page
	current  string
	location string
	opens    []string
	closed   bool
}

func NewRenderer() *Renderer {
	return &Renderer{pages: make(map[string]*Page)}
}

func (r *Renderer) AddPage(url string, p *Page) *Renderer {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[url] = p
	return r
}

// Opens lists every URL passed to Open, in order.
func (r *Renderer) Opens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.opens))
	copy(out, r.opens)
	return out
}

func (r *Renderer) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Renderer) Open(ctx context.Context, url string) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return output.ErrRendererClosed
	}
	r.opens = append(r.opens, url)
	r.current = url
	p, ok := r.pages[url]
	r.location = url
	if ok && p.RedirectTo != "" {
		r.location = p.RedirectTo
	}
	r.mu.Unlock()

	if !ok {
		return ErrNoSuchPage
	}
	if err := wait(ctx, p.OpenDelay, false); err != nil {
		return err
	}
	return p.OpenErr
}

func (r *Renderer) page() *Page {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	return r.pages[r.current]
}

func (r *Renderer) QueryAll(ctx context.Context, selector string) ([]output.Element, error) {
	p := r.page()
	if p == nil {
		return nil, ErrNoSuchPage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	els := p.Elements[selector]
	out := make([]output.Element, 0, len(els))
	for _, el := range els {
		out = append(out, el)
	}
	return out, nil
}

func (r *Renderer) QueryOne(ctx context.Context, selector string) (output.Element, error) {
	els, err := r.QueryAll(ctx, selector)
	if err != nil || len(els) == 0 {
		return nil, err
	}
	return els[0], nil
}

func (r *Renderer) TextContent(ctx context.Context, el output.Element) (string, error) {
	e, err := r.element(ctx, el)
	if err != nil {
		return "", err
	}
	return e.Text, nil
}

func (r *Renderer) Attribute(ctx context.Context, el output.Element, name string) (string, bool, error) {
	e, err := r.element(ctx, el)
	if err != nil {
		return "", false, err
	}
	v, ok := e.Attrs[name]
	return v, ok, nil
}

// Evaluate returns the element's HTML; the script is not interpreted.
func (r *Renderer) Evaluate(ctx context.Context, _ string, el output.Element) (string, error) {
	e, err := r.element(ctx, el)
	if err != nil {
		return "", err
	}
	return e.HTML, nil
}

func (r *Renderer) CurrentURL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.location
}

func (r *Renderer) Title(ctx context.Context) (string, error) {
	p := r.page()
	if p == nil {
		return "", ErrNoSuchPage
	}
	if err := wait(ctx, p.TitleDelay, false); err != nil {
		return "", err
	}
	return p.Title, nil
}

func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

func (r *Renderer) element(ctx context.Context, el output.Element) (*Element, error) {
	e, ok := el.(*Element)
	if !ok || e == nil {
		return nil, errors.New("foreign element")
	}
	if err := wait(ctx, e.Delay, e.Stall); err != nil {
		return nil, err
	}
	return e, e.Err
}

func wait(ctx context.Context, d time.Duration, ignoreCtx bool) error {
	if d <= 0 {
		return ctx.Err()
	}
	if ignoreCtx {
		time.Sleep(d)
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Link builds an anchor element.
func Link(text, href string) *Element {
	return &Element{Text: text, Attrs: map[string]string{"href": href}}
}

// Text builds an element with only text content.
func Text(text string) *Element {
	return &Element{Text: text}
}

// Block builds a content container whose Evaluate result is html.
func Block(html string) *Element {
	return &Element{HTML: html}
}
