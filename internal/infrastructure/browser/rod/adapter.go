package rod

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"voice-browser/internal/application/port/output"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var (
	ErrInvalidURL      = errors.New("invalid url")
	ErrInvalidSelector = errors.New("invalid selector")
	ErrForeignElement  = errors.New("element does not belong to this renderer")
)

const (
	defaultSlowMotion = 0
	defaultTimeout    = 10 * time.Second
)

var _ output.PageRenderer = (*BrowserAdapter)(nil)

type BrowserAdapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
	closed   bool
}

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	// Timeout bounds calls made with a context that has no deadline.
	Timeout                 time.Duration
	NoSandbox               bool
	DevTools                bool
	DisableSecurityFeatures bool
	DisableScripts          bool
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   true,
		SlowMotion: defaultSlowMotion,
		Timeout:    defaultTimeout,
	}
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain")
	if cfg.DisableSecurityFeatures {
		l = l.Set("disable-web-security").
			Set("allow-running-insecure-content").
			Set("disable-setuid-sandbox")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(controlURL).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if cfg.DisableScripts {
		if err := (proto.EmulationSetScriptExecutionDisabled{Value: true}).Call(page); err != nil {
			_ = browser.Close()
			l.Kill()
			return nil, fmt.Errorf("failed to disable scripts: %w", err)
		}
	}

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
	}, nil
}

// Open navigates and waits for the load event. A deadline hit while waiting
// for load is returned as context.DeadlineExceeded; the partially loaded page stays usable.
func (b *BrowserAdapter) Open(ctx context.Context, rawURL string) error {
	if b.closed {
		return output.ErrRendererClosed
	}
	if err := validateURL(rawURL); err != nil {
		return err
	}

	ctx, cancel := b.bounded(ctx)
	defer cancel()

	page := b.page.Context(ctx)
	if err := page.Navigate(rawURL); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("navigation timed out: %w", ctx.Err())
		}
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("page load timed out: %w", ctx.Err())
		}
		return fmt.Errorf("page load failed: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) QueryAll(ctx context.Context, selector string) ([]output.Element, error) {
	if b.closed {
		return nil, output.ErrRendererClosed
	}
	if strings.TrimSpace(selector) == "" {
		return nil, ErrInvalidSelector
	}

	ctx, cancel := b.bounded(ctx)
	defer cancel()

	els, err := b.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}

	result := make([]output.Element, 0, len(els))
	for _, el := range els {
		result = append(result, &element{el: el})
	}
	return result, nil
}

func (b *BrowserAdapter) QueryOne(ctx context.Context, selector string) (output.Element, error) {
	if b.closed {
		return nil, output.ErrRendererClosed
	}
	if strings.TrimSpace(selector) == "" {
		return nil, ErrInvalidSelector
	}

	ctx, cancel := b.bounded(ctx)
	defer cancel()

	found, el, err := b.page.Context(ctx).Has(selector)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	if !found {
		return nil, nil
	}
	return &element{el: el}, nil
}

func (b *BrowserAdapter) TextContent(ctx context.Context, el output.Element) (string, error) {
	return b.Evaluate(ctx, `() => this.textContent`, el)
}

func (b *BrowserAdapter) Attribute(ctx context.Context, el output.Element, name string) (string, bool, error) {
	rel, err := unwrap(el)
	if err != nil {
		return "", false, err
	}

	ctx, cancel := b.bounded(ctx)
	defer cancel()

	val, err := rel.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, fmt.Errorf("attribute %s: %w", name, err)
	}
	if val == nil {
		return "", false, nil
	}
	return *val, true, nil
}

func (b *BrowserAdapter) Evaluate(ctx context.Context, js string, el output.Element) (string, error) {
	if b.closed {
		return "", output.ErrRendererClosed
	}

	ctx, cancel := b.bounded(ctx)
	defer cancel()

	var (
		res *proto.RuntimeRemoteObject
		err error
	)
	if el == nil {
		res, err = b.page.Context(ctx).Eval(js)
	} else {
		rel, uerr := unwrap(el)
		if uerr != nil {
			return "", uerr
		}
		res, err = rel.Context(ctx).Eval(js)
	}
	if err != nil {
		return "", fmt.Errorf("evaluate: %w", err)
	}
	return jsonString(res.Value), nil
}

func (b *BrowserAdapter) Title(ctx context.Context) (string, error) {
	if b.closed {
		return "", output.ErrRendererClosed
	}

	ctx, cancel := b.bounded(ctx)
	defer cancel()

	info, err := b.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.Title, nil
}

func (b *BrowserAdapter) CurrentURL() string {
	if b.closed {
		return ""
	}
	info, err := b.page.Timeout(b.timeout).Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (b *BrowserAdapter) Close() {
	if b.closed {
		return
	}
	b.closed = true
	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}

func (b *BrowserAdapter) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.timeout)
}

type element struct {
	el *rod.Element
}

func unwrap(el output.Element) (*rod.Element, error) {
	e, ok := el.(*element)
	if !ok || e == nil || e.el == nil {
		return nil, ErrForeignElement
	}
	return e.el, nil
}

func jsonString(v gson.JSON) string {
	if v.Nil() {
		return ""
	}
	return v.Str()
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}
