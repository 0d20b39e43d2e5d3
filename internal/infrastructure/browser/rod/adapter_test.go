package rod

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"voice-browser/internal/application/port/output"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireBrowser(t *testing.T) {
	t.Helper()
	if os.Getenv("NAVIGATOR_BROWSER_TESTS") != "1" {
		t.Skip("set NAVIGATOR_BROWSER_TESTS=1 to run tests against a real browser")
	}
}

func newTestAdapter(t *testing.T) *BrowserAdapter {
	t.Helper()
	requireBrowser(t)

	cfg := DefaultConfig()
	cfg.Timeout = 5 * time.Second

	adapter, err := NewBrowserAdapter(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(adapter.Close)
	return adapter
}

func serve(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Headless)
	assert.Equal(t, time.Duration(defaultSlowMotion), cfg.SlowMotion)
	assert.Equal(t, defaultTimeout, cfg.Timeout)
	assert.False(t, cfg.NoSandbox, "Should be secure by default")
	assert.False(t, cfg.DisableSecurityFeatures, "Should be secure by default")
	assert.False(t, cfg.DisableScripts)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		valid bool
	}{
		{"https", "https://example.com", true},
		{"http with path", "http://example.com/a?b=c", true},
		{"Empty URL", "", false},
		{"Invalid scheme", "ftp://example.com", false},
		{"JavaScript URL", "javascript:alert(1)", false},
		{"Missing host", "https://", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateURL(tt.url)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidURL)
			}
		})
	}
}

func TestUnwrap_ForeignElement(t *testing.T) {
	_, err := unwrap(struct{}{})
	assert.ErrorIs(t, err, ErrForeignElement)

	_, err = unwrap(nil)
	assert.ErrorIs(t, err, ErrForeignElement)
}

func TestBrowserAdapter_ClosedRejectsOpen(t *testing.T) {
	adapter := newTestAdapter(t)

	adapter.Close()
	assert.Empty(t, adapter.CurrentURL())
	assert.ErrorIs(t, adapter.Open(context.Background(), "https://example.com"), output.ErrRendererClosed)
}

func TestBrowserAdapter_OpenAndTitle(t *testing.T) {
	server := serve(t, BasicHTML)
	adapter := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Open(ctx, server.URL))

	title, err := adapter.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Test Page", title)
	assert.Equal(t, server.URL+"/", adapter.CurrentURL())
}

func TestBrowserAdapter_Open_InvalidURL(t *testing.T) {
	adapter := newTestAdapter(t)

	err := adapter.Open(context.Background(), "javascript:alert(1)")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestBrowserAdapter_QueryAndAttributes(t *testing.T) {
	server := serve(t, NavigationHTML)
	adapter := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Open(ctx, server.URL))

	links, err := adapter.QueryAll(ctx, "nav a[href]")
	require.NoError(t, err)
	require.Len(t, links, 2)

	text, err := adapter.TextContent(ctx, links[0])
	require.NoError(t, err)
	assert.Equal(t, "Opening Hours", text)

	href, ok, err := adapter.Attribute(ctx, links[0], "href")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/hours", href)

	_, ok, err = adapter.Attribute(ctx, links[0], "data-missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBrowserAdapter_QueryOne(t *testing.T) {
	server := serve(t, NavigationHTML)
	adapter := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Open(ctx, server.URL))

	main, err := adapter.QueryOne(ctx, "main")
	require.NoError(t, err)
	require.NotNil(t, main)

	html, err := adapter.Evaluate(ctx, `() => this.outerHTML`, main)
	require.NoError(t, err)
	assert.Contains(t, html, "<h2>Welcome</h2>")

	missing, err := adapter.QueryOne(ctx, "article")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = adapter.QueryOne(ctx, " ")
	assert.ErrorIs(t, err, ErrInvalidSelector)
}

func TestBrowserAdapter_Close_Idempotent(t *testing.T) {
	adapter := newTestAdapter(t)

	adapter.Close()
	adapter.Close()

	assert.Equal(t, "", adapter.CurrentURL())
}
