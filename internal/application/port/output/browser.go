package output

import (
	"context"
	"errors"
)

var ErrRendererClosed = errors.New("renderer session is closed")

// Element is an opaque DOM element handle owned by a PageRenderer.
type Element interface{}

// PageRenderer is a headless rendering session. All DOM calls act on the
// page most recently passed to Open and honor ctx cancellation.
type PageRenderer interface {
	Open(ctx context.Context, url string) error
	QueryAll(ctx context.Context, selector string) ([]Element, error)
	// QueryOne returns nil and no error when nothing matches.
	QueryOne(ctx context.Context, selector string) (Element, error)
	TextContent(ctx context.Context, el Element) (string, error)
	Attribute(ctx context.Context, el Element, name string) (string, bool, error)
	// Evaluate runs js as a function with the element bound to `this` and returns its string result.
	Evaluate(ctx context.Context, js string, el Element) (string, error)

	CurrentURL() string
	Title(ctx context.Context) (string, error)
	Close()
}
