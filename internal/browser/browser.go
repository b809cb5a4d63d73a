package browser

import (
	"context"
	"errors"
	"time"
)

// Options configures a browser session.
type Options struct {
	Country   string // two-letter region used for the browser locale, e.g. "us"
	Headless  bool
	UseProxy  bool
	ProxyURL  string
	ExecPath  string
	UserAgent string
}

// WaitCondition describes when a navigation is considered settled.
type WaitCondition struct {
	// Selector must be present before the page counts as loaded. Empty means "body".
	Selector string
	// Settle is an extra fixed delay after the selector appears, for late
	// client-side rendering.
	Settle time.Duration
	// ScrollY scrolls the window to this offset after settling, followed by
	// another settle delay. Zero disables scrolling.
	ScrollY int
}

// Page is a navigable browser tab.
type Page interface {
	Goto(ctx context.Context, url string, wait WaitCondition) error
	Evaluate(ctx context.Context, expression string, out any) error
	Close() error
}

// Launcher starts isolated browser sessions.
type Launcher interface {
	Launch(ctx context.Context, opts Options) (Page, error)
}

// ErrClosed is returned by Page methods after Close.
var ErrClosed = errors.New("browser page closed")

// DOM expressions used by the rendered transport.
const (
	ExprOuterHTML = `document.documentElement.outerHTML`
	ExprInnerText = `document.body ? document.body.innerText : ""`
)
