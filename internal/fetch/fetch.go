package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nycstandup/showcatalog/internal/browser"
)

// Transport selects how a page is retrieved.
type Transport string

const (
	Direct   Transport = "direct"
	Rendered Transport = "rendered"
)

// ParseTransport validates a configured transport name.
func ParseTransport(s string) (Transport, error) {
	switch t := Transport(strings.ToLower(strings.TrimSpace(s))); t {
	case Direct, Rendered:
		return t, nil
	case "":
		return Direct, nil
	default:
		return "", fmt.Errorf("unknown transport %q", s)
	}
}

const (
	DefaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultTimeout           = 15 * time.Second
	DefaultNavigationTimeout = 30 * time.Second
	DefaultMinBodyBytes      = 5000
	DefaultMaxBodyBytes      = 10 << 20
)

// DefaultBlockSignatures are substrings that indicate an anti-bot interstitial.
var DefaultBlockSignatures = []string{"captcha", "challenge", "cloudflare"}

// RawPage is a retrieved page before extraction.
type RawPage struct {
	URL       string
	FinalURL  string
	Transport Transport
	Status    int
	HTML      string
	// Text is the browser's rendering of visible text, one line per block.
	// Empty for direct fetches.
	Text      string
	FetchedAt time.Time
}

// Config controls both transports.
type Config struct {
	UserAgent         string
	Timeout           time.Duration
	NavigationTimeout time.Duration
	MinBodyBytes      int
	MaxBodyBytes      int64
	BlockSignatures   []string
	Browser           browser.Options
}

// Fetcher retrieves pages. It is safe for concurrent use.
type Fetcher struct {
	client   *http.Client
	launcher browser.Launcher
	cfg      Config
	now      func() time.Time
}

// New creates a Fetcher. launcher may be nil when no venue uses the rendered
// transport.
func New(cfg Config, launcher browser.Launcher) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = DefaultNavigationTimeout
	}
	if cfg.MinBodyBytes <= 0 {
		cfg.MinBodyBytes = DefaultMinBodyBytes
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.BlockSignatures == nil {
		cfg.BlockSignatures = DefaultBlockSignatures
	}
	if cfg.Browser.UserAgent == "" {
		cfg.Browser.UserAgent = cfg.UserAgent
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		launcher: launcher,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Fetch retrieves url over the given transport. wait only applies to the
// rendered transport.
func (f *Fetcher) Fetch(ctx context.Context, url string, transport Transport, wait browser.WaitCondition) (*RawPage, error) {
	switch transport {
	case Direct, "":
		return f.direct(ctx, url)
	case Rendered:
		return f.rendered(ctx, url, wait)
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}

func (f *Fetcher) direct(ctx context.Context, url string) (*RawPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	// One read of the whole body; either the full buffer or the stream error.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK || len(body) <= f.cfg.MinBodyBytes {
		return nil, &BlockedError{URL: url, Status: resp.StatusCode, Length: len(body)}
	}

	html := string(body)
	if sig := f.blockSignature(html); sig != "" {
		return nil, &BlockedError{URL: url, Status: resp.StatusCode, Length: len(body), Signature: sig}
	}

	return &RawPage{
		URL:       url,
		FinalURL:  resp.Request.URL.String(),
		Transport: Direct,
		Status:    resp.StatusCode,
		HTML:      html,
		FetchedAt: f.now(),
	}, nil
}

func (f *Fetcher) blockSignature(body string) string {
	for _, sig := range f.cfg.BlockSignatures {
		if sig != "" && strings.Contains(body, sig) {
			return sig
		}
	}
	return ""
}

// rendered drives one isolated browser session. The session is closed on
// every return path, including timeouts.
func (f *Fetcher) rendered(ctx context.Context, url string, wait browser.WaitCondition) (*RawPage, error) {
	if f.launcher == nil {
		return nil, errors.New("rendered transport requires a browser launcher")
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.NavigationTimeout)
	defer cancel()

	tab, err := f.launcher.Launch(ctx, f.cfg.Browser)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("launching browser: %w", err)}
	}
	defer tab.Close()

	if err := tab.Goto(ctx, url, wait); err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("navigating: %w", err)}
	}

	var html, text string
	if err := tab.Evaluate(ctx, browser.ExprOuterHTML, &html); err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("reading document: %w", err)}
	}
	if err := tab.Evaluate(ctx, browser.ExprInnerText, &text); err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("reading text: %w", err)}
	}
	if strings.TrimSpace(html) == "" {
		return nil, &BlockedError{URL: url, Status: http.StatusOK, Length: 0}
	}

	return &RawPage{
		URL:       url,
		FinalURL:  url,
		Transport: Rendered,
		Status:    http.StatusOK,
		HTML:      html,
		Text:      text,
		FetchedAt: f.now(),
	}, nil
}
