package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/chromedp"
	"golang.org/x/text/language"
)

// Chrome launches headless Chrome sessions through chromedp.
type Chrome struct{}

// NewChrome returns a Chrome launcher.
func NewChrome() *Chrome {
	return &Chrome{}
}

// Launch starts a fresh browser process with its own profile. The caller owns
// the returned Page and must Close it on every path.
func (c *Chrome) Launch(ctx context.Context, opts Options) (Page, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.Flag("lang", localeFor(opts.Country)),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UseProxy {
		if opts.ProxyURL == "" {
			return nil, fmt.Errorf("proxy requested but no proxy url configured")
		}
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.ProxyURL))
	}

	// The browser lives until Close, independent of the launch context.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	page := &chromePage{ctx: tabCtx, cancel: func() {
		cancelTab()
		cancelAlloc()
	}}

	started := make(chan error, 1)
	go func() { started <- chromedp.Run(tabCtx) }()
	select {
	case err := <-started:
		if err != nil {
			page.Close()
			return nil, fmt.Errorf("starting browser: %w", err)
		}
	case <-ctx.Done():
		page.Close()
		return nil, fmt.Errorf("starting browser: %w", ctx.Err())
	}
	return page, nil
}

type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

func (p *chromePage) Goto(ctx context.Context, url string, wait WaitCondition) error {
	selector := wait.Selector
	if selector == "" {
		selector = "body"
	}
	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady(selector, chromedp.ByQuery),
	}
	if wait.Settle > 0 {
		actions = append(actions, chromedp.Sleep(wait.Settle))
	}
	if wait.ScrollY > 0 {
		actions = append(actions, chromedp.Evaluate(fmt.Sprintf("window.scrollTo(0, %d)", wait.ScrollY), nil))
		if wait.Settle > 0 {
			actions = append(actions, chromedp.Sleep(wait.Settle))
		}
	}
	return p.run(ctx, actions...)
}

func (p *chromePage) Evaluate(ctx context.Context, expression string, out any) error {
	return p.run(ctx, chromedp.Evaluate(expression, out))
}

// run executes actions on the tab, bounded by ctx.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}

	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func (p *chromePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.cancel()
	return nil
}

// localeFor maps a region code to a browser locale such as "en-US".
func localeFor(country string) string {
	country = strings.TrimSpace(country)
	if country == "" {
		return "en-US"
	}
	region, err := language.ParseRegion(strings.ToUpper(country))
	if err != nil {
		return "en-US"
	}
	tag, err := language.Compose(language.English, region)
	if err != nil {
		return "en-US"
	}
	return tag.String()
}
