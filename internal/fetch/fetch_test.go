package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nycstandup/showcatalog/internal/browser"
)

func page(extra string) string {
	return "<html><body>" + strings.Repeat("<p>Tonight at the club</p>", 300) + extra + "</body></html>"
}

func TestFetchDirect(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     error
		wantBlocked string
	}{
		{
			name:   "valid page",
			status: http.StatusOK,
			body:   page(""),
		},
		{
			name:    "not found is blocked",
			status:  http.StatusNotFound,
			body:    page(""),
			wantErr: ErrBlocked,
		},
		{
			name:    "short body is blocked",
			status:  http.StatusOK,
			body:    "<html><body>Just a moment...</body></html>",
			wantErr: ErrBlocked,
		},
		{
			name:        "bot protection signature",
			status:      http.StatusOK,
			body:        page(`<div id="captcha-box"></div>`),
			wantErr:     ErrBlocked,
			wantBlocked: "captcha",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla/5.0") {
					t.Errorf("User-Agent = %q, want a browser user agent", ua)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			f := New(Config{}, nil)
			got, err := f.Fetch(context.Background(), server.URL, Direct, browser.WaitCondition{})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Fetch() error = %v, want %v", err, tt.wantErr)
				}
				var blocked *BlockedError
				if tt.wantBlocked != "" && (!errors.As(err, &blocked) || blocked.Signature != tt.wantBlocked) {
					t.Errorf("Fetch() signature = %+v, want %q", blocked, tt.wantBlocked)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() unexpected error: %v", err)
			}
			if got.Transport != Direct || got.Status != http.StatusOK {
				t.Errorf("Fetch() = %+v", got)
			}
			if got.HTML != tt.body {
				t.Error("Fetch() body mismatch")
			}
		})
	}
}

func TestFetchDirectFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page("")))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	got, err := New(Config{}, nil).Fetch(context.Background(), server.URL+"/old", Direct, browser.WaitCondition{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.HasSuffix(got.FinalURL, "/new") {
		t.Errorf("FinalURL = %q, want redirect target", got.FinalURL)
	}
}

func TestFetchDirectNetworkErrors(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := New(Config{}, nil).Fetch(context.Background(), url, Direct, browser.WaitCondition{})
		if !errors.Is(err, ErrNetwork) {
			t.Fatalf("Fetch() error = %v, want network error", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		f := New(Config{Timeout: 50 * time.Millisecond}, nil)
		_, err := f.Fetch(context.Background(), server.URL, Direct, browser.WaitCondition{})
		if !errors.Is(err, ErrNetwork) {
			t.Fatalf("Fetch() error = %v, want network error", err)
		}
	})
}

type fakePage struct {
	mu      sync.Mutex
	html    string
	text    string
	gotoErr error
	block   bool // Goto waits for ctx cancellation
	closed  int
	visited []string
}

func (p *fakePage) Goto(ctx context.Context, url string, wait browser.WaitCondition) error {
	p.mu.Lock()
	p.visited = append(p.visited, url)
	p.mu.Unlock()
	if p.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return p.gotoErr
}

func (p *fakePage) Evaluate(ctx context.Context, expression string, out any) error {
	s, ok := out.(*string)
	if !ok {
		return errors.New("unexpected output type")
	}
	switch expression {
	case browser.ExprOuterHTML:
		*s = p.html
	case browser.ExprInnerText:
		*s = p.text
	}
	return nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

type fakeLauncher struct {
	page *fakePage
	err  error
}

func (l *fakeLauncher) Launch(ctx context.Context, opts browser.Options) (browser.Page, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.page, nil
}

func TestFetchRendered(t *testing.T) {
	t.Run("success closes session", func(t *testing.T) {
		p := &fakePage{html: "<html><body><a href='/event/1'>Show</a></body></html>", text: "Fri Feb 27\n8:00 PM"}
		f := New(Config{}, &fakeLauncher{page: p})

		got, err := f.Fetch(context.Background(), "https://club.example/", Rendered, browser.WaitCondition{Settle: time.Second})
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if got.Text != p.text || got.HTML != p.html || got.Transport != Rendered {
			t.Errorf("Fetch() = %+v", got)
		}
		if p.closed != 1 {
			t.Errorf("Close called %d times, want 1", p.closed)
		}
	})

	t.Run("timeout closes session", func(t *testing.T) {
		p := &fakePage{block: true}
		f := New(Config{NavigationTimeout: 20 * time.Millisecond}, &fakeLauncher{page: p})

		_, err := f.Fetch(context.Background(), "https://club.example/", Rendered, browser.WaitCondition{})
		if !errors.Is(err, ErrNetwork) {
			t.Fatalf("Fetch() error = %v, want network error", err)
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Fetch() error = %v, want deadline exceeded in chain", err)
		}
		if p.closed != 1 {
			t.Errorf("Close called %d times, want 1", p.closed)
		}
	})

	t.Run("navigation error closes session", func(t *testing.T) {
		p := &fakePage{gotoErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}
		f := New(Config{}, &fakeLauncher{page: p})

		if _, err := f.Fetch(context.Background(), "https://club.example/", Rendered, browser.WaitCondition{}); err == nil {
			t.Fatal("Fetch() expected error")
		}
		if p.closed != 1 {
			t.Errorf("Close called %d times, want 1", p.closed)
		}
	})

	t.Run("empty document is blocked", func(t *testing.T) {
		p := &fakePage{html: "  "}
		f := New(Config{}, &fakeLauncher{page: p})

		_, err := f.Fetch(context.Background(), "https://club.example/", Rendered, browser.WaitCondition{})
		if !errors.Is(err, ErrBlocked) {
			t.Fatalf("Fetch() error = %v, want blocked", err)
		}
	})

	t.Run("no launcher", func(t *testing.T) {
		if _, err := New(Config{}, nil).Fetch(context.Background(), "https://club.example/", Rendered, browser.WaitCondition{}); err == nil {
			t.Fatal("Fetch() expected error without launcher")
		}
	})
}

func TestParseTransport(t *testing.T) {
	if got, err := ParseTransport("Rendered"); err != nil || got != Rendered {
		t.Errorf("ParseTransport(Rendered) = %q, %v", got, err)
	}
	if got, err := ParseTransport(""); err != nil || got != Direct {
		t.Errorf("ParseTransport(\"\") = %q, %v", got, err)
	}
	if _, err := ParseTransport("carrier-pigeon"); err == nil {
		t.Error("expected error for unknown transport")
	}
}
