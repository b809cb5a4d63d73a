package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nycstandup/showcatalog/internal/fetch"
	"github.com/nycstandup/showcatalog/internal/show"
)

type domHeuristic struct{}

func (domHeuristic) Extract(page *fetch.RawPage, cfg Config, ec Context) ([]show.Partial, error) {
	if cfg.HrefPattern == "" {
		return nil, fmt.Errorf("dom heuristic for %s: href_pattern is required", ec.Venue.Name)
	}
	hrefRe, err := regexp.Compile(cfg.HrefPattern)
	if err != nil {
		return nil, fmt.Errorf("href_pattern: %w", err)
	}
	dates, err := newDateMatcher(cfg.DatePattern, cfg.MonthNameTable)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	base := pageBase(page, ec.Venue.URL)
	minLen, maxLen := cfg.textBounds()
	seen := make(map[string]bool)
	var out []show.Partial

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !hrefRe.MatchString(href) {
			return
		}
		link := resolveLink(base, href)
		if seen[link] {
			return
		}

		text := collapseSpace(a.Text())

		var p show.Partial
		if cfg.HrefEpochParam != "" {
			start, ok := epochFromHref(link, cfg.HrefEpochParam)
			if !ok {
				return
			}
			p.Stamp(start.In(ec.Location), true)
		} else {
			if n := len([]rune(text)); n < minLen || n > maxLen {
				return
			}
			date, ok := nearestDate(a, dates, cfg.maxHops(), ec)
			if !ok {
				return
			}
			if fromText := stampClock(&p, date, text, cfg); !fromText && cfg.RequireTime {
				return
			}
		}

		seen[link] = true
		if cfg.HrefEpochParam == "" {
			// Epoch links are booking buttons; their text is not a billing.
			p.Title = collapseSpace(show.StripClock(text))
		}
		p.TicketLink = link
		cfg.applyDefaults(&p)
		out = append(out, p)
	})
	return out, nil
}

// nearestDate looks for date text on the anchor itself, then walks back
// through preceding siblings, climbing to the parent when a level runs out.
// Each element visited counts as one hop.
func nearestDate(a *goquery.Selection, dates *dateMatcher, maxHops int, ec Context) (time.Time, bool) {
	if d, ok := dates.Resolve(collapseSpace(a.Text()), ec.Now, ec.Location); ok {
		return d, true
	}
	cur := a
	for hop := 0; hop < maxHops && cur.Length() > 0; hop++ {
		prev := cur.Prev()
		if prev.Length() == 0 {
			cur = cur.Parent()
			if cur.Length() == 0 || goquery.NodeName(cur) == "body" {
				return time.Time{}, false
			}
			continue
		}
		if d, ok := dates.Resolve(collapseSpace(prev.Text()), ec.Now, ec.Location); ok {
			return d, true
		}
		cur = prev
	}
	return time.Time{}, false
}

// epochFromHref reads unix seconds from a query parameter of link.
func epochFromHref(link, param string) (time.Time, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return time.Time{}, false
	}
	raw := u.Query().Get(param)
	if raw == "" {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}

func pageBase(page *fetch.RawPage, venueURL string) *url.URL {
	for _, candidate := range []string{page.FinalURL, page.URL, venueURL} {
		if candidate == "" {
			continue
		}
		if u, err := url.Parse(candidate); err == nil && u.IsAbs() {
			return u
		}
	}
	return nil
}

func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil || base == nil {
		return strings.TrimSpace(href)
	}
	return base.ResolveReference(ref).String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
