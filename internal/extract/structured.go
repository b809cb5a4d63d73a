package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nycstandup/showcatalog/internal/fetch"
	"github.com/nycstandup/showcatalog/internal/show"
)

// ParseError reports a structured-data block that could not be decoded.
// Such blocks are skipped; the error is only surfaced to observers.
type ParseError struct {
	Block int
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("structured data block %d: %v", e.Block, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type structuredData struct{}

func (structuredData) Extract(page *fetch.RawPage, cfg Config, ec Context) ([]show.Partial, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var out []show.Partial
	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, sel *goquery.Selection) {
		items, err := decodeBlock(sel.Text())
		if err != nil {
			if ec.OnParseError != nil {
				ec.OnParseError(&ParseError{Block: i, Err: err})
			}
			return
		}
		for _, item := range items {
			if !isEvent(item) {
				continue
			}
			p, ok := eventToPartial(item, cfg, ec)
			if ok {
				out = append(out, p)
			}
		}
	})
	return out, nil
}

// decodeBlock parses one JSON-LD script body into its item list, unwrapping
// top-level arrays and @graph containers.
func decodeBlock(raw string) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(strings.TrimSpace(raw))))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return flattenItems(v), nil
}

func flattenItems(v any) []map[string]any {
	switch t := v.(type) {
	case []any:
		var out []map[string]any
		for _, e := range t {
			out = append(out, flattenItems(e)...)
		}
		return out
	case map[string]any:
		if graph, ok := t["@graph"]; ok {
			return flattenItems(graph)
		}
		return []map[string]any{t}
	default:
		return nil
	}
}

func isEvent(item map[string]any) bool {
	switch t := item["@type"].(type) {
	case string:
		return t == "Event" || t == "ComedyEvent"
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok && (s == "Event" || s == "ComedyEvent") {
				return true
			}
		}
	}
	return false
}

func eventToPartial(item map[string]any, cfg Config, ec Context) (show.Partial, bool) {
	p := show.Partial{
		Title:       stringField(item, "name"),
		Description: stringField(item, "description"),
		TicketLink:  stringField(item, "url"),
	}
	if p.TicketLink == "" {
		p.TicketLink = ec.Venue.URL
	}
	p.Comedians = show.ExtractComedians(p.Title)
	p.Price = offerPrice(item["offers"])

	if raw := stringField(item, "startDate"); raw != "" {
		start, hasClock, ok := parseStartDate(raw, ec.Location)
		if !ok {
			return show.Partial{}, false
		}
		p.Stamp(start.In(ec.Location), hasClock)
	}
	cfg.applyDefaults(&p)
	return p, true
}

var startLayouts = []struct {
	layout   string
	hasClock bool
	zoned    bool
}{
	{time.RFC3339, true, true},
	{"2006-01-02T15:04:05.999999999Z07:00", true, true},
	{"2006-01-02T15:04Z07:00", true, true},
	{"2006-01-02T15:04:05-0700", true, true},
	{"2006-01-02T15:04:05", true, false},
	{"2006-01-02T15:04", true, false},
	{"2006-01-02 15:04:05", true, false},
	{"2006-01-02 15:04", true, false},
	{show.DateLayout, false, false},
}

// parseStartDate reads a schema.org startDate. Values without an offset are
// taken as venue-local wall time.
func parseStartDate(raw string, loc *time.Location) (time.Time, bool, bool) {
	raw = strings.TrimSpace(raw)
	for _, l := range startLayouts {
		var (
			t   time.Time
			err error
		)
		if l.zoned {
			t, err = time.Parse(l.layout, raw)
		} else {
			t, err = time.ParseInLocation(l.layout, raw, loc)
		}
		if err == nil {
			return t, l.hasClock, true
		}
	}
	return time.Time{}, false, false
}

// offerPrice renders the first offer's price, falling back to lowPrice.
func offerPrice(offers any) string {
	var offer map[string]any
	switch t := offers.(type) {
	case map[string]any:
		offer = t
	case []any:
		if len(t) > 0 {
			offer, _ = t[0].(map[string]any)
		}
	}
	if offer == nil {
		return ""
	}
	if p, ok := renderPrice(offer["price"]); ok {
		return p
	}
	if p, ok := renderPrice(offer["lowPrice"]); ok {
		return p
	}
	return ""
}

func renderPrice(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "$"))
	default:
		return "", false
	}
	if s == "" {
		return "", false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == 0 {
		return show.PriceFree, true
	}
	return "$" + s, true
}

func stringField(item map[string]any, key string) string {
	switch t := item[key].(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}
