package extract

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nycstandup/showcatalog/internal/fetch"
	"github.com/nycstandup/showcatalog/internal/show"
)

// DefaultBoilerplate lists words that mark a line as page furniture rather
// than a show title.
var DefaultBoilerplate = []string{"over", "tickets", "sold out", "buy", "menu", "reserve"}

const (
	titleMinLen = 4
	titleMaxLen = 59
)

type freeText struct{}

func (freeText) Extract(page *fetch.RawPage, cfg Config, ec Context) ([]show.Partial, error) {
	dates, err := newDateMatcher(cfg.DatePattern, cfg.MonthNameTable)
	if err != nil {
		return nil, err
	}

	var lines []string
	if strings.TrimSpace(page.Text) != "" {
		lines = splitLines(page.Text)
	} else {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
		if err != nil {
			return nil, fmt.Errorf("parsing HTML: %w", err)
		}
		lines = VisibleLines(doc)
	}

	boilerplate := cfg.Boilerplate
	if boilerplate == nil {
		boilerplate = DefaultBoilerplate
	}
	window := cfg.titleWindow()

	var out []show.Partial
	for i := 0; i+1 < len(lines); i++ {
		date, ok := dates.Resolve(lines[i], ec.Now, ec.Location)
		if !ok {
			continue
		}
		clock, ok := show.FindClock(lines[i+1])
		if !ok {
			continue
		}

		var p show.Partial
		p.Stamp(clock.On(date), true)
		for j := i + 2; j < len(lines) && j < i+2+window; j++ {
			if plausibleTitle(lines[j], boilerplate) {
				p.Title = lines[j]
				break
			}
		}
		p.TicketLink = ec.Venue.URL
		cfg.applyDefaults(&p)
		out = append(out, p)
	}
	return out, nil
}

// plausibleTitle accepts short, digit-free lines without boilerplate words.
func plausibleTitle(line string, boilerplate []string) bool {
	n := len([]rune(line))
	if n < titleMinLen || n > titleMaxLen {
		return false
	}
	if strings.IndexFunc(line, unicode.IsDigit) >= 0 {
		return false
	}
	lower := strings.ToLower(line)
	for _, word := range boilerplate {
		if word != "" && strings.Contains(lower, strings.ToLower(word)) {
			return false
		}
	}
	return true
}

func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = collapseSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true, "button": true,
}

var hiddenElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"head": true, "svg": true, "iframe": true,
}

// VisibleLines approximates a browser's innerText: text of visible nodes,
// broken into lines at block element boundaries, blank lines dropped.
func VisibleLines(doc *goquery.Document) []string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if hiddenElements[n.Data] {
				return
			}
			if hasAttr(n, "hidden") {
				return
			}
		}
		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte('\n')
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return splitLines(b.String())
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
