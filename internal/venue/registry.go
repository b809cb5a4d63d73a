package venue

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nycstandup/showcatalog/internal/extract"
	"github.com/nycstandup/showcatalog/internal/fetch"
)

// Override is a configured venue entry. Empty fields keep the built-in
// value; an id that matches no built-in adds a venue.
type Override struct {
	ID            string          `toml:"id"`
	Name          string          `toml:"name"`
	Address       string          `toml:"address"`
	Neighborhood  string          `toml:"neighborhood"`
	URL           string          `toml:"url"`
	PageURL       string          `toml:"page_url"`
	Transport     string          `toml:"transport"`
	Strategy      string          `toml:"strategy"`
	Extract       *extract.Config `toml:"extract"` // replaces the built-in options wholesale
	WaitSelector  string          `toml:"wait_selector"`
	SettleSeconds float64         `toml:"settle_seconds"`
	ScrollY       int             `toml:"scroll_y"`
	Disabled      *bool           `toml:"disabled"`
}

// Registry is an ordered set of sources keyed by id.
type Registry struct {
	sources []Source
	index   map[string]int
}

// NewRegistry builds a registry from sources, rejecting duplicate ids.
func NewRegistry(sources []Source) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(sources))}
	for _, s := range sources {
		s.ID = normalizeID(s.ID)
		if _, dup := r.index[s.ID]; dup {
			return nil, fmt.Errorf("duplicate venue id %q", s.ID)
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		r.index[s.ID] = len(r.sources)
		r.sources = append(r.sources, s)
	}
	return r, nil
}

// Load returns the built-in registry with overrides applied.
func Load(overrides []Override) (*Registry, error) {
	r, err := NewRegistry(Builtin())
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		if err := r.apply(o); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) apply(o Override) error {
	id := normalizeID(o.ID)
	if id == "" {
		return fmt.Errorf("venue override: id is required")
	}

	i, exists := r.index[id]
	var s Source
	if exists {
		s = r.sources[i]
	} else {
		s = Source{ID: id, Transport: fetch.Direct}
	}

	setString(&s.Venue.Name, o.Name)
	setString(&s.Venue.Address, o.Address)
	setString(&s.Venue.Neighborhood, o.Neighborhood)
	setString(&s.Venue.URL, o.URL)
	setString(&s.PageURL, o.PageURL)
	setString(&s.Wait.Selector, o.WaitSelector)
	if o.Transport != "" {
		t, err := fetch.ParseTransport(o.Transport)
		if err != nil {
			return fmt.Errorf("venue %s: %w", id, err)
		}
		s.Transport = t
	}
	if o.Strategy != "" {
		k, err := extract.ParseKind(o.Strategy)
		if err != nil {
			return fmt.Errorf("venue %s: %w", id, err)
		}
		s.Strategy = k
	}
	if o.Extract != nil {
		s.Extract = *o.Extract
	}
	if o.SettleSeconds > 0 {
		s.Wait.Settle = time.Duration(o.SettleSeconds * float64(time.Second))
	}
	if o.ScrollY > 0 {
		s.Wait.ScrollY = o.ScrollY
	}
	if o.Disabled != nil {
		s.Disabled = *o.Disabled
	}

	if err := s.Validate(); err != nil {
		return err
	}
	if exists {
		r.sources[i] = s
	} else {
		r.index[id] = len(r.sources)
		r.sources = append(r.sources, s)
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// All returns every source in registry order, disabled ones included.
func (r *Registry) All() []Source {
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Enabled returns the sources that take part in a run.
func (r *Registry) Enabled() []Source {
	var out []Source
	for _, s := range r.sources {
		if !s.Disabled {
			out = append(out, s)
		}
	}
	return out
}

// Get looks up a source by id or venue name, case-insensitively.
func (r *Registry) Get(key string) (Source, bool) {
	if i, ok := r.index[normalizeID(key)]; ok {
		return r.sources[i], true
	}
	for _, s := range r.sources {
		if strings.EqualFold(s.Venue.Name, strings.TrimSpace(key)) {
			return s, true
		}
	}
	return Source{}, false
}

// Select resolves the named venues, or every enabled source when keys is
// empty. Naming a disabled venue selects it.
func (r *Registry) Select(keys []string) ([]Source, error) {
	if len(keys) == 0 {
		return r.Enabled(), nil
	}
	var (
		out     []Source
		unknown []string
		seen    = make(map[string]bool)
	)
	for _, k := range keys {
		s, ok := r.Get(k)
		if !ok {
			unknown = append(unknown, k)
			continue
		}
		if !seen[s.ID] {
			seen[s.ID] = true
			out = append(out, s)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown venue(s): %s", strings.Join(unknown, ", "))
	}
	return out, nil
}
