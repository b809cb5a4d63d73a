package scraper

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nycstandup/showcatalog/internal/browser"
	"github.com/nycstandup/showcatalog/internal/extract"
	"github.com/nycstandup/showcatalog/internal/fetch"
	"github.com/nycstandup/showcatalog/internal/logger"
	"github.com/nycstandup/showcatalog/internal/normalize"
	"github.com/nycstandup/showcatalog/internal/show"
	"github.com/nycstandup/showcatalog/internal/venue"
)

// Fetcher retrieves a venue's listing page.
type Fetcher interface {
	Fetch(ctx context.Context, url string, transport fetch.Transport, wait browser.WaitCondition) (*fetch.RawPage, error)
}

// Store is the catalog the run writes to.
type Store interface {
	ReplaceAll(ctx context.Context, records []show.Record) (int, error)
	GetShows(ctx context.Context, f show.Filter) ([]show.Record, error)
	PurgeOlderThan(ctx context.Context, days int) (int64, error)
}

// Options controls run policy.
type Options struct {
	// CourtesyDelay spaces the starts of consecutive direct fetches.
	CourtesyDelay time.Duration
	// DefaultSettle applies to rendered venues that set no settle delay.
	DefaultSettle time.Duration
	// KeepCatalogOnEmpty skips the write when no venue produced a record.
	KeepCatalogOnEmpty bool
	// PurgeAfterDays, when positive, purges old rows after a successful write.
	PurgeAfterDays int
	// DryRun runs every pipeline but never writes.
	DryRun bool
	// Location is the venues' timezone.
	Location *time.Location
}

// DefaultCourtesyDelay is the pause between direct venues.
const DefaultCourtesyDelay = time.Second

// Scraper orchestrates catalog refreshes.
type Scraper struct {
	fetcher Fetcher
	store   Store
	opts    Options
	log     *logger.Logger
	now     func() time.Time
	newID   func() string
}

// New creates a Scraper. store may be nil for dry runs.
func New(fetcher Fetcher, store Store, log *logger.Logger, opts Options) *Scraper {
	if log == nil {
		log = logger.Discard()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.CourtesyDelay < 0 {
		opts.CourtesyDelay = 0
	}
	return &Scraper{
		fetcher: fetcher,
		store:   store,
		opts:    opts,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// VenueResult is the outcome of one venue pipeline.
type VenueResult struct {
	ID          string
	Venue       string
	Transport   fetch.Transport
	Candidates  int
	Records     []show.Record
	ParseErrors int
	Err         error
	Elapsed     time.Duration
}

// RunResult summarizes a run.
type RunResult struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Venues     []VenueResult
	Records    []show.Record
	Written    int
	Replaced   bool
	SkipReason string
	Diff       *show.DiffResult
	Purged     int64
	Metrics    logger.Snapshot
}

// Failed returns the venues whose pipeline failed.
func (r *RunResult) Failed() []VenueResult {
	var out []VenueResult
	for _, v := range r.Venues {
		if v.Err != nil {
			out = append(out, v)
		}
	}
	return out
}

// Run refreshes the catalog from sources. Venue failures are recorded in the
// result; the returned error is non-nil only when the run could not complete
// its write (or was cancelled), in which case the catalog is unchanged.
func (s *Scraper) Run(ctx context.Context, sources []venue.Source) (*RunResult, error) {
	result := &RunResult{
		RunID:     s.newID(),
		StartedAt: s.now(),
		Venues:    make([]VenueResult, len(sources)),
	}
	log := s.log.With(logger.Fields{"run_id": result.RunID})
	metrics := logger.NewMetrics()

	log.Info("scrape run started", logger.Fields{"venues": len(sources), "dry_run": s.opts.DryRun})

	var direct, rendered []int
	for i, src := range sources {
		if src.Transport == fetch.Rendered {
			rendered = append(rendered, i)
		} else {
			direct = append(direct, i)
		}
	}

	var all errgroup.Group
	all.Go(func() error {
		s.runDirect(ctx, sources, direct, result.Venues, log, metrics)
		return nil
	})
	all.Go(func() error {
		s.runRendered(ctx, sources, rendered, result.Venues, log, metrics)
		return nil
	})
	_ = all.Wait()

	for _, v := range result.Venues {
		result.Records = append(result.Records, v.Records...)
	}
	metrics.SetGauge("run.records", float64(len(result.Records)))
	metrics.SetGauge("run.failed_venues", float64(len(result.Failed())))

	if err := ctx.Err(); err != nil {
		return s.finish(result, log, metrics), fmt.Errorf("scrape run cancelled: %w", err)
	}

	if err := s.commit(ctx, result, log, metrics); err != nil {
		log.Error("catalog write failed", logger.Fields{"records": len(result.Records)}, err)
		return s.finish(result, log, metrics), err
	}
	return s.finish(result, log, metrics), nil
}

func (s *Scraper) runDirect(ctx context.Context, sources []venue.Source, idx []int, out []VenueResult, log *logger.Logger, metrics *logger.Metrics) {
	limit := rate.Inf
	if s.opts.CourtesyDelay > 0 {
		limit = rate.Every(s.opts.CourtesyDelay)
	}
	limiter := rate.NewLimiter(limit, 1)

	for _, i := range idx {
		if err := limiter.Wait(ctx); err != nil {
			out[i] = skipped(sources[i], err)
			continue
		}
		out[i] = s.pipeline(ctx, sources[i], log, metrics)
	}
}

func (s *Scraper) runRendered(ctx context.Context, sources []venue.Source, idx []int, out []VenueResult, log *logger.Logger, metrics *logger.Metrics) {
	if len(idx) == 0 {
		return
	}
	var g errgroup.Group
	g.SetLimit(len(idx))
	for _, i := range idx {
		i := i
		g.Go(func() error {
			out[i] = s.pipeline(ctx, sources[i], log, metrics)
			return nil
		})
	}
	_ = g.Wait()
}

func skipped(src venue.Source, err error) VenueResult {
	return VenueResult{ID: src.ID, Venue: src.Venue.Name, Transport: src.Transport, Err: err}
}

// pipeline fetches, extracts and normalizes one venue. It never panics.
func (s *Scraper) pipeline(ctx context.Context, src venue.Source, runLog *logger.Logger, metrics *logger.Metrics) (res VenueResult) {
	start := time.Now()
	log := runLog.With(logger.Fields{"venue": src.Venue.Name})
	res = VenueResult{ID: src.ID, Venue: src.Venue.Name, Transport: src.Transport}

	defer func() {
		if r := recover(); r != nil {
			res.Records = nil
			res.Err = fmt.Errorf("venue %s panicked: %v", src.ID, r)
			log.Error("venue pipeline panicked", logger.Fields{"stack": string(debug.Stack())}, res.Err)
		}
		res.Elapsed = time.Since(start)
		metrics.RecordTiming("venue."+src.ID, res.Elapsed)
		s.recordOutcome(res, log, metrics)
	}()

	wait := src.Wait
	if wait.Settle == 0 && src.Transport == fetch.Rendered {
		wait.Settle = s.opts.DefaultSettle
	}

	fetchStart := time.Now()
	page, err := s.fetcher.Fetch(ctx, src.ListingURL(), src.Transport, wait)
	metrics.RecordTiming("fetch."+string(src.Transport), time.Since(fetchStart))
	if err != nil {
		res.Err = err
		return res
	}

	ec := extract.Context{
		Venue:    src.Venue,
		Location: s.opts.Location,
		Now:      s.now(),
		OnParseError: func(pe *extract.ParseError) {
			res.ParseErrors++
			metrics.IncrCounter("extract.parse_errors")
			log.Debug("skipped structured data block", logger.Fields{"block": pe.Block, "reason": pe.Err.Error()})
		},
	}
	parts, err := extract.Run(src.Strategy, page, src.Extract, ec)
	if err != nil {
		res.Err = fmt.Errorf("extracting %s: %w", src.ID, err)
		return res
	}

	res.Candidates = len(parts)
	res.Records = normalize.All(parts, src.Venue, normalize.Options{Neighborhood: src.Extract.Neighborhood})
	return res
}

func (s *Scraper) recordOutcome(res VenueResult, log *logger.Logger, metrics *logger.Metrics) {
	fields := logger.Fields{
		"transport":  string(res.Transport),
		"elapsed_ms": res.Elapsed.Milliseconds(),
	}
	switch {
	case res.Err == nil:
		metrics.IncrCounter("venue.ok")
		metrics.AddCounter("shows.extracted", int64(len(res.Records)))
		fields["shows"] = len(res.Records)
		if res.ParseErrors > 0 {
			fields["parse_errors"] = res.ParseErrors
		}
		log.Info("venue scraped", fields)
	case errors.Is(res.Err, fetch.ErrBlocked):
		metrics.IncrCounter("venue.blocked")
		log.Warn("venue blocked", fields, res.Err)
	case errors.Is(res.Err, fetch.ErrNetwork):
		metrics.IncrCounter("venue.network_error")
		log.Warn("venue unreachable", fields, res.Err)
	default:
		metrics.IncrCounter("venue.failed")
		log.Error("venue failed", fields, res.Err)
	}
}

// commit performs the single catalog write for the run.
func (s *Scraper) commit(ctx context.Context, result *RunResult, log *logger.Logger, metrics *logger.Metrics) error {
	switch {
	case s.opts.DryRun:
		result.SkipReason = "dry run"
	case len(result.Records) == 0 && s.opts.KeepCatalogOnEmpty:
		result.SkipReason = "no venue produced shows; keeping previous catalog"
	case s.store == nil:
		return errors.New("no store configured")
	}

	if s.store != nil {
		previous, err := s.store.GetShows(ctx, show.Filter{})
		if err != nil {
			log.Warn("could not read previous catalog for diff", nil, err)
		} else {
			result.Diff = show.Diff(previous, result.Records)
		}
	}

	if result.SkipReason != "" {
		log.Info("catalog write skipped", logger.Fields{"reason": result.SkipReason})
		return nil
	}

	written, err := s.store.ReplaceAll(ctx, result.Records)
	if err != nil {
		metrics.IncrCounter("store.replace_failed")
		return err
	}
	result.Written = written
	result.Replaced = true
	metrics.SetGauge("catalog.size", float64(written))

	if s.opts.PurgeAfterDays > 0 {
		purged, err := s.store.PurgeOlderThan(ctx, s.opts.PurgeAfterDays)
		if err != nil {
			log.Warn("post-run purge failed", logger.Fields{"days": s.opts.PurgeAfterDays}, err)
		} else {
			result.Purged = purged
		}
	}
	return nil
}

func (s *Scraper) finish(result *RunResult, log *logger.Logger, metrics *logger.Metrics) *RunResult {
	result.FinishedAt = s.now()
	metrics.RecordTiming("run", result.FinishedAt.Sub(result.StartedAt))
	result.Metrics = metrics.GetSnapshot()

	fields := result.Metrics.Fields()
	fields["records"] = len(result.Records)
	fields["written"] = result.Written
	fields["replaced"] = result.Replaced
	if result.Diff != nil {
		fields["added"] = len(result.Diff.Added)
		fields["removed"] = len(result.Diff.Removed)
	}
	log.Info("scrape run finished", fields)
	return result
}
