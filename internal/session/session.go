package session

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/AlvinSugijanto/job-scraper/internal/models"
	"github.com/AlvinSugijanto/job-scraper/internal/scraper"
	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State is the session lifecycle phase. All transitions happen on the single
// goroutine running Run; nothing else mutates a session.
type State string

const (
	StateIdle        State = "idle"
	StateConnecting  State = "connecting"
	StateRunning     State = "running"
	StateRateLimited State = "rate_limited"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
	StateCancelled   State = "cancelled"
)

// Fetcher retrieves one page per call and never retries internally.
type Fetcher interface {
	FetchPage(ctx context.Context, req models.SearchRequest, offset int) scraper.PageResult
	FetchJobDetail(ctx context.Context, jobID string) scraper.PageResult
}

// Parser turns fetched documents into candidate records without doing I/O.
type Parser interface {
	ParseJobCards(doc *goquery.Document) ([]models.Job, error)
	ParseJobDetail(doc *goquery.Document) (scraper.JobDetail, error)
}

// Store is the persistence collaborator. LookupIDs must answer a whole page
// of candidates in one round trip; InsertJobs must be atomic per call.
type Store interface {
	LookupIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
	InsertJobs(ctx context.Context, jobs []models.Job) error
}

// Sink receives progress events. A nil sink discards them.
type Sink func(Event)

type Deps struct {
	Fetcher Fetcher
	Parser  Parser
	Store   Store
	Sink    Sink
	Logger  zerolog.Logger
}

type Options struct {
	Backoff             Backoff
	MaxThrottleRetries  int // consecutive throttles on one page before giving up
	MaxTransientRetries int // transient fetch failures on one page before giving up
	MaxOffset           int // pagination ceiling in records
	PageDelayMin        time.Duration
	PageDelayMax        time.Duration
}

func DefaultOptions() Options {
	return Options{
		Backoff:             DefaultBackoff(),
		MaxThrottleRetries:  5,
		MaxTransientRetries: 3,
		MaxOffset:           1000,
		PageDelayMin:        2 * time.Second,
		PageDelayMax:        5 * time.Second,
	}
}

// Summary is the terminal result of a successful run.
type Summary struct {
	TotalJobs int
	NewJobs   int
	Jobs      []models.Job
}

// Session drives one scrape run: fetch, rate-limit, parse, dedupe, persist,
// report. A session runs once and is then discarded.
type Session struct {
	ID      string
	Request models.SearchRequest

	deps Deps
	opts Options
	log  zerolog.Logger

	state State

	// Overridable in tests so waits do not take wall-clock time.
	sleep     func(ctx context.Context, d time.Duration) error
	pageDelay func() time.Duration
}

func New(id string, req models.SearchRequest, deps Deps, opts Options) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	if opts.MaxThrottleRetries <= 0 {
		opts.MaxThrottleRetries = DefaultOptions().MaxThrottleRetries
	}
	if opts.MaxTransientRetries <= 0 {
		opts.MaxTransientRetries = DefaultOptions().MaxTransientRetries
	}
	if opts.MaxOffset <= 0 {
		opts.MaxOffset = DefaultOptions().MaxOffset
	}

	s := &Session{
		ID:      id,
		Request: req,
		deps:    deps,
		opts:    opts,
		log:     deps.Logger.With().Str("session", id).Logger(),
		state:   StateIdle,
		sleep:   sleepCtx,
	}
	s.pageDelay = s.randomPageDelay
	return s
}

func (s *Session) State() State {
	return s.state
}

// Run executes the whole scrape. It emits zero or more progress events and
// exactly one terminal event, except when ctx is cancelled: the subscriber
// is gone, so nothing more is delivered.
func (s *Session) Run(ctx context.Context) (Summary, error) {
	s.state = StateConnecting
	if err := s.Request.Validate(); err != nil {
		return Summary{}, s.fail(fmt.Errorf("invalid search request: %w", err))
	}

	s.emit(StartedEvent(fmt.Sprintf("Searching for %q...", s.Request.Keywords)))
	s.state = StateRunning
	s.log.Info().Str("keywords", s.Request.Keywords).Int("results_wanted", s.Request.ResultsWanted).Msg("scrape started")

	var (
		collected []models.Job
		seen      = map[string]struct{}{}
		newCount  int
		offset    int
		page      = 1
		throttles int
		transient int
	)

	for len(collected) < s.Request.ResultsWanted && offset < s.opts.MaxOffset {
		if ctx.Err() != nil {
			return Summary{}, s.cancelled(ctx)
		}

		s.emit(FetchingPageEvent(page, len(collected)))
		result := s.deps.Fetcher.FetchPage(ctx, s.Request, offset)

		switch result.Status {
		case scraper.StatusRateLimited:
			throttles++
			if throttles > s.opts.MaxThrottleRetries {
				return Summary{}, s.fail(fmt.Errorf("rate limited %d times in a row on page %d", throttles-1, page))
			}
			if err := s.throttleWait(ctx, throttles, page); err != nil {
				return Summary{}, s.cancelled(ctx)
			}
			continue // retry the same page

		case scraper.StatusTransient:
			transient++
			if transient > s.opts.MaxTransientRetries {
				return Summary{}, s.fail(fmt.Errorf("page %d fetch failed after %d attempts: %w", page, transient-1, result.Err))
			}
			s.log.Warn().Err(result.Err).Int("page", page).Int("attempt", transient).Msg("transient fetch error")
			if err := s.sleep(ctx, s.opts.Backoff.Wait(1)); err != nil {
				return Summary{}, s.cancelled(ctx)
			}
			continue

		case scraper.StatusExhausted:
			s.log.Debug().Int("page", page).Msg("no more results")
			return s.complete(collected, newCount)

		case scraper.StatusFatal:
			return Summary{}, s.fail(fmt.Errorf("page %d fetch failed: %w", page, result.Err))
		}

		throttles, transient = 0, 0

		cards, err := s.deps.Parser.ParseJobCards(result.Doc)
		if err != nil {
			return Summary{}, s.fail(fmt.Errorf("page %d parse failed: %w", page, err))
		}
		if len(cards) == 0 {
			return s.complete(collected, newCount)
		}

		// In-run dedupe, stopping exactly at the requested count.
		var pageJobs []models.Job
		for i, job := range cards {
			s.emit(ParsingEvent(i+1, len(cards)))
			if _, dup := seen[job.ID]; dup {
				continue
			}
			seen[job.ID] = struct{}{}
			pageJobs = append(pageJobs, job)
			if len(collected)+len(pageJobs) >= s.Request.ResultsWanted {
				break
			}
		}

		fresh, err := s.persistPage(ctx, pageJobs)
		if err != nil {
			if ctx.Err() != nil {
				return Summary{}, s.cancelled(ctx)
			}
			return Summary{}, s.fail(err)
		}

		collected = append(collected, pageJobs...)
		newCount += fresh
		offset += len(cards)
		page++
		s.log.Debug().Int("page", page-1).Int("collected", len(collected)).Int("new", newCount).Msg("page done")

		if len(collected) < s.Request.ResultsWanted {
			if err := s.sleep(ctx, s.pageDelay()); err != nil {
				return Summary{}, s.cancelled(ctx)
			}
		}
	}

	return s.complete(collected, newCount)
}

// persistPage enriches the page's records in place, checks them against the
// store in one lookup, fetches descriptions for the genuinely new ones when
// requested, and writes those in a single transaction. Enrichment mutates
// pageJobs so the run's summary carries the same records the store got.
// Returns the number of records inserted.
func (s *Session) persistPage(ctx context.Context, pageJobs []models.Job) (int, error) {
	if len(pageJobs) == 0 {
		return 0, nil
	}

	for i := range pageJobs {
		pageJobs[i].JobType = string(s.Request.JobType)
		pageJobs[i].SearchKeywords = s.Request.Keywords
	}

	existing, err := s.deps.Store.LookupIDs(ctx, jobIDs(pageJobs))
	if err != nil {
		return 0, fmt.Errorf("store lookup failed: %w", err)
	}

	if s.Request.FetchDescriptions {
		for i := range pageJobs {
			if _, ok := existing[pageJobs[i].ID]; ok {
				continue
			}
			if err := s.fetchDetail(ctx, &pageJobs[i]); err != nil {
				return 0, err
			}
		}
	}

	fresh := FilterNew(pageJobs, existing)
	if len(fresh) == 0 {
		return 0, nil
	}
	if err := s.deps.Store.InsertJobs(ctx, fresh); err != nil {
		return 0, fmt.Errorf("store insert failed: %w", err)
	}
	return len(fresh), nil
}

// fetchDetail fills in description and work type for one record, under the
// same throttle handling as page fetches.
func (s *Session) fetchDetail(ctx context.Context, job *models.Job) error {
	var throttles, transient int
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		result := s.deps.Fetcher.FetchJobDetail(ctx, job.ID)
		switch result.Status {
		case scraper.StatusOK:
			detail, err := s.deps.Parser.ParseJobDetail(result.Doc)
			if err != nil {
				return fmt.Errorf("job %s detail parse failed: %w", job.ID, err)
			}
			job.Description = detail.DescriptionHTML
			job.WorkType = detail.WorkType
			return nil

		case scraper.StatusRateLimited:
			throttles++
			if throttles > s.opts.MaxThrottleRetries {
				return fmt.Errorf("rate limited %d times in a row fetching job %s", throttles-1, job.ID)
			}
			if err := s.throttleWait(ctx, throttles, 0); err != nil {
				return err
			}

		case scraper.StatusTransient:
			transient++
			if transient > s.opts.MaxTransientRetries {
				return fmt.Errorf("job %s detail fetch failed after %d attempts: %w", job.ID, transient-1, result.Err)
			}
			if err := s.sleep(ctx, s.opts.Backoff.Wait(1)); err != nil {
				return err
			}

		case scraper.StatusExhausted:
			// Listing disappeared between the search page and now.
			return nil

		case scraper.StatusFatal:
			return fmt.Errorf("job %s detail fetch failed: %w", job.ID, result.Err)
		}
	}
}

// throttleWait emits the rate-limit event and sleeps the backoff duration.
// The wait aborts immediately when ctx is cancelled.
func (s *Session) throttleWait(ctx context.Context, consecutive int, page int) error {
	wait := s.opts.Backoff.Wait(consecutive)
	s.state = StateRateLimited
	s.emit(RateLimitEvent(int(wait.Seconds())))
	s.log.Info().Int("page", page).Int("consecutive", consecutive).Dur("wait", wait).Msg("rate limited")

	if err := s.sleep(ctx, wait); err != nil {
		return err
	}
	s.state = StateRunning
	return nil
}

func (s *Session) complete(collected []models.Job, newCount int) (Summary, error) {
	s.state = StateCompleted
	s.emit(CompletedEvent(len(collected), newCount))
	s.log.Info().Int("total", len(collected)).Int("new", newCount).Msg("scrape completed")
	return Summary{TotalJobs: len(collected), NewJobs: newCount, Jobs: collected}, nil
}

func (s *Session) fail(err error) error {
	s.state = StateFailed
	s.emit(ErrorEvent(err.Error()))
	s.log.Error().Err(err).Msg("scrape failed")
	return err
}

func (s *Session) cancelled(ctx context.Context) error {
	s.state = StateCancelled
	s.log.Info().Msg("scrape cancelled")
	return ctx.Err()
}

func (s *Session) emit(ev Event) {
	if s.deps.Sink != nil {
		s.deps.Sink(ev)
	}
}

func (s *Session) randomPageDelay() time.Duration {
	min, max := s.opts.PageDelayMin, s.opts.PageDelayMax
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
