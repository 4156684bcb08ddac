// Package crawl drives the whole extraction: challenge solving, session
// acquisition, page walking, record enrichment, and in full-crawl mode the
// query loop with cross-query deduplication.
//
// Everything runs on a single sequential flow of control. Delays between
// network-facing operations are deliberate pacing, not a performance knob.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/alpharomercoma/viableview-scraper/dedup"
	"github.com/alpharomercoma/viableview-scraper/models"
	"github.com/alpharomercoma/viableview-scraper/retry"
)

// Solver produces verification tokens; see the captcha package for the live
// implementation.
type Solver interface {
	Solve(ctx context.Context) (string, error)
	Reload(ctx context.Context) error
}

// SessionAcquirer exchanges a verification token for a query-scoped session
// credential.
type SessionAcquirer interface {
	Acquire(ctx context.Context, token, query string) (string, error)
}

// PageFetcher retrieves one page of search results under a credential.
type PageFetcher interface {
	FetchPage(ctx context.Context, credential, query string, page int) (*models.PageResult, error)
}

// Enricher completes one search hit into an output record. It never fails;
// unenrichable hits fall back to their search fields.
type Enricher interface {
	Enrich(ctx context.Context, hit models.SearchHit) models.BusinessRecord
}

// Options tunes the orchestrator's pacing and retry budget.
type Options struct {
	// Attempts is the challenge/session retry budget per query.
	Attempts int

	// RequestDelay paces page requests and the gaps between full-crawl
	// queries. Zero disables pacing (tests).
	RequestDelay time.Duration

	// DetailDelay paces detail fetches. Zero disables pacing.
	DetailDelay time.Duration

	// Backoff is the delay strategy for rate-limited challenge attempts.
	Backoff retry.BackoffStrategy
}

// Orchestrator owns the session state for one crawl run. Not safe for
// concurrent use: it is built around a single browser session.
type Orchestrator struct {
	solver   Solver
	sessions SessionAcquirer
	pages    PageFetcher
	enricher Enricher

	attempts      int
	backoff       retry.BackoffStrategy
	pageLimiter   *rate.Limiter
	detailLimiter *rate.Limiter

	// token is the verification token held across queries. It stays valid
	// until a session acquisition demonstrates otherwise.
	token string
}

// New creates an Orchestrator.
func New(solver Solver, sessions SessionAcquirer, pages PageFetcher, enricher Enricher, opts Options) *Orchestrator {
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.Backoff == nil {
		opts.Backoff = retry.NewExponentialBackoff(time.Second, 60*time.Second)
	}
	return &Orchestrator{
		solver:        solver,
		sessions:      sessions,
		pages:         pages,
		enricher:      enricher,
		attempts:      opts.Attempts,
		backoff:       opts.Backoff,
		pageLimiter:   newLimiter(opts.RequestDelay),
		detailLimiter: newLimiter(opts.DetailDelay),
	}
}

func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// RunQuery crawls every result page for one query and returns the enriched
// records in page order. It fails only when the challenge/session retry
// budget is exhausted or page 1 cannot be fetched.
func (o *Orchestrator) RunQuery(ctx context.Context, query string) ([]models.BusinessRecord, error) {
	state := &CrawlState{Query: query, Retries: o.attempts}

	if err := o.acquireSession(ctx, state); err != nil {
		return nil, err
	}
	return o.crawlPages(ctx, state)
}

// acquireSession walks NEED_CHALLENGE through HAVE_SESSION: solve (or reuse)
// a verification token, exchange it for a credential. Rate-limited challenge
// attempts back off exponentially; any other failure reloads the challenge
// surface and tries fresh. A token that fails the exchange is discarded, as
// it has typically expired rather than the target being unreachable.
func (o *Orchestrator) acquireSession(ctx context.Context, state *CrawlState) error {
	attempt := 0
	for state.Retries > 0 {
		state.Retries--
		attempt++

		token := o.token
		if token == "" {
			solved, err := o.solver.Solve(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return models.NewCrawlError(models.KindFatal, "crawl cancelled", ctx.Err())
				}
				switch models.KindOf(err) {
				case models.KindRateLimited:
					delay := o.backoff.NextDelay(attempt)
					slog.Warn("challenge rate limited, backing off",
						"attempt", attempt, "delay", delay, "remaining", state.Retries)
					if werr := retry.Wait(ctx, delay); werr != nil {
						return models.NewCrawlError(models.KindFatal, "crawl cancelled during backoff", werr)
					}
				default:
					slog.Warn("challenge attempt failed, reloading surface",
						"attempt", attempt, "remaining", state.Retries, "error", err)
					if rerr := o.solver.Reload(ctx); rerr != nil {
						slog.Warn("challenge surface reload failed", "error", rerr)
					}
				}
				continue
			}
			token = solved
		}

		cred, err := o.sessions.Acquire(ctx, token, state.Query)
		if err != nil {
			slog.Warn("session acquisition failed, re-solving challenge",
				"query", state.Query, "remaining", state.Retries, "error", err)
			o.token = ""
			if rerr := o.solver.Reload(ctx); rerr != nil {
				slog.Warn("challenge surface reload failed", "error", rerr)
			}
			continue
		}

		// The token survived an exchange; keep it for the next query.
		o.token = token
		state.Credential = cred
		return nil
	}

	return models.NewCrawlError(models.KindFatal,
		fmt.Sprintf("challenge/session retry budget (%d) exhausted for query %q", o.attempts, state.Query), nil)
}

// crawlPages walks PAGING to DONE. The page count comes from page 1 alone;
// if the underlying result set shifts mid-crawl some pages may be skipped
// or duplicated, which is an accepted limitation of the portal's paging.
// A failed page is logged and skipped so the rest of the crawl survives.
func (o *Orchestrator) crawlPages(ctx context.Context, state *CrawlState) ([]models.BusinessRecord, error) {
	first, err := o.pages.FetchPage(ctx, state.Credential, state.Query, 1)
	if err != nil {
		return nil, err
	}

	state.TotalPages = first.TotalPages
	if state.TotalPages < 1 {
		state.TotalPages = 1
	}
	slog.Info("search results found",
		"query", state.Query, "total", first.Total, "totalPages", state.TotalPages)

	records := make([]models.BusinessRecord, 0, first.Total)
	records = append(records, o.enrichAll(ctx, first.Results)...)

	for page := 2; page <= state.TotalPages; page++ {
		if err := o.pageLimiter.Wait(ctx); err != nil {
			return records, models.NewCrawlError(models.KindFatal, "crawl cancelled", err)
		}

		pr, err := o.pages.FetchPage(ctx, state.Credential, state.Query, page)
		if err != nil {
			slog.Error("page fetch failed, skipping page",
				"query", state.Query, "page", page, "error", err)
			continue
		}
		records = append(records, o.enrichAll(ctx, pr.Results)...)
	}

	slog.Info("query crawl done", "query", state.Query, "records", len(records))
	return records, nil
}

// enrichAll enriches a page's hits in order, pacing the detail fetches.
func (o *Orchestrator) enrichAll(ctx context.Context, hits []models.SearchHit) []models.BusinessRecord {
	out := make([]models.BusinessRecord, 0, len(hits))
	for _, hit := range hits {
		if hit.ID != "" {
			if err := o.detailLimiter.Wait(ctx); err != nil {
				// Cancelled: the enricher falls back to search fields.
				slog.Debug("detail pacing interrupted", "error", err)
			}
		}
		out = append(out, o.enricher.Enrich(ctx, hit))
	}
	return out
}

// RunFull crawls every query in order, reusing the solved verification
// token where possible and merging each query's records through a shared
// deduplication ledger. One query exhausting its retry budget is logged and
// does not stop the remaining queries. Only cancellation aborts the loop.
func (o *Orchestrator) RunFull(ctx context.Context, queries []string) ([]models.BusinessRecord, error) {
	ledger := dedup.NewLedger()
	merged := make([]models.BusinessRecord, 0)

	for i, query := range queries {
		if ctx.Err() != nil {
			return merged, models.NewCrawlError(models.KindFatal, "full crawl cancelled", ctx.Err())
		}

		slog.Info("full crawl query starting",
			"query", query, "position", fmt.Sprintf("%d/%d", i+1, len(queries)))

		records, err := o.RunQuery(ctx, query)
		if err != nil {
			slog.Error("query failed, moving to next", "query", query, "error", err)
			continue
		}

		before := len(merged)
		for _, rec := range records {
			if ledger.Accept(rec) {
				merged = append(merged, rec)
			}
		}
		slog.Info("full crawl query done",
			"query", query, "records", len(records), "new", len(merged)-before, "uniqueTotal", len(merged))

		// Politeness gap before the next query.
		if i < len(queries)-1 {
			if err := o.pageLimiter.Wait(ctx); err != nil {
				return merged, models.NewCrawlError(models.KindFatal, "full crawl cancelled", err)
			}
		}
	}

	slog.Info("full crawl complete", "unique", len(merged))
	return merged, nil
}
