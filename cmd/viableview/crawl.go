package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alpharomercoma/viableview-scraper/browser"
	"github.com/alpharomercoma/viableview-scraper/captcha"
	"github.com/alpharomercoma/viableview-scraper/config"
	"github.com/alpharomercoma/viableview-scraper/crawl"
	"github.com/alpharomercoma/viableview-scraper/enrich"
	"github.com/alpharomercoma/viableview-scraper/models"
	"github.com/alpharomercoma/viableview-scraper/output"
	"github.com/alpharomercoma/viableview-scraper/retry"
	"github.com/alpharomercoma/viableview-scraper/search"
	"github.com/alpharomercoma/viableview-scraper/session"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	var (
		query     string
		outPath   string
		headed    bool
		proxyURL  string
		fullCrawl bool
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl the registry and write the records as JSON",
		Long: `Crawl runs the full extraction for one search query, or for the whole
entity-type query list with --full-crawl.

Examples:
  # Crawl one query
  viableview crawl --query llc --output llc.json

  # Crawl everything, deduplicated across queries
  viableview crawl --full-crawl --output all.json

  # Solve the challenge by hand in a visible browser
  viableview crawl --query llc --headed

  # Route the browser through a proxy
  viableview crawl --query llc --proxy http://203.0.113.7:8080`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			initLogger(cfg.Log)

			if headed {
				cfg.Browser.Headless = false
			}
			if proxyURL != "" {
				cfg.Browser.Proxy = proxyURL
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runCrawl(ctx, cfg, query, outPath, fullCrawl)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "llc", "Search query")
	cmd.Flags().StringVarP(&outPath, "output", "o", "output.json", "Output file path")
	cmd.Flags().BoolVar(&headed, "headed", false, "Run the browser visibly (manual challenge solving)")
	cmd.Flags().StringVar(&proxyURL, "proxy", "", "Proxy URL for the browser")
	cmd.Flags().BoolVar(&fullCrawl, "full-crawl", false, "Crawl all entity-type queries with deduplication")

	return cmd
}

// runCrawl wires the browser session, the challenge solver, and the
// orchestration core, then runs the requested mode and persists the result.
func runCrawl(ctx context.Context, cfg *config.Config, query, outPath string, fullCrawl bool) error {
	slog.Info("viableview starting",
		"fullCrawl", fullCrawl,
		"query", query,
		"output", outPath,
		"headless", cfg.Browser.Headless,
	)

	sess, err := browser.NewSession(cfg.Browser, cfg.Target)
	if err != nil {
		return err
	}
	defer sess.Close()

	solver := captcha.NewRodSolver(sess, cfg.Captcha, !cfg.Browser.Headless)
	manager := session.NewManager(sess, cfg.Target.SearchAPIPath)
	retriever := search.NewRetriever(sess, cfg.Target.SearchAPIPath)
	enricher := enrich.NewEnricher(sess)

	attempts := cfg.Crawl.ChallengeAttempts
	if fullCrawl {
		attempts = cfg.Crawl.FullCrawlChallengeAttempts
	}

	orch := crawl.New(solver, manager, retriever, enricher, crawl.Options{
		Attempts:     attempts,
		RequestDelay: cfg.Crawl.RequestDelay,
		DetailDelay:  cfg.Crawl.DetailDelay,
		Backoff:      retry.NewExponentialBackoff(cfg.Crawl.BackoffBase, cfg.Crawl.BackoffMax),
	})

	var records []models.BusinessRecord
	if fullCrawl {
		records, err = orch.RunFull(ctx, cfg.Crawl.Queries)
	} else {
		records, err = orch.RunQuery(ctx, query)
	}
	if err != nil {
		return err
	}

	if err := output.WriteJSON(outPath, records); err != nil {
		return err
	}

	slog.Info("crawl completed", "records", len(records), "output", outPath)
	return nil
}
