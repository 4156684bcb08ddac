// Package proxy finds a usable free proxy for the crawl browser. The public
// proxy list is itself scraped through the browser session, and candidates
// are verified with a direct Chrome-fingerprint HTTP probe before being
// handed to the launcher.
package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/alpharomercoma/viableview-scraper/browser"
	"github.com/alpharomercoma/viableview-scraper/retry"
)

const (
	listURL = "https://free-proxy-list.net/en/"
	testURL = "https://httpbin.org/ip"

	testTimeout = 15 * time.Second
	testGap     = 300 * time.Millisecond
)

// Candidate is one row of the public proxy list.
type Candidate struct {
	IP        string
	Port      string
	Code      string
	Country   string
	Anonymity string
	HTTPS     string
}

// URL renders the candidate as a proxy URL, preferring HTTPS when the list
// marks it as supported.
func (c Candidate) URL() string {
	scheme := "http"
	if strings.EqualFold(strings.TrimSpace(c.HTTPS), "yes") {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%s", scheme, c.IP, c.Port)
}

// score ranks candidates: HTTPS beats HTTP, elite beats anonymous beats
// transparent.
func (c Candidate) score() int {
	score := 0
	if strings.EqualFold(strings.TrimSpace(c.HTTPS), "yes") {
		score += 10
	}
	anonymity := strings.ToLower(c.Anonymity)
	switch {
	case strings.Contains(anonymity, "elite"):
		score += 5
	case strings.Contains(anonymity, "anonymous"):
		score += 2
	}
	return score
}

// Finder scrapes and tests free proxies.
type Finder struct {
	sess *browser.Session
}

// NewFinder creates a Finder backed by the given browser session.
func NewFinder(sess *browser.Session) *Finder {
	return &Finder{sess: sess}
}

// Scrape loads the proxy list page and parses up to max rows from its table.
func (f *Finder) Scrape(ctx context.Context, max int) ([]Candidate, error) {
	slog.Info("scraping proxy list", "url", listURL)

	p := f.sess.Page().Context(ctx)
	if err := p.Navigate(listURL); err != nil {
		return nil, fmt.Errorf("proxy: navigate to list: %w", err)
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("proxy list page did not settle, parsing current DOM", "error", err)
	}

	html, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("proxy: read list page: %w", err)
	}

	candidates, err := parseList(html, max)
	if err != nil {
		return nil, err
	}
	slog.Info("proxy list scraped", "candidates", len(candidates))
	return candidates, nil
}

// parseList extracts proxy rows from the list page HTML. The site has moved
// its table markup a few times, so selectors are tried from most to least
// specific.
func parseList(html string, max int) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("proxy: parse list page: %w", err)
	}

	table := doc.Find("table#proxylisttable").First()
	if table.Length() == 0 {
		table = doc.Find("table.table").First()
	}
	if table.Length() == 0 {
		table = doc.Find("table").First()
	}
	if table.Length() == 0 {
		return nil, fmt.Errorf("proxy: no table found on list page")
	}

	rows := table.Find("tbody tr")
	if rows.Length() == 0 {
		// No tbody: take all rows and skip the header.
		rows = table.Find("tr").Slice(1, goquery.ToEnd)
	}

	candidates := make([]Candidate, 0, max)
	rows.EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return true
		}
		cell := func(i int) string {
			return strings.TrimSpace(cells.Eq(i).Text())
		}
		c := Candidate{
			IP:        cell(0),
			Port:      cell(1),
			Code:      cell(2),
			Country:   cell(3),
			Anonymity: cell(4),
			HTTPS:     cell(6),
		}
		if c.IP == "" || c.Port == "" {
			return true
		}
		candidates = append(candidates, c)
		return len(candidates) < max
	})

	return candidates, nil
}

// Find scrapes the proxy list and returns the first candidate that passes a
// live probe. When none do and fallbackToAny is set, the last candidate
// tried is returned anyway; free proxies are flaky enough that a failed
// probe does not prove the proxy useless.
func (f *Finder) Find(ctx context.Context, maxAttempts int, fallbackToAny bool) (string, error) {
	candidates, err := f.Scrape(ctx, maxAttempts*3)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("proxy: no candidates scraped")
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score() > candidates[j].score()
	})

	tested := 0
	lastTried := ""
	for _, c := range candidates {
		if tested >= maxAttempts {
			break
		}
		proxyURL := c.URL()
		lastTried = proxyURL
		tested++

		slog.Info("testing proxy", "proxy", proxyURL, "anonymity", c.Anonymity)
		if checkProxy(ctx, proxyURL, testTimeout) {
			slog.Info("found working proxy", "proxy", proxyURL)
			return proxyURL, nil
		}

		if err := retry.Wait(ctx, testGap); err != nil {
			return "", fmt.Errorf("proxy: testing cancelled: %w", err)
		}
	}

	if fallbackToAny && lastTried != "" {
		slog.Warn("no proxy passed the probe, using last candidate anyway",
			"tested", tested, "proxy", lastTried)
		return lastTried, nil
	}
	return "", fmt.Errorf("proxy: tested %d candidates, none working", tested)
}
