package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/ysmood/gson"

	"github.com/alpharomercoma/viableview-scraper/models"
)

// fetchJS runs an in-page authenticated GET and returns the parsed JSON body.
// Routing API calls through the page keeps them on the portal's own origin
// with the browser's cookies and TLS fingerprint.
const fetchJS = `async (path, headers) => {
	const resp = await fetch(path, { headers });
	return await resp.json();
}`

// FetchJSON performs a same-origin GET from inside the page with the given
// headers and returns the parsed JSON response. This is the only request
// transport the session/search layers see.
func (s *Session) FetchJSON(ctx context.Context, path string, headers map[string]string) (gson.JSON, error) {
	res, err := s.page.Context(ctx).Eval(fetchJS, path, headers)
	if err != nil {
		return gson.New(nil), models.NewCrawlError(models.KindPageFetch,
			fmt.Sprintf("in-page fetch of %s failed", path), err)
	}
	return res.Value, nil
}

// OpenChallengePage navigates to the search page that hosts the verification
// challenge and waits for it to settle. Logs a warning when the challenge
// wrapper is missing, since the portal sometimes serves the page without it.
func (s *Session) OpenChallengePage(ctx context.Context) error {
	target := s.target.BaseURL + s.target.SearchPagePath
	slog.Info("navigating to challenge page", "url", target)

	p := s.page.Context(ctx)
	if err := p.Navigate(target); err != nil {
		return models.NewCrawlError(models.KindPageFetch, "navigation to challenge page failed", err)
	}
	s.waitSettled(p)

	if has, _, err := p.Has(".captcha-wrap"); err == nil && !has {
		slog.Warn("no challenge wrapper found on page")
	}
	return nil
}

// ReloadChallengePage reloads the challenge surface so a fresh challenge can
// be attempted after an unsolved one.
func (s *Session) ReloadChallengePage(ctx context.Context) error {
	p := s.page.Context(ctx)
	if err := p.Reload(); err != nil {
		return models.NewCrawlError(models.KindPageFetch, "challenge page reload failed", err)
	}
	s.waitSettled(p)
	return nil
}

// DetailHTML navigates to the detail page for the given record id and
// returns the rendered HTML. A page whose body carries the portal's
// not-found markers yields KindDetailNotFound.
func (s *Session) DetailHTML(ctx context.Context, id string) (string, error) {
	target := s.target.BaseURL + s.target.BusinessPath + "/" + url.PathEscape(id)

	p := s.page.Context(ctx)

	router := setupHijack(s.page, s.cfg.BlockedResourceTypes)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	if err := p.Navigate(target); err != nil {
		return "", models.NewCrawlError(models.KindDetailFetch,
			fmt.Sprintf("navigation to detail page for %s failed", id), err)
	}
	s.waitSettled(p)

	html, err := p.HTML()
	if err != nil {
		return "", models.NewCrawlError(models.KindDetailFetch, "failed to extract detail page HTML", err)
	}
	if strings.Contains(html, "Not Found") || strings.Contains(html, "No business found") {
		return "", models.NewCrawlError(models.KindDetailNotFound,
			fmt.Sprintf("business %s not found", id), nil)
	}
	return html, nil
}

// waitSettled waits for the DOM to stop mutating, bounded by the configured
// navigation timeout. A page that never converges is used as-is.
func (s *Session) waitSettled(p *rod.Page) {
	t := p.Timeout(s.cfg.NavigationTimeout)
	defer t.CancelTimeout()
	if err := t.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", err)
	}
}
