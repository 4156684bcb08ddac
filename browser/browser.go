// Package browser owns the Rod browser session used for all portal traffic.
// Every request the crawler makes (session exchange, paged search, detail
// pages) goes through the one page this package manages, so the portal sees
// a single consistent browsing identity.
package browser

import (
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/alpharomercoma/viableview-scraper/config"
	"github.com/alpharomercoma/viableview-scraper/models"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Session manages the browser lifecycle and the single page the crawl runs
// on. It is owned by one orchestrator and is not safe for concurrent use.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
	cfg     config.BrowserConfig
	target  config.TargetConfig
}

// NewSession launches the browser and prepares the crawl page: stealth JS,
// fixed user agent and viewport, automation-detection flags removed.
func NewSession(cfg config.BrowserConfig, target config.TargetConfig) (*Session, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewCrawlError(models.KindFatal, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL, "headless", cfg.Headless)

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, models.NewCrawlError(models.KindFatal, "failed to connect to browser", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		b.MustClose()
		return nil, models.NewCrawlError(models.KindFatal, "failed to open page", err)
	}

	// Stealth JS must be installed before the first navigation.
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
	}

	_ = proto.NetworkSetUserAgentOverride{UserAgent: chromeUA}.Call(page)
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
	}); err != nil {
		slog.Warn("failed to set viewport", "error", err)
	}

	return &Session{browser: b, page: page, cfg: cfg, target: target}, nil
}

// Page exposes the underlying page for collaborators that need direct
// element access (the challenge solver).
func (s *Session) Page() *rod.Page {
	return s.page
}

// BaseURL returns the portal origin.
func (s *Session) BaseURL() string {
	return s.target.BaseURL
}

// Close kills the browser process. Call on shutdown to prevent zombie
// Chrome processes.
func (s *Session) Close() {
	slog.Info("browser session shutting down")
	s.browser.MustClose()
	slog.Info("browser session closed")
}
