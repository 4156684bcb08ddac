package captcha

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/alpharomercoma/viableview-scraper/browser"
	"github.com/alpharomercoma/viableview-scraper/config"
	"github.com/alpharomercoma/viableview-scraper/models"
	"github.com/alpharomercoma/viableview-scraper/retry"
)

// autoSolveWait is how long the headless solver waits for the widget to
// yield a token after the checkbox click before giving up. In headed mode
// the configured manual wait applies instead, so a human can finish the
// challenge by hand.
const autoSolveWait = 30 * time.Second

// tokenJS reads the widget's hidden response slot. Empty until solved.
const tokenJS = `() => {
	const el = document.querySelector('#g-recaptcha-response')
		|| document.querySelector('textarea[name="g-recaptcha-response"]');
	return el ? el.value : '';
}`

// RodSolver drives the verification widget on the live challenge page.
type RodSolver struct {
	sess   *browser.Session
	cfg    config.CaptchaConfig
	headed bool
}

// NewRodSolver creates a solver bound to the browser session. headed enables
// the long manual-solve wait for a human operator.
func NewRodSolver(sess *browser.Session, cfg config.CaptchaConfig, headed bool) *RodSolver {
	return &RodSolver{sess: sess, cfg: cfg, headed: headed}
}

// Solve opens the challenge page, triggers the widget, and polls the
// response slot until a token appears or the wait budget runs out.
func (s *RodSolver) Solve(ctx context.Context) (string, error) {
	if err := s.sess.OpenChallengePage(ctx); err != nil {
		return "", err
	}

	s.clickWidget()

	wait := autoSolveWait
	if s.headed {
		wait = s.cfg.ManualWait
		slog.Info("headed mode: waiting for challenge to be solved manually",
			"timeout", wait)
	}
	return s.pollToken(ctx, wait)
}

// Reload refreshes the challenge page for a fresh attempt.
func (s *RodSolver) Reload(ctx context.Context) error {
	return s.sess.ReloadChallengePage(ctx)
}

// clickWidget clicks the widget checkbox inside its frame. Best-effort: a
// missing widget just means the poll loop is the only path to a token.
func (s *RodSolver) clickWidget() {
	page := s.sess.Page()

	el, err := page.Timeout(5 * time.Second).Element(`iframe[title="reCAPTCHA"]`)
	if err != nil {
		slog.Warn("challenge widget frame not found", "error", err)
		return
	}
	frame, err := el.Frame()
	if err != nil {
		slog.Warn("failed to enter challenge widget frame", "error", err)
		return
	}
	anchor, err := frame.Timeout(5 * time.Second).Element("#recaptcha-anchor")
	if err != nil {
		slog.Warn("challenge checkbox not found", "error", err)
		return
	}
	if err := anchor.Click(proto.InputMouseButtonLeft, 1); err != nil {
		slog.Warn("challenge checkbox click failed", "error", err)
	}
}

// pollToken checks the response slot every poll interval until a token
// appears, the wait budget is spent, or the widget reports rate limiting.
func (s *RodSolver) pollToken(ctx context.Context, wait time.Duration) (string, error) {
	page := s.sess.Page()
	deadline := time.Now().Add(wait)

	for {
		if res, err := page.Context(ctx).Eval(tokenJS); err == nil {
			if token := res.Value.Str(); token != "" {
				slog.Info("challenge solved, token obtained")
				return token, nil
			}
		}

		if s.rateLimited() {
			return "", models.NewCrawlError(models.KindRateLimited,
				"challenge provider reported rate limiting", nil)
		}

		if time.Now().After(deadline) {
			if s.headed {
				return "", models.NewCrawlError(models.KindChallengeTimeout,
					"challenge was not solved within the manual wait budget", nil)
			}
			return "", models.NewCrawlError(models.KindChallengeUnsolved,
				"challenge did not yield a token", nil)
		}

		if err := retry.Wait(ctx, s.cfg.PollInterval); err != nil {
			return "", models.NewCrawlError(models.KindChallengeUnsolved,
				"challenge polling cancelled", err)
		}
	}
}

// rateLimited checks the challenge frame for the provider's
// "try again later" state.
func (s *RodSolver) rateLimited() bool {
	page := s.sess.Page()
	el, err := page.Timeout(time.Second).Element(`iframe[src*="bframe"]`)
	if err != nil {
		return false
	}
	frame, err := el.Frame()
	if err != nil {
		return false
	}
	has, _, err := frame.Timeout(time.Second).Has(".rc-doscaptcha-header")
	return err == nil && has
}
