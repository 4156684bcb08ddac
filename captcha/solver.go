// Package captcha adapts the portal's human-verification challenge into a
// token-producing capability. The crawl orchestrator only sees the Solver
// interface; how a token is actually obtained (widget interaction, manual
// solving in a headed browser) is this package's concern.
package captcha

import "context"

// Solver produces a verification token proving the challenge was passed.
type Solver interface {
	// Solve presents the challenge surface and returns a verification
	// token. The token is single-use: it is consumed when exchanged for a
	// session credential. Errors carry a models.CrawlError kind so the
	// caller's retry policy can distinguish rate limiting from an
	// unsolved or timed-out challenge.
	Solve(ctx context.Context) (string, error)

	// Reload refreshes the challenge surface so a fresh challenge can be
	// attempted after an unsolved one.
	Reload(ctx context.Context) error
}
