// Package session exchanges verification tokens for query-scoped session
// credentials and tracks the credential currently held.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/ysmood/gson"

	"github.com/alpharomercoma/viableview-scraper/models"
)

// headerVerificationToken carries the freshly solved challenge token on the
// session-exchange request.
const headerVerificationToken = "x-recaptcha-token"

// Fetcher is the authenticated in-page GET capability the manager uses.
type Fetcher interface {
	FetchJSON(ctx context.Context, path string, headers map[string]string) (gson.JSON, error)
}

// Manager owns the current session credential. One manager serves one
// orchestrator; acquiring overwrites any previously held credential.
// Retrying failed acquisitions is the caller's job, not the manager's.
type Manager struct {
	fetcher    Fetcher
	apiPath    string
	credential string
}

// NewManager creates a Manager that exchanges tokens at the given search API
// path.
func NewManager(fetcher Fetcher, apiPath string) *Manager {
	return &Manager{fetcher: fetcher, apiPath: apiPath}
}

// Acquire sends the verification token to the session endpoint and stores
// the credential scoped to query. When the endpoint accepts the token but
// omits a distinct credential, the token itself becomes the credential;
// that degradation is not an error.
func (m *Manager) Acquire(ctx context.Context, token, query string) (string, error) {
	slog.Info("acquiring session credential", "query", query)

	path := fmt.Sprintf("%s?q=%s&page=1", m.apiPath, url.QueryEscape(query))
	res, err := m.fetcher.FetchJSON(ctx, path, map[string]string{
		headerVerificationToken: token,
	})
	if err != nil {
		return "", models.NewCrawlError(models.KindSessionAcquisition,
			"session exchange request failed", err)
	}

	if errVal := res.Get("error"); !errVal.Nil() {
		return "", models.NewCrawlError(models.KindSessionAcquisition,
			fmt.Sprintf("session endpoint rejected token: %s", errVal.Str()), nil)
	}

	if sess := res.Get("session"); !sess.Nil() && sess.Str() != "" {
		cred := sess.Str()
		slog.Info("session credential obtained", "query", query)
		m.credential = cred
		return cred, nil
	}

	slog.Warn("no session credential in response, reusing verification token")
	m.credential = token
	return token, nil
}

// Credential returns the currently held credential, or "" when none has
// been acquired.
func (m *Manager) Credential() string {
	return m.credential
}

// Invalidate drops the held credential so the next request path is forced
// through a fresh acquisition.
func (m *Manager) Invalidate() {
	m.credential = ""
}
