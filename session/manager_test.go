package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ysmood/gson"

	"github.com/alpharomercoma/viableview-scraper/models"
)

// fakeFetcher replays a canned JSON response and records the request.
type fakeFetcher struct {
	response gson.JSON
	err      error

	path    string
	headers map[string]string
}

func (f *fakeFetcher) FetchJSON(_ context.Context, path string, headers map[string]string) (gson.JSON, error) {
	f.path = path
	f.headers = headers
	return f.response, f.err
}

func TestAcquire_StoresDistinctCredential(t *testing.T) {
	fetcher := &fakeFetcher{
		response: gson.New(map[string]interface{}{"session": "cred-1"}),
	}
	m := NewManager(fetcher, "/api/search")

	cred, err := m.Acquire(context.Background(), "token-1", "llc")

	require.NoError(t, err)
	assert.Equal(t, "cred-1", cred)
	assert.Equal(t, "cred-1", m.Credential())
	assert.Equal(t, "/api/search?q=llc&page=1", fetcher.path)
	assert.Equal(t, "token-1", fetcher.headers[headerVerificationToken])
}

func TestAcquire_ReusesTokenWhenNoCredentialReturned(t *testing.T) {
	fetcher := &fakeFetcher{
		response: gson.New(map[string]interface{}{"results": []interface{}{}}),
	}
	m := NewManager(fetcher, "/api/search")

	cred, err := m.Acquire(context.Background(), "token-1", "llc")

	require.NoError(t, err)
	assert.Equal(t, "token-1", cred, "the verification token doubles as the credential")
	assert.Equal(t, "token-1", m.Credential())
}

func TestAcquire_ServerErrorFails(t *testing.T) {
	fetcher := &fakeFetcher{
		response: gson.New(map[string]interface{}{"error": "invalid captcha token"}),
	}
	m := NewManager(fetcher, "/api/search")

	_, err := m.Acquire(context.Background(), "token-1", "llc")

	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindSessionAcquisition))
	assert.Contains(t, err.Error(), "invalid captcha token")
	assert.Empty(t, m.Credential())
}

func TestAcquire_TransportErrorFails(t *testing.T) {
	fetcher := &fakeFetcher{
		response: gson.New(nil),
		err:      errors.New("page crashed"),
	}
	m := NewManager(fetcher, "/api/search")

	_, err := m.Acquire(context.Background(), "token-1", "llc")

	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindSessionAcquisition))
}

func TestAcquire_OverwritesPreviousCredential(t *testing.T) {
	fetcher := &fakeFetcher{
		response: gson.New(map[string]interface{}{"session": "cred-1"}),
	}
	m := NewManager(fetcher, "/api/search")

	_, err := m.Acquire(context.Background(), "token-1", "llc")
	require.NoError(t, err)

	fetcher.response = gson.New(map[string]interface{}{"session": "cred-2"})
	_, err = m.Acquire(context.Background(), "token-1", "inc")
	require.NoError(t, err)

	assert.Equal(t, "cred-2", m.Credential())
}

func TestInvalidate(t *testing.T) {
	fetcher := &fakeFetcher{
		response: gson.New(map[string]interface{}{"session": "cred-1"}),
	}
	m := NewManager(fetcher, "/api/search")

	_, err := m.Acquire(context.Background(), "token-1", "llc")
	require.NoError(t, err)

	m.Invalidate()
	assert.Empty(t, m.Credential())
}
