package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ysmood/gson"

	"github.com/alpharomercoma/viableview-scraper/models"
)

type fakeFetcher struct {
	response gson.JSON
	err      error

	path    string
	headers map[string]string
	calls   int
}

func (f *fakeFetcher) FetchJSON(_ context.Context, path string, headers map[string]string) (gson.JSON, error) {
	f.calls++
	f.path = path
	f.headers = headers
	return f.response, f.err
}

func TestFetchPage_RequiresCredential(t *testing.T) {
	fetcher := &fakeFetcher{}
	r := NewRetriever(fetcher, "/api/search")

	_, err := r.FetchPage(context.Background(), "", "llc", 1)

	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindNoSession))
	assert.Zero(t, fetcher.calls, "a contract violation must not reach the network")
}

func TestFetchPage_MapsResponse(t *testing.T) {
	fetcher := &fakeFetcher{
		response: gson.New(map[string]interface{}{
			"results": []interface{}{
				map[string]interface{}{
					"id":             "b-1",
					"businessName":   "Acme LLC",
					"registrationId": "REG-1",
					"status":         "Active",
					"filingDate":     "2021-03-01",
				},
				map[string]interface{}{
					"businessName": "No ID Corp",
				},
			},
			"total":      25,
			"page":       1,
			"totalPages": 2,
		}),
	}
	r := NewRetriever(fetcher, "/api/search")

	pr, err := r.FetchPage(context.Background(), "cred-1", "llc", 1)

	require.NoError(t, err)
	assert.Equal(t, "/api/search?q=llc&page=1", fetcher.path)
	assert.Equal(t, "cred-1", fetcher.headers[headerSessionCredential])

	assert.Equal(t, 25, pr.Total)
	assert.Equal(t, 1, pr.Page)
	assert.Equal(t, 2, pr.TotalPages)
	require.Len(t, pr.Results, 2)

	assert.Equal(t, "b-1", pr.Results[0].ID)
	assert.Equal(t, "Acme LLC", pr.Results[0].BusinessName)
	assert.Equal(t, "REG-1", pr.Results[0].RegistrationID)
	assert.Equal(t, "Active", pr.Results[0].Status)
	assert.Equal(t, "2021-03-01", pr.Results[0].FilingDate)

	assert.Empty(t, pr.Results[1].ID, "absent fields map to empty strings")
	assert.Equal(t, "No ID Corp", pr.Results[1].BusinessName)
}

func TestFetchPage_QueryIsEscaped(t *testing.T) {
	fetcher := &fakeFetcher{response: gson.New(map[string]interface{}{})}
	r := NewRetriever(fetcher, "/api/search")

	_, err := r.FetchPage(context.Background(), "cred-1", "a b&c", 3)

	require.NoError(t, err)
	assert.Equal(t, "/api/search?q=a+b%26c&page=3", fetcher.path)
}

func TestFetchPage_ServerErrorBecomesPageFetch(t *testing.T) {
	fetcher := &fakeFetcher{
		response: gson.New(map[string]interface{}{"error": "session expired"}),
	}
	r := NewRetriever(fetcher, "/api/search")

	_, err := r.FetchPage(context.Background(), "cred-1", "llc", 2)

	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindPageFetch))
	assert.Contains(t, err.Error(), "session expired")
}
