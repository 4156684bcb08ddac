// Package search fetches single pages of registry search results under a
// session credential. Page sequencing and pacing belong to the caller.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/ysmood/gson"

	"github.com/alpharomercoma/viableview-scraper/models"
)

// headerSessionCredential carries the session credential on every paged
// search request.
const headerSessionCredential = "x-search-session"

// Fetcher is the authenticated in-page GET capability the retriever uses.
type Fetcher interface {
	FetchJSON(ctx context.Context, path string, headers map[string]string) (gson.JSON, error)
}

// Retriever performs one search request per call.
type Retriever struct {
	fetcher Fetcher
	apiPath string
}

// NewRetriever creates a Retriever against the given search API path.
func NewRetriever(fetcher Fetcher, apiPath string) *Retriever {
	return &Retriever{fetcher: fetcher, apiPath: apiPath}
}

// FetchPage retrieves one page of results for query under credential.
// An empty credential is a call-order bug, reported as KindNoSession and
// never worth retrying. TotalPages in the result is only authoritative on
// the page-1 response.
func (r *Retriever) FetchPage(ctx context.Context, credential, query string, page int) (*models.PageResult, error) {
	if credential == "" {
		return nil, models.NewCrawlError(models.KindNoSession,
			"FetchPage called without a session credential; acquire a session first", nil)
	}

	slog.Info("fetching results page", "query", query, "page", page)

	path := fmt.Sprintf("%s?q=%s&page=%d", r.apiPath, url.QueryEscape(query), page)
	res, err := r.fetcher.FetchJSON(ctx, path, map[string]string{
		headerSessionCredential: credential,
	})
	if err != nil {
		return nil, models.NewCrawlError(models.KindPageFetch,
			fmt.Sprintf("search request for page %d failed", page), err)
	}

	if errVal := res.Get("error"); !errVal.Nil() {
		return nil, models.NewCrawlError(models.KindPageFetch,
			fmt.Sprintf("search for page %d rejected: %s", page, errVal.Str()), nil)
	}

	rows := res.Get("results").Arr()
	hits := make([]models.SearchHit, 0, len(rows))
	for _, row := range rows {
		hits = append(hits, models.SearchHit{
			ID:             str(row.Get("id")),
			BusinessName:   str(row.Get("businessName")),
			RegistrationID: str(row.Get("registrationId")),
			Status:         str(row.Get("status")),
			FilingDate:     str(row.Get("filingDate")),
			AgentName:      str(row.Get("agentName")),
			AgentAddress:   str(row.Get("agentAddress")),
			AgentEmail:     str(row.Get("agentEmail")),
		})
	}

	return &models.PageResult{
		Results:    hits,
		Total:      res.Get("total").Int(),
		Page:       res.Get("page").Int(),
		TotalPages: res.Get("totalPages").Int(),
	}, nil
}

// str reads a JSON field as a string, treating absent fields as empty.
func str(j gson.JSON) string {
	if j.Nil() {
		return ""
	}
	return j.Str()
}
