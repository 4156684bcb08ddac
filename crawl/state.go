package crawl

// CrawlState is the per-query mutable state of one crawl. Each query gets a
// fresh value; nothing here is shared between queries or runs.
type CrawlState struct {
	// Query is the search term this state belongs to.
	Query string

	// Credential is the session credential currently held, or "" before
	// acquisition.
	Credential string

	// TotalPages is the page count read once from the page-1 response.
	// Later pages' embedded totals are deliberately ignored.
	TotalPages int

	// Retries is the number of challenge/session attempts remaining.
	Retries int
}
