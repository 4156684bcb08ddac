// Package enrich completes search hits with their detail-page fields.
// Enrichment failures are absorbed: a record that cannot be enriched falls
// back to its search-result fields, because partial data beats none on a
// crawl over an unreliable target.
package enrich

import (
	"context"
	"log/slog"

	"github.com/alpharomercoma/viableview-scraper/extract"
	"github.com/alpharomercoma/viableview-scraper/models"
)

// DetailSource fetches the rendered detail page for a record id. A page
// that does not resolve yields a KindDetailNotFound error.
type DetailSource interface {
	DetailHTML(ctx context.Context, id string) (string, error)
}

// Enricher merges search hits with their detail pages.
type Enricher struct {
	source DetailSource
}

// NewEnricher creates an Enricher reading detail pages from source.
func NewEnricher(source DetailSource) *Enricher {
	return &Enricher{source: source}
}

// Enrich completes one search hit. A hit without an id cannot be looked up,
// so it maps directly to a record with whatever fields the search index
// returned. A not-found or failed detail fetch takes the same fallback.
func (e *Enricher) Enrich(ctx context.Context, hit models.SearchHit) models.BusinessRecord {
	if hit.ID == "" {
		return models.Merge(hit, nil)
	}

	html, err := e.source.DetailHTML(ctx, hit.ID)
	if err != nil {
		if models.IsKind(err, models.KindDetailNotFound) {
			slog.Warn("business detail not found, keeping search fields", "id", hit.ID)
		} else {
			slog.Error("detail fetch failed, keeping search fields", "id", hit.ID, "error", err)
		}
		return models.Merge(hit, nil)
	}

	detail, err := extract.Detail(html)
	if err != nil {
		slog.Error("detail extraction failed, keeping search fields", "id", hit.ID, "error", err)
		return models.Merge(hit, nil)
	}
	return models.Merge(hit, detail)
}
