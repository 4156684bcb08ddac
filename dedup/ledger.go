// Package dedup tracks which records a full crawl has already produced.
// The ledger is append-only for the lifetime of one run and holds nothing
// across runs.
package dedup

import "github.com/alpharomercoma/viableview-scraper/models"

// Ledger is a set of record keys seen so far. It is owned by a single
// orchestrator; there is no concurrent writer.
type Ledger struct {
	seen map[string]struct{}
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{seen: make(map[string]struct{})}
}

// Accept reports whether the record is new, recording its key when it is.
// The key is the registration id when non-empty, else the business name.
// A record with neither cannot be correlated with anything, so it is always
// accepted and never recorded.
func (l *Ledger) Accept(rec models.BusinessRecord) bool {
	key := rec.RegistrationID
	if key == "" {
		key = rec.BusinessName
	}
	if key == "" {
		return true
	}
	if _, ok := l.seen[key]; ok {
		return false
	}
	l.seen[key] = struct{}{}
	return true
}

// Len returns the number of distinct keys recorded.
func (l *Ledger) Len() int {
	return len(l.seen)
}
