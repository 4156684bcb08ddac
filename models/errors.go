package models

import (
	"errors"
	"fmt"
)

// Error kinds used by the retry policy. The orchestrator branches on these
// instead of matching error message text.
const (
	KindRateLimited        = "RATE_LIMITED"
	KindChallengeUnsolved  = "CHALLENGE_UNSOLVED"
	KindChallengeTimeout   = "CHALLENGE_TIMEOUT"
	KindSessionAcquisition = "SESSION_ACQUISITION"
	KindNoSession          = "NO_SESSION"
	KindPageFetch          = "PAGE_FETCH"
	KindDetailNotFound     = "DETAIL_NOT_FOUND"
	KindDetailFetch        = "DETAIL_FETCH"
	KindFatal              = "FATAL"
)

// CrawlError is the internal error type carrying an error kind.
// It implements the error interface and supports error wrapping via Unwrap.
type CrawlError struct {
	Kind    string
	Message string
	Err     error // wrapped original error
}

func (e *CrawlError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CrawlError) Unwrap() error {
	return e.Err
}

// NewCrawlError creates a new CrawlError.
func NewCrawlError(kind, message string, err error) *CrawlError {
	return &CrawlError{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err if it is (or wraps) a CrawlError,
// otherwise KindFatal.
func KindOf(err error) string {
	var ce *CrawlError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindFatal
}

// IsKind reports whether err is (or wraps) a CrawlError of the given kind.
func IsKind(err error, kind string) bool {
	var ce *CrawlError
	return errors.As(err, &ce) && ce.Kind == kind
}
