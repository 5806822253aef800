package ingest

import (
	"errors"
	"fmt"
)

// ErrFeedNotFound indicates that an ingestion was requested for a feed id
// that does not exist.
var ErrFeedNotFound = errors.New("feed not found")

// FetchError marks a failure to retrieve or parse a feed document.
// During a full ingestion run this error class is contained to the failing
// feed; anything else aborts the run.
type FetchError struct {
	FeedID int64
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch feed %d (%s): %v", e.FeedID, e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}
