package entity

// Entry represents a single item fetched from a feed.
// Published is a Unix timestamp in seconds; Summary and Author are nil when
// the feed did not provide them. Link uniquely identifies an entry within its
// feed and is the sole deduplication key.
type Entry struct {
	ID        int64
	FeedID    int64
	Link      string
	Title     string
	Summary   *string
	Author    *string
	Published int64
	Read      bool
	Starred   bool
}

// Validate validates the Entry entity fields.
func (e *Entry) Validate() error {
	if e.FeedID <= 0 {
		return &ValidationError{Field: "feed_id", Message: "feed id is required"}
	}
	if e.Link == "" {
		return &ValidationError{Field: "link", Message: "link is required"}
	}
	if e.Published <= 0 {
		return &ValidationError{Field: "published", Message: "published timestamp is required"}
	}
	return nil
}
