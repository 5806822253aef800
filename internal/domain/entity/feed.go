package entity

import "time"

// Feed represents a subscribed syndication feed.
// FeedURL is the address the fetcher polls; SiteURL is the human-facing site
// announced by the feed and is the base for icon resolution. IconURL is nil
// when no icon could be resolved at registration time.
type Feed struct {
	ID       int64
	OwnerID  int64
	FolderID *int64
	Name     string
	FeedURL  string
	SiteURL  string
	IconURL  *string
	AddedAt  time.Time
}

// Validate validates the Feed entity fields.
func (f *Feed) Validate() error {
	if f.OwnerID <= 0 {
		return &ValidationError{Field: "owner_id", Message: "owner id is required"}
	}
	if f.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(f.Name) > maxNameLength {
		return &ValidationError{Field: "name", Message: "name is too long"}
	}
	if err := ValidateURL(f.FeedURL); err != nil {
		return err
	}
	return nil
}
