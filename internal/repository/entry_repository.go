package repository

import (
	"context"

	"homefeed/internal/domain/entity"
)

// EntryListFilters contains optional filters for entry listing.
// All filters are combined with AND; nil fields are ignored.
type EntryListFilters struct {
	FeedID      *int64 // Optional: only entries of this feed
	FolderID    *int64 // Optional: only entries of feeds in this folder
	StarredOnly bool   // Optional: only starred entries
	UnreadOnly  bool   // Optional: only unread entries
}

type EntryRepository interface {
	Get(ctx context.Context, id int64) (*entity.Entry, error)
	// ListByOwnerPaginated retrieves a page of the owner's entries ordered by
	// published DESC, id DESC. Entries of feeds the owner does not own are
	// never returned regardless of filters.
	ListByOwnerPaginated(ctx context.Context, ownerID int64, filters EntryListFilters, offset, limit int) ([]*entity.Entry, error)
	// CountByOwner returns the number of entries matching the filters.
	CountByOwner(ctx context.Context, ownerID int64, filters EntryListFilters) (int64, error)
	// CountAll returns the total number of stored entries across all owners.
	CountAll(ctx context.Context) (int64, error)
	// ExistingLinks reports which of the given links are already stored for
	// the feed. One round trip replaces a per-candidate existence probe.
	ExistingLinks(ctx context.Context, feedID int64, links []string) (map[string]bool, error)
	// CreateBatch inserts all entries in a single transaction. Either every
	// entry is persisted or none is.
	CreateBatch(ctx context.Context, entries []*entity.Entry) error
	// SetRead flips the read flag on an entry owned by the given owner.
	SetRead(ctx context.Context, ownerID, entryID int64, read bool) error
	// SetStarred flips the starred flag on an entry owned by the given owner.
	SetStarred(ctx context.Context, ownerID, entryID int64, starred bool) error
	Delete(ctx context.Context, id int64) error
}
