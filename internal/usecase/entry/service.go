// Package entry provides use cases for browsing stored entries and flipping
// their read and starred flags.
package entry

import (
	"context"
	"errors"
	"fmt"

	"homefeed/internal/common/pagination"
	"homefeed/internal/domain/entity"
	"homefeed/internal/repository"
)

// PageSize is the fixed number of entries per listing page.
const PageSize = 30

// Sentinel errors for entry use case operations.
var (
	// ErrEntryNotFound indicates that the entry does not exist or belongs
	// to another owner.
	ErrEntryNotFound = errors.New("entry not found")
)

// ListInput represents the input parameters for listing entries.
// Page is 1-based; values below 1 are treated as 1.
type ListInput struct {
	OwnerID int64
	Page    int
	Filters repository.EntryListFilters
}

// Page is one page of an owner's entries with pagination metadata.
type Page struct {
	Entries    []*entity.Entry
	Page       int
	TotalCount int64
	TotalPages int
}

// Service provides entry browsing use cases.
type Service struct {
	EntryRepo repository.EntryRepository
}

// List retrieves one page of the owner's entries, newest first.
func (s *Service) List(ctx context.Context, in ListInput) (*Page, error) {
	params := pagination.Params{Page: in.Page, Limit: PageSize}.
		WithDefaults(pagination.DefaultConfig())
	offset := pagination.CalculateOffset(params.Page, params.Limit)

	entries, err := s.EntryRepo.ListByOwnerPaginated(ctx, in.OwnerID, in.Filters, offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	count, err := s.EntryRepo.CountByOwner(ctx, in.OwnerID, in.Filters)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}

	return &Page{
		Entries:    entries,
		Page:       params.Page,
		TotalCount: count,
		TotalPages: pagination.CalculateTotalPages(count, params.Limit),
	}, nil
}

// MarkRead sets the read flag on an entry.
// Returns ErrEntryNotFound when the entry does not exist or belongs to
// another owner.
func (s *Service) MarkRead(ctx context.Context, ownerID, entryID int64, read bool) error {
	if err := s.EntryRepo.SetRead(ctx, ownerID, entryID, read); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("set read: %w", err)
	}
	return nil
}

// MarkStarred sets the starred flag on an entry.
// Returns ErrEntryNotFound when the entry does not exist or belongs to
// another owner.
func (s *Service) MarkStarred(ctx context.Context, ownerID, entryID int64, starred bool) error {
	if err := s.EntryRepo.SetStarred(ctx, ownerID, entryID, starred); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("set starred: %w", err)
	}
	return nil
}
