package subscribe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"homefeed/internal/domain/entity"
	"homefeed/internal/repository"
	"homefeed/internal/usecase/ingest"
)

// IconResolver finds an icon URL for a site. Implementations are best
// effort: a site without a reachable icon yields ("", nil).
type IconResolver interface {
	Resolve(ctx context.Context, siteURL string) (string, error)
}

// Ingestor runs the ingestion pipeline for a single feed.
type Ingestor interface {
	IngestByID(ctx context.Context, feedID int64) (*ingest.FeedResult, error)
}

// RegisterInput represents the input parameters for registering a feed.
// Name is optional; when empty, the title announced by the feed document is
// used. FolderID is optional.
type RegisterInput struct {
	OwnerID  int64
	FolderID *int64
	Name     string
	FeedURL  string
}

// Service provides feed subscription use cases.
type Service struct {
	OwnerRepo    repository.OwnerRepository
	FolderRepo   repository.FolderRepository
	FeedRepo     repository.FeedRepository
	FeedFetcher  ingest.FeedFetcher
	IconResolver IconResolver
	Ingestor     Ingestor
}

// Register subscribes an owner to a feed.
//
// The feed URL is validated and checked for duplicates before any network
// traffic happens. The document is then fetched once to confirm the feed is
// parseable and to obtain its title and site link; a fetch failure aborts
// the registration and nothing is persisted. Icon resolution and the initial
// ingestion are best effort: their failure leaves the feed registered.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.Feed, error) {
	logger := slog.Default()

	if err := entity.ValidateURL(in.FeedURL); err != nil {
		return nil, fmt.Errorf("validate feed URL: %w", err)
	}

	owner, err := s.OwnerRepo.Get(ctx, in.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}
	if owner == nil {
		return nil, ErrOwnerNotFound
	}

	if in.FolderID != nil {
		folder, err := s.FolderRepo.Get(ctx, *in.FolderID)
		if err != nil {
			return nil, fmt.Errorf("get folder: %w", err)
		}
		if folder == nil || folder.OwnerID != in.OwnerID {
			return nil, ErrFolderNotFound
		}
	}

	exists, err := s.FeedRepo.ExistsByOwnerAndURL(ctx, in.OwnerID, in.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("check duplicate feed: %w", err)
	}
	if exists {
		return nil, ErrDuplicateFeed
	}

	doc, err := s.FeedFetcher.Fetch(ctx, in.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed document: %w", err)
	}

	name := in.Name
	if name == "" {
		name = doc.Title
	}
	if name == "" {
		name = in.FeedURL
	}

	feed := &entity.Feed{
		OwnerID:  in.OwnerID,
		FolderID: in.FolderID,
		Name:     name,
		FeedURL:  in.FeedURL,
		SiteURL:  doc.SiteLink,
		AddedAt:  time.Now(),
	}

	if iconURL, _ := s.IconResolver.Resolve(ctx, doc.SiteLink); iconURL != "" {
		feed.IconURL = &iconURL
	}

	if err := s.FeedRepo.Create(ctx, feed); err != nil {
		return nil, fmt.Errorf("create feed: %w", err)
	}

	if _, err := s.Ingestor.IngestByID(ctx, feed.ID); err != nil {
		// The subscription stands; the next scheduled run will pick the
		// entries up.
		logger.Warn("initial ingest failed, feed registered without entries",
			slog.Int64("feed_id", feed.ID),
			slog.String("feed_url", feed.FeedURL),
			slog.Any("error", err))
	}

	logger.Info("feed registered",
		slog.Int64("feed_id", feed.ID),
		slog.Int64("owner_id", feed.OwnerID),
		slog.String("feed_url", feed.FeedURL),
		slog.String("name", feed.Name))

	return feed, nil
}

// Unsubscribe removes a feed and its entries.
// Returns ErrFeedNotFound if the feed does not exist or belongs to another
// owner.
func (s *Service) Unsubscribe(ctx context.Context, ownerID, feedID int64) error {
	feed, err := s.ownedFeed(ctx, ownerID, feedID)
	if err != nil {
		return err
	}

	if err := s.FeedRepo.Delete(ctx, feed.ID); err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	return nil
}

// Rename changes a feed's display name.
func (s *Service) Rename(ctx context.Context, ownerID, feedID int64, name string) error {
	if name == "" {
		return &entity.ValidationError{Field: "name", Message: "is required"}
	}

	feed, err := s.ownedFeed(ctx, ownerID, feedID)
	if err != nil {
		return err
	}

	feed.Name = name
	if err := s.FeedRepo.Update(ctx, feed); err != nil {
		return fmt.Errorf("update feed: %w", err)
	}
	return nil
}

// Move places a feed into a folder, or unfiles it when folderID is nil.
// The target folder must belong to the same owner.
func (s *Service) Move(ctx context.Context, ownerID, feedID int64, folderID *int64) error {
	feed, err := s.ownedFeed(ctx, ownerID, feedID)
	if err != nil {
		return err
	}

	if folderID != nil {
		folder, err := s.FolderRepo.Get(ctx, *folderID)
		if err != nil {
			return fmt.Errorf("get folder: %w", err)
		}
		if folder == nil || folder.OwnerID != ownerID {
			return ErrFolderNotFound
		}
	}

	feed.FolderID = folderID
	if err := s.FeedRepo.Update(ctx, feed); err != nil {
		return fmt.Errorf("update feed: %w", err)
	}
	return nil
}

// RefreshIcon re-runs icon resolution for a feed and stores the outcome,
// clearing the icon when resolution finds nothing.
func (s *Service) RefreshIcon(ctx context.Context, ownerID, feedID int64) error {
	feed, err := s.ownedFeed(ctx, ownerID, feedID)
	if err != nil {
		return err
	}

	iconURL, _ := s.IconResolver.Resolve(ctx, feed.SiteURL)
	var icon *string
	if iconURL != "" {
		icon = &iconURL
	}

	if err := s.FeedRepo.SetIconURL(ctx, feed.ID, icon); err != nil {
		return fmt.Errorf("set icon url: %w", err)
	}
	return nil
}

// CreateFolder creates a folder for the owner.
func (s *Service) CreateFolder(ctx context.Context, ownerID int64, name string) (*entity.Folder, error) {
	folder := &entity.Folder{OwnerID: ownerID, Name: name}
	if err := folder.Validate(); err != nil {
		return nil, err
	}

	if err := s.FolderRepo.Create(ctx, folder); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	return folder, nil
}

// DeleteFolder removes a folder. Feeds inside it become unfiled.
func (s *Service) DeleteFolder(ctx context.Context, ownerID, folderID int64) error {
	folder, err := s.FolderRepo.Get(ctx, folderID)
	if err != nil {
		return fmt.Errorf("get folder: %w", err)
	}
	if folder == nil || folder.OwnerID != ownerID {
		return ErrFolderNotFound
	}

	if err := s.FolderRepo.Delete(ctx, folderID); err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	return nil
}

// ListFeeds retrieves the owner's feeds.
func (s *Service) ListFeeds(ctx context.Context, ownerID int64) ([]*entity.Feed, error) {
	feeds, err := s.FeedRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	return feeds, nil
}

// ownedFeed loads a feed and checks ownership.
func (s *Service) ownedFeed(ctx context.Context, ownerID, feedID int64) (*entity.Feed, error) {
	feed, err := s.FeedRepo.Get(ctx, feedID)
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	if feed == nil || feed.OwnerID != ownerID {
		return nil, ErrFeedNotFound
	}
	return feed, nil
}
