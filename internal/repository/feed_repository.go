package repository

import (
	"context"

	"homefeed/internal/domain/entity"
)

type FeedRepository interface {
	Get(ctx context.Context, id int64) (*entity.Feed, error)
	List(ctx context.Context) ([]*entity.Feed, error)
	// ListByOwner retrieves all feeds belonging to the owner, ordered by name.
	ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Feed, error)
	Create(ctx context.Context, feed *entity.Feed) error
	Update(ctx context.Context, feed *entity.Feed) error
	Delete(ctx context.Context, id int64) error
	// ExistsByOwnerAndURL reports whether the owner already subscribes to the
	// given feed URL. Used to reject duplicate registrations before any
	// network fetch happens.
	ExistsByOwnerAndURL(ctx context.Context, ownerID int64, feedURL string) (bool, error)
	// SetIconURL updates only the icon column. A nil iconURL clears it.
	SetIconURL(ctx context.Context, id int64, iconURL *string) error
}
