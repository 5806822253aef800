package repository

import (
	"context"

	"homefeed/internal/domain/entity"
)

type FolderRepository interface {
	Get(ctx context.Context, id int64) (*entity.Folder, error)
	// ListByOwner retrieves all folders belonging to the owner, ordered by name.
	ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Folder, error)
	Create(ctx context.Context, folder *entity.Folder) error
	Update(ctx context.Context, folder *entity.Folder) error
	Delete(ctx context.Context, id int64) error
}
