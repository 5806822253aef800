package repository

import (
	"context"

	"homefeed/internal/domain/entity"
)

type OwnerRepository interface {
	Get(ctx context.Context, id int64) (*entity.Owner, error)
	// GetByName retrieves an owner by name. The lookup is case-insensitive.
	// Returns (nil, nil) if no owner matches.
	GetByName(ctx context.Context, name string) (*entity.Owner, error)
	List(ctx context.Context) ([]*entity.Owner, error)
	Create(ctx context.Context, owner *entity.Owner) error
	Update(ctx context.Context, owner *entity.Owner) error
	Delete(ctx context.Context, id int64) error
}
