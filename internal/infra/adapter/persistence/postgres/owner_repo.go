package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"homefeed/internal/domain/entity"
	"homefeed/internal/repository"
)

type OwnerRepo struct{ db *sql.DB }

func NewOwnerRepo(db *sql.DB) repository.OwnerRepository {
	return &OwnerRepo{db: db}
}

func (repo *OwnerRepo) Get(ctx context.Context, id int64) (*entity.Owner, error) {
	const query = `
SELECT id, name, password_hash, salt, admin, created_at
FROM owners
WHERE id = $1
LIMIT 1`
	var owner entity.Owner
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&owner.ID, &owner.Name, &owner.PasswordHash, &owner.Salt, &owner.Admin, &owner.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &owner, nil
}

func (repo *OwnerRepo) GetByName(ctx context.Context, name string) (*entity.Owner, error) {
	const query = `
SELECT id, name, password_hash, salt, admin, created_at
FROM owners
WHERE LOWER(name) = LOWER($1)
LIMIT 1`
	var owner entity.Owner
	err := repo.db.QueryRowContext(ctx, query, name).Scan(
		&owner.ID, &owner.Name, &owner.PasswordHash, &owner.Salt, &owner.Admin, &owner.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByName: %w", err)
	}
	return &owner, nil
}

func (repo *OwnerRepo) List(ctx context.Context) ([]*entity.Owner, error) {
	const query = `
SELECT id, name, password_hash, salt, admin, created_at
FROM owners
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	owners := make([]*entity.Owner, 0, 10)
	for rows.Next() {
		var owner entity.Owner
		if err := rows.Scan(
			&owner.ID, &owner.Name, &owner.PasswordHash, &owner.Salt, &owner.Admin, &owner.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		owners = append(owners, &owner)
	}
	return owners, rows.Err()
}

func (repo *OwnerRepo) Create(ctx context.Context, owner *entity.Owner) error {
	const query = `
INSERT INTO owners (name, password_hash, salt, admin, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		owner.Name, owner.PasswordHash, owner.Salt, owner.Admin, owner.CreatedAt,
	).Scan(&owner.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *OwnerRepo) Update(ctx context.Context, owner *entity.Owner) error {
	const query = `
UPDATE owners SET
       name          = $1,
       password_hash = $2,
       salt          = $3,
       admin         = $4
WHERE id = $5`
	res, err := repo.db.ExecContext(ctx, query,
		owner.Name, owner.PasswordHash, owner.Salt, owner.Admin, owner.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

func (repo *OwnerRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM owners WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}
