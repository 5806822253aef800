package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"homefeed/internal/domain/entity"
	"homefeed/internal/repository"
)

type FolderRepo struct{ db *sql.DB }

func NewFolderRepo(db *sql.DB) repository.FolderRepository {
	return &FolderRepo{db: db}
}

func (repo *FolderRepo) Get(ctx context.Context, id int64) (*entity.Folder, error) {
	const query = `
SELECT id, owner_id, name
FROM folders
WHERE id = $1
LIMIT 1`
	var folder entity.Folder
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&folder.ID, &folder.OwnerID, &folder.Name,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &folder, nil
}

func (repo *FolderRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Folder, error) {
	const query = `
SELECT id, owner_id, name
FROM folders
WHERE owner_id = $1
ORDER BY name ASC`
	rows, err := repo.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ListByOwner: %w", err)
	}
	defer func() { _ = rows.Close() }()

	folders := make([]*entity.Folder, 0, 20)
	for rows.Next() {
		var folder entity.Folder
		if err := rows.Scan(&folder.ID, &folder.OwnerID, &folder.Name); err != nil {
			return nil, fmt.Errorf("ListByOwner: %w", err)
		}
		folders = append(folders, &folder)
	}
	return folders, rows.Err()
}

func (repo *FolderRepo) Create(ctx context.Context, folder *entity.Folder) error {
	const query = `
INSERT INTO folders (owner_id, name)
VALUES ($1, $2)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query, folder.OwnerID, folder.Name).Scan(&folder.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *FolderRepo) Update(ctx context.Context, folder *entity.Folder) error {
	const query = `
UPDATE folders SET
       name = $1
WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, folder.Name, folder.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

func (repo *FolderRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM folders WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}
