package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"homefeed/internal/domain/entity"
	"homefeed/internal/observability/metrics"
	"homefeed/internal/repository"
)

type FeedRepo struct{ db *sql.DB }

func NewFeedRepo(db *sql.DB) repository.FeedRepository {
	return &FeedRepo{db: db}
}

// scanFeed is a helper function to scan a feed row.
func scanFeed(rows *sql.Rows) (*entity.Feed, error) {
	var feed entity.Feed
	if err := rows.Scan(
		&feed.ID, &feed.OwnerID, &feed.FolderID, &feed.Name,
		&feed.FeedURL, &feed.SiteURL, &feed.IconURL, &feed.AddedAt,
	); err != nil {
		return nil, err
	}
	return &feed, nil
}

func (repo *FeedRepo) Get(ctx context.Context, id int64) (*entity.Feed, error) {
	const query = `
SELECT id, owner_id, folder_id, name, feed_url, site_url, icon_url, added_at
FROM feeds
WHERE id = $1
LIMIT 1`
	var feed entity.Feed
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&feed.ID, &feed.OwnerID, &feed.FolderID, &feed.Name,
		&feed.FeedURL, &feed.SiteURL, &feed.IconURL, &feed.AddedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &feed, nil
}

func (repo *FeedRepo) List(ctx context.Context) ([]*entity.Feed, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select_feeds", time.Since(start)) }()

	const query = `
SELECT id, owner_id, folder_id, name, feed_url, site_url, icon_url, added_at
FROM feeds
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	feeds := make([]*entity.Feed, 0, 50)
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		feeds = append(feeds, feed)
	}
	return feeds, rows.Err()
}

func (repo *FeedRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Feed, error) {
	const query = `
SELECT id, owner_id, folder_id, name, feed_url, site_url, icon_url, added_at
FROM feeds
WHERE owner_id = $1
ORDER BY name ASC`
	rows, err := repo.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ListByOwner: %w", err)
	}
	defer func() { _ = rows.Close() }()

	feeds := make([]*entity.Feed, 0, 50)
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByOwner: %w", err)
		}
		feeds = append(feeds, feed)
	}
	return feeds, rows.Err()
}

func (repo *FeedRepo) Create(ctx context.Context, feed *entity.Feed) error {
	const query = `
INSERT INTO feeds (owner_id, folder_id, name, feed_url, site_url, icon_url, added_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		feed.OwnerID, feed.FolderID, feed.Name,
		feed.FeedURL, feed.SiteURL, feed.IconURL, feed.AddedAt,
	).Scan(&feed.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *FeedRepo) Update(ctx context.Context, feed *entity.Feed) error {
	const query = `
UPDATE feeds SET
       folder_id = $1,
       name      = $2,
       feed_url  = $3,
       site_url  = $4,
       icon_url  = $5
WHERE id = $6`
	res, err := repo.db.ExecContext(ctx, query,
		feed.FolderID, feed.Name, feed.FeedURL, feed.SiteURL, feed.IconURL, feed.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

func (repo *FeedRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM feeds WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}

func (repo *FeedRepo) ExistsByOwnerAndURL(ctx context.Context, ownerID int64, feedURL string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM feeds WHERE owner_id = $1 AND feed_url = $2)`
	var existsFlag bool
	err := repo.db.QueryRowContext(ctx, query, ownerID, feedURL).Scan(&existsFlag)
	if err != nil {
		return false, fmt.Errorf("ExistsByOwnerAndURL: %w", err)
	}
	return existsFlag, nil
}

func (repo *FeedRepo) SetIconURL(ctx context.Context, id int64, iconURL *string) error {
	const query = `UPDATE feeds SET icon_url = $1 WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, iconURL, id)
	if err != nil {
		return fmt.Errorf("SetIconURL: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("SetIconURL: no rows affected")
	}
	return nil
}
