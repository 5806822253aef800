package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"homefeed/internal/domain/entity"
	"homefeed/internal/observability/metrics"
	"homefeed/internal/repository"
)

type EntryRepo struct{ db *sql.DB }

func NewEntryRepo(db *sql.DB) repository.EntryRepository {
	return &EntryRepo{db: db}
}

// scanEntry is a helper function to scan an entry row.
func scanEntry(rows *sql.Rows) (*entity.Entry, error) {
	var entry entity.Entry
	if err := rows.Scan(
		&entry.ID, &entry.FeedID, &entry.Link, &entry.Title,
		&entry.Summary, &entry.Author, &entry.Published, &entry.Read, &entry.Starred,
	); err != nil {
		return nil, err
	}
	return &entry, nil
}

// buildOwnerFilter assembles the WHERE clause for owner-scoped entry queries.
// The owner join is always present so entries of other owners never leak
// through filter combinations.
func buildOwnerFilter(ownerID int64, filters repository.EntryListFilters) (string, []interface{}) {
	conditions := []string{"f.owner_id = $1"}
	args := []interface{}{ownerID}

	if filters.FeedID != nil {
		args = append(args, *filters.FeedID)
		conditions = append(conditions, fmt.Sprintf("e.feed_id = $%d", len(args)))
	}
	if filters.FolderID != nil {
		args = append(args, *filters.FolderID)
		conditions = append(conditions, fmt.Sprintf("f.folder_id = $%d", len(args)))
	}
	if filters.StarredOnly {
		conditions = append(conditions, "e.starred = TRUE")
	}
	if filters.UnreadOnly {
		conditions = append(conditions, "e.read = FALSE")
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

func (repo *EntryRepo) Get(ctx context.Context, id int64) (*entity.Entry, error) {
	const query = `
SELECT id, feed_id, link, title, summary, author, published, read, starred
FROM entries
WHERE id = $1
LIMIT 1`
	var entry entity.Entry
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&entry.ID, &entry.FeedID, &entry.Link, &entry.Title,
		&entry.Summary, &entry.Author, &entry.Published, &entry.Read, &entry.Starred,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &entry, nil
}

func (repo *EntryRepo) ListByOwnerPaginated(ctx context.Context, ownerID int64, filters repository.EntryListFilters, offset, limit int) ([]*entity.Entry, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select_entries", time.Since(start)) }()

	whereClause, args := buildOwnerFilter(ownerID, filters)

	paramIndex := len(args) + 1
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
SELECT e.id, e.feed_id, e.link, e.title, e.summary, e.author, e.published, e.read, e.starred
FROM entries e
INNER JOIN feeds f ON e.feed_id = f.id
%s
ORDER BY e.published DESC, e.id DESC
LIMIT $%d OFFSET $%d`, whereClause, paramIndex, paramIndex+1)

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListByOwnerPaginated: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*entity.Entry, 0, limit)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByOwnerPaginated: Scan: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (repo *EntryRepo) CountByOwner(ctx context.Context, ownerID int64, filters repository.EntryListFilters) (int64, error) {
	whereClause, args := buildOwnerFilter(ownerID, filters)

	query := fmt.Sprintf(`
SELECT COUNT(*)
FROM entries e
INNER JOIN feeds f ON e.feed_id = f.id
%s`, whereClause)

	var count int64
	if err := repo.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountByOwner: %w", err)
	}
	return count, nil
}

// CountAll returns the total number of stored entries across all owners.
func (repo *EntryRepo) CountAll(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM entries`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountAll: %w", err)
	}
	return count, nil
}

// ExistingLinks reports which of the given links are already stored for the
// feed. A single ANY($2) round trip replaces a per-candidate existence probe.
func (repo *EntryRepo) ExistingLinks(ctx context.Context, feedID int64, links []string) (map[string]bool, error) {
	if len(links) == 0 {
		return make(map[string]bool), nil
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("select_links", time.Since(start)) }()

	const query = `SELECT link FROM entries WHERE feed_id = $1 AND link = ANY($2)`
	rows, err := repo.db.QueryContext(ctx, query, feedID, pq.Array(links))
	if err != nil {
		return nil, fmt.Errorf("ExistingLinks: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]bool)
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, fmt.Errorf("ExistingLinks: Scan: %w", err)
		}
		result[link] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExistingLinks: rows.Err: %w", err)
	}

	return result, nil
}

// CreateBatch inserts all entries within a single transaction.
func (repo *EntryRepo) CreateBatch(ctx context.Context, entries []*entity.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert_entries", time.Since(start)) }()

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("CreateBatch: BeginTx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
INSERT INTO entries (feed_id, link, title, summary, author, published, read, starred)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	for _, entry := range entries {
		if err := tx.QueryRowContext(ctx, query,
			entry.FeedID, entry.Link, entry.Title, entry.Summary,
			entry.Author, entry.Published, entry.Read, entry.Starred,
		).Scan(&entry.ID); err != nil {
			return fmt.Errorf("CreateBatch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("CreateBatch: Commit: %w", err)
	}
	return nil
}

func (repo *EntryRepo) SetRead(ctx context.Context, ownerID, entryID int64, read bool) error {
	const query = `
UPDATE entries e SET read = $1
FROM feeds f
WHERE e.id = $2 AND e.feed_id = f.id AND f.owner_id = $3`
	res, err := repo.db.ExecContext(ctx, query, read, entryID, ownerID)
	if err != nil {
		return fmt.Errorf("SetRead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Unknown entry or an entry of another owner, indistinguishable here
		return fmt.Errorf("SetRead: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *EntryRepo) SetStarred(ctx context.Context, ownerID, entryID int64, starred bool) error {
	const query = `
UPDATE entries e SET starred = $1
FROM feeds f
WHERE e.id = $2 AND e.feed_id = f.id AND f.owner_id = $3`
	res, err := repo.db.ExecContext(ctx, query, starred, entryID, ownerID)
	if err != nil {
		return fmt.Errorf("SetStarred: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("SetStarred: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *EntryRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM entries WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}
