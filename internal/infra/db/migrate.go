package db

import "database/sql"

// MigrateUp creates the schema if it does not exist.
// published is stored as Unix seconds so ordering and range filters stay
// integer comparisons.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS owners (
    id            SERIAL PRIMARY KEY,
    name          TEXT NOT NULL,
    password_hash BYTEA NOT NULL,
    salt          BYTEA NOT NULL,
    admin         BOOLEAN NOT NULL DEFAULT FALSE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS folders (
    id       SERIAL PRIMARY KEY,
    owner_id INTEGER NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
    name     TEXT NOT NULL,
    UNIQUE(owner_id, name)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS feeds (
    id        SERIAL PRIMARY KEY,
    owner_id  INTEGER NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
    folder_id INTEGER REFERENCES folders(id) ON DELETE SET NULL,
    name      TEXT NOT NULL,
    feed_url  TEXT NOT NULL,
    site_url  TEXT NOT NULL DEFAULT '',
    icon_url  TEXT,
    added_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE(owner_id, feed_url)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS entries (
    id        SERIAL PRIMARY KEY,
    feed_id   INTEGER NOT NULL REFERENCES feeds(id) ON DELETE CASCADE,
    link      TEXT NOT NULL,
    title     TEXT NOT NULL DEFAULT '',
    summary   TEXT,
    author    TEXT,
    published BIGINT NOT NULL,
    read      BOOLEAN NOT NULL DEFAULT FALSE,
    starred   BOOLEAN NOT NULL DEFAULT FALSE,
    UNIQUE(feed_id, link)
)`); err != nil {
		return err
	}

	indexes := []string{
		// Owner names are unique regardless of case; the usecase pre-check
		// alone would race under concurrent registration
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_owners_name_lower ON owners (LOWER(name))`,
		// ORDER BY published DESC is the hot path for entry listing
		`CREATE INDEX IF NOT EXISTS idx_entries_published ON entries(published DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_feed_id ON entries(feed_id)`,
		// starred-only listing
		`CREATE INDEX IF NOT EXISTS idx_entries_starred ON entries(feed_id) WHERE starred = TRUE`,
		`CREATE INDEX IF NOT EXISTS idx_feeds_owner_id ON feeds(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_feeds_folder_id ON feeds(folder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_folders_owner_id ON folders(owner_id)`,
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}

// MigrateDown rolls back the database schema.
// Use with caution: this will delete all data.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS entries CASCADE`,
		`DROP TABLE IF EXISTS feeds CASCADE`,
		`DROP TABLE IF EXISTS folders CASCADE`,
		`DROP TABLE IF EXISTS owners CASCADE`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
