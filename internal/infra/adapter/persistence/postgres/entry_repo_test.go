package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"homefeed/internal/domain/entity"
	"homefeed/internal/infra/adapter/persistence/postgres"
	"homefeed/internal/repository"
)

func entryRow(e *entity.Entry) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "feed_id", "link", "title",
		"summary", "author", "published", "read", "starred",
	}).AddRow(
		e.ID, e.FeedID, e.Link, e.Title,
		e.Summary, e.Author, e.Published, e.Read, e.Starred,
	)
}

/* ──────────────────────────────── 1. Get ──────────────────────────────── */

func TestEntryRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	summary := "an entry"
	want := &entity.Entry{
		ID: 1, FeedID: 2, Link: "https://example.com/a", Title: "A",
		Summary: &summary, Published: 1735689600,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id`)).
		WithArgs(int64(1)).
		WillReturnRows(entryRow(want))

	repo := postgres.NewEntryRepo(db)
	got, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 2. ListByOwnerPaginated ──────────────────────────────── */

func TestEntryRepo_ListByOwnerPaginated(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`INNER JOIN feeds f ON e.feed_id = f.id`).
		WithArgs(int64(1), 30, 0).
		WillReturnRows(entryRow(&entity.Entry{
			ID: 1, FeedID: 2, Link: "https://example.com/a", Title: "A", Published: 100,
		}))

	repo := postgres.NewEntryRepo(db)
	got, err := repo.ListByOwnerPaginated(context.Background(), 1, repository.EntryListFilters{}, 0, 30)
	if err != nil || len(got) != 1 {
		t.Fatalf("ListByOwnerPaginated err=%v len=%d", err, len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestEntryRepo_ListByOwnerPaginated_Filters(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	// Filters add positional args after the owner id and narrow the WHERE
	// clause; the feeds join stays regardless.
	mock.ExpectQuery(`e\.feed_id = \$2 AND f\.folder_id = \$3 AND e\.starred = TRUE AND e\.read = FALSE`).
		WithArgs(int64(1), int64(7), int64(3), 30, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "feed_id", "link", "title",
			"summary", "author", "published", "read", "starred",
		}))

	feedID := int64(7)
	folderID := int64(3)
	repo := postgres.NewEntryRepo(db)
	_, err := repo.ListByOwnerPaginated(context.Background(), 1, repository.EntryListFilters{
		FeedID:      &feedID,
		FolderID:    &folderID,
		StarredOnly: true,
		UnreadOnly:  true,
	}, 0, 30)
	if err != nil {
		t.Fatalf("ListByOwnerPaginated err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 3. CountByOwner ──────────────────────────────── */

func TestEntryRepo_CountByOwner(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*)`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	repo := postgres.NewEntryRepo(db)
	count, err := repo.CountByOwner(context.Background(), 1, repository.EntryListFilters{})
	if err != nil {
		t.Fatalf("CountByOwner err=%v", err)
	}
	if count != 42 {
		t.Fatalf("count = %d, want 42", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestEntryRepo_CountAll(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM entries`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3400)))

	repo := postgres.NewEntryRepo(db)
	count, err := repo.CountAll(context.Background())
	if err != nil {
		t.Fatalf("CountAll err=%v", err)
	}
	if count != 3400 {
		t.Fatalf("count = %d, want 3400", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 4. ExistingLinks ──────────────────────────────── */

func TestEntryRepo_ExistingLinks(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT link FROM entries WHERE feed_id = $1 AND link = ANY($2)`)).
		WillReturnRows(sqlmock.NewRows([]string{"link"}).
			AddRow("https://example.com/a"))

	repo := postgres.NewEntryRepo(db)
	got, err := repo.ExistingLinks(context.Background(), 1, []string{
		"https://example.com/a",
		"https://example.com/b",
	})
	if err != nil {
		t.Fatalf("ExistingLinks err=%v", err)
	}
	if !got["https://example.com/a"] || got["https://example.com/b"] {
		t.Fatalf("ExistingLinks = %v, want only link a", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestEntryRepo_ExistingLinks_Empty(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	// No links means no query at all.
	repo := postgres.NewEntryRepo(db)
	got, err := repo.ExistingLinks(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("ExistingLinks err=%v", err)
	}
	if len(got) != 0 {
		t.Fatalf("ExistingLinks = %v, want empty map", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 5. CreateBatch ──────────────────────────────── */

func TestEntryRepo_CreateBatch(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO entries`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO entries`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectCommit()

	entries := []*entity.Entry{
		{FeedID: 1, Link: "https://example.com/a", Title: "A", Published: 100},
		{FeedID: 1, Link: "https://example.com/b", Title: "B", Published: 200},
	}

	repo := postgres.NewEntryRepo(db)
	if err := repo.CreateBatch(context.Background(), entries); err != nil {
		t.Fatalf("CreateBatch err=%v", err)
	}
	if entries[0].ID != 1 || entries[1].ID != 2 {
		t.Fatalf("ids = %d,%d, want 1,2", entries[0].ID, entries[1].ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestEntryRepo_CreateBatch_RollbackOnFailure(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO entries`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO entries`)).
		WillReturnError(errors.New("unique violation"))
	mock.ExpectRollback()

	entries := []*entity.Entry{
		{FeedID: 1, Link: "https://example.com/a", Title: "A", Published: 100},
		{FeedID: 1, Link: "https://example.com/a", Title: "A again", Published: 200},
	}

	repo := postgres.NewEntryRepo(db)
	if err := repo.CreateBatch(context.Background(), entries); err == nil {
		t.Fatal("CreateBatch err=nil, want insert error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestEntryRepo_CreateBatch_NoEntries(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	repo := postgres.NewEntryRepo(db)
	if err := repo.CreateBatch(context.Background(), nil); err != nil {
		t.Fatalf("CreateBatch err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 6. SetRead / SetStarred ──────────────────────────────── */

func TestEntryRepo_SetRead(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`UPDATE entries e SET read = \$1`).
		WithArgs(true, int64(5), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewEntryRepo(db)
	if err := repo.SetRead(context.Background(), 1, 5, true); err != nil {
		t.Fatalf("SetRead err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestEntryRepo_SetRead_UnknownEntry(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`UPDATE entries e SET read = \$1`).
		WithArgs(true, int64(99), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewEntryRepo(db)
	err := repo.SetRead(context.Background(), 1, 99, true)
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("SetRead err=%v, want entity.ErrNotFound for missing entry", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestEntryRepo_SetStarred_OtherOwner(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	// Zero rows affected means the entry is not visible to this owner.
	mock.ExpectExec(`UPDATE entries e SET starred = \$1`).
		WithArgs(true, int64(5), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewEntryRepo(db)
	err := repo.SetStarred(context.Background(), 2, 5, true)
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("SetStarred err=%v, want entity.ErrNotFound for foreign entry", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
