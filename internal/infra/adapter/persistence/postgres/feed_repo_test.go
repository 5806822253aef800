package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"homefeed/internal/domain/entity"
	"homefeed/internal/infra/adapter/persistence/postgres"
)

/* ──────────────────────────────── helpers ──────────────────────────────── */

func feedRow(f *entity.Feed) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "owner_id", "folder_id", "name",
		"feed_url", "site_url", "icon_url", "added_at",
	}).AddRow(
		f.ID, f.OwnerID, f.FolderID, f.Name,
		f.FeedURL, f.SiteURL, f.IconURL, f.AddedAt,
	)
}

/* ──────────────────────────────── 1. Get ──────────────────────────────── */

func TestFeedRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	icon := "https://example.com/icon.png"
	want := &entity.Feed{
		ID: 1, OwnerID: 1, Name: "Example", FeedURL: "https://example.com/feed",
		SiteURL: "https://example.com", IconURL: &icon, AddedAt: time.Now(),
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id`)).
		WithArgs(int64(1)).
		WillReturnRows(feedRow(want))

	repo := postgres.NewFeedRepo(db)
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

func TestFeedRepo_Get_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "folder_id", "name",
			"feed_url", "site_url", "icon_url", "added_at",
		}))

	repo := postgres.NewFeedRepo(db)
	got, err := repo.Get(context.Background(), 99)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if got != nil {
		t.Fatalf("Get = %+v, want nil for missing row", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 2. List ──────────────────────────────── */

func TestFeedRepo_List(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`FROM feeds`).
		WillReturnRows(feedRow(&entity.Feed{
			ID: 1, OwnerID: 1, Name: "Example",
			FeedURL: "https://example.com/feed", AddedAt: time.Now(),
		}))

	repo := postgres.NewFeedRepo(db)
	got, err := repo.List(context.Background())
	if err != nil || len(got) != 1 {
		t.Fatalf("List err=%v len=%d", err, len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 3. Create ──────────────────────────────── */

func TestFeedRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO feeds`)).
		WithArgs(int64(1), nil, "Example", "https://example.com/feed",
			"https://example.com", nil, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	repo := postgres.NewFeedRepo(db)
	feed := &entity.Feed{
		OwnerID: 1, Name: "Example",
		FeedURL: "https://example.com/feed", SiteURL: "https://example.com",
		AddedAt: now,
	}
	if err := repo.Create(context.Background(), feed); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if feed.ID != 7 {
		t.Fatalf("feed.ID = %d, want assigned id 7", feed.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 4. Update / Delete ──────────────────────────────── */

func TestFeedRepo_Update_NoRows(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`UPDATE feeds`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewFeedRepo(db)
	err := repo.Update(context.Background(), &entity.Feed{ID: 99, Name: "x", FeedURL: "https://x"})
	if err == nil {
		t.Fatal("Update err=nil, want no rows affected error")
	}
}

func TestFeedRepo_Delete(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM feeds WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewFeedRepo(db)
	if err := repo.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 5. ExistsByOwnerAndURL ──────────────────────────────── */

func TestFeedRepo_ExistsByOwnerAndURL(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs(int64(1), "https://example.com/feed").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := postgres.NewFeedRepo(db)
	exists, err := repo.ExistsByOwnerAndURL(context.Background(), 1, "https://example.com/feed")
	if err != nil {
		t.Fatalf("ExistsByOwnerAndURL err=%v", err)
	}
	if !exists {
		t.Fatal("exists = false, want true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 6. SetIconURL ──────────────────────────────── */

func TestFeedRepo_SetIconURL(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	icon := "https://example.com/icon.png"
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE feeds SET icon_url = $1 WHERE id = $2`)).
		WithArgs(icon, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewFeedRepo(db)
	if err := repo.SetIconURL(context.Background(), 1, &icon); err != nil {
		t.Fatalf("SetIconURL err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFeedRepo_SetIconURL_Clear(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE feeds SET icon_url = $1 WHERE id = $2`)).
		WithArgs(nil, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewFeedRepo(db)
	if err := repo.SetIconURL(context.Background(), 1, nil); err != nil {
		t.Fatalf("SetIconURL err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
