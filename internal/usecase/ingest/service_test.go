package ingest_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"homefeed/internal/domain/entity"
	"homefeed/internal/repository"
	ingestUC "homefeed/internal/usecase/ingest"
)

/* ──────────────────────────────── stubs ──────────────────────────────── */

type stubFeedRepo struct {
	feeds   map[int64]*entity.Feed
	listErr error
	getErr  error
}

func newStubFeedRepo(feeds ...*entity.Feed) *stubFeedRepo {
	s := &stubFeedRepo{feeds: map[int64]*entity.Feed{}}
	for _, f := range feeds {
		s.feeds[f.ID] = f
	}
	return s
}

func (s *stubFeedRepo) Get(_ context.Context, id int64) (*entity.Feed, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.feeds[id], nil
}

func (s *stubFeedRepo) List(_ context.Context) ([]*entity.Feed, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []*entity.Feed
	for _, f := range s.feeds {
		out = append(out, f)
	}
	return out, nil
}

// Unused by the ingest use case but required by the interface.
func (s *stubFeedRepo) ListByOwner(_ context.Context, _ int64) ([]*entity.Feed, error) {
	return nil, nil
}
func (s *stubFeedRepo) Create(_ context.Context, _ *entity.Feed) error { return nil }
func (s *stubFeedRepo) Update(_ context.Context, _ *entity.Feed) error { return nil }
func (s *stubFeedRepo) Delete(_ context.Context, _ int64) error        { return nil }
func (s *stubFeedRepo) ExistsByOwnerAndURL(_ context.Context, _ int64, _ string) (bool, error) {
	return false, nil
}
func (s *stubFeedRepo) SetIconURL(_ context.Context, _ int64, _ *string) error { return nil }

type stubEntryRepo struct {
	mu        sync.Mutex
	stored    []*entity.Entry
	nextID    int64
	existing  map[int64]map[string]bool // feedID -> link set
	createErr error
	linksErr  error
}

func (s *stubEntryRepo) ExistingLinks(_ context.Context, feedID int64, links []string) (map[string]bool, error) {
	if s.linksErr != nil {
		return nil, s.linksErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool)
	for _, l := range links {
		if s.existing[feedID][l] {
			out[l] = true
		}
	}
	return out, nil
}

func (s *stubEntryRepo) CreateBatch(_ context.Context, entries []*entity.Entry) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existing == nil {
		s.existing = map[int64]map[string]bool{}
	}
	for _, e := range entries {
		s.nextID++
		e.ID = s.nextID
		s.stored = append(s.stored, e)
		if s.existing[e.FeedID] == nil {
			s.existing[e.FeedID] = map[string]bool{}
		}
		s.existing[e.FeedID][e.Link] = true
	}
	return nil
}

// Unused by the ingest use case but required by the interface.
func (s *stubEntryRepo) Get(_ context.Context, _ int64) (*entity.Entry, error) { return nil, nil }
func (s *stubEntryRepo) ListByOwnerPaginated(_ context.Context, _ int64, _ repository.EntryListFilters, _, _ int) ([]*entity.Entry, error) {
	return nil, nil
}
func (s *stubEntryRepo) CountByOwner(_ context.Context, _ int64, _ repository.EntryListFilters) (int64, error) {
	return 0, nil
}
func (s *stubEntryRepo) CountAll(_ context.Context) (int64, error)              { return 0, nil }
func (s *stubEntryRepo) SetRead(_ context.Context, _, _ int64, _ bool) error    { return nil }
func (s *stubEntryRepo) SetStarred(_ context.Context, _, _ int64, _ bool) error { return nil }
func (s *stubEntryRepo) Delete(_ context.Context, _ int64) error                { return nil }

type stubFetcher struct {
	docs map[string]*ingestUC.Document // feedURL -> document
	errs map[string]error              // feedURL -> forced error
}

func (s *stubFetcher) Fetch(_ context.Context, feedURL string) (*ingestUC.Document, error) {
	if err := s.errs[feedURL]; err != nil {
		return nil, err
	}
	if doc, ok := s.docs[feedURL]; ok {
		return doc, nil
	}
	return &ingestUC.Document{}, nil
}

func feedFixture(id int64, url string) *entity.Feed {
	return &entity.Feed{ID: id, OwnerID: 1, Name: "feed", FeedURL: url, AddedAt: time.Now()}
}

/* ──────────────────────────────── IngestByID ──────────────────────────────── */

func TestService_IngestByID_StoresNewEntries(t *testing.T) {
	feedRepo := newStubFeedRepo(feedFixture(1, "https://example.com/feed"))
	entryRepo := &stubEntryRepo{}
	fetcher := &stubFetcher{docs: map[string]*ingestUC.Document{
		"https://example.com/feed": {
			Title: "Example",
			Candidates: []ingestUC.Candidate{
				{Link: "https://example.com/a", Title: "A"},
				{Link: "https://example.com/b", Title: "B"},
			},
		},
	}}

	svc := ingestUC.NewService(feedRepo, entryRepo, fetcher)

	res, err := svc.IngestByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("IngestByID err=%v", err)
	}
	if res.Fetched != 2 || res.Stored != 2 {
		t.Fatalf("result = %+v, want fetched=2 stored=2", res)
	}
	if len(entryRepo.stored) != 2 {
		t.Fatalf("stored = %d, want 2", len(entryRepo.stored))
	}
}

func TestService_IngestByID_Idempotent(t *testing.T) {
	feedRepo := newStubFeedRepo(feedFixture(1, "https://example.com/feed"))
	entryRepo := &stubEntryRepo{}
	fetcher := &stubFetcher{docs: map[string]*ingestUC.Document{
		"https://example.com/feed": {
			Candidates: []ingestUC.Candidate{
				{Link: "https://example.com/a", Title: "A"},
			},
		},
	}}

	svc := ingestUC.NewService(feedRepo, entryRepo, fetcher)

	if _, err := svc.IngestByID(context.Background(), 1); err != nil {
		t.Fatalf("first pass err=%v", err)
	}
	res, err := svc.IngestByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("second pass err=%v", err)
	}

	if res.Stored != 0 || res.SkippedDuplicate != 1 {
		t.Fatalf("second pass = %+v, want stored=0 skipped_duplicate=1", res)
	}
	if len(entryRepo.stored) != 1 {
		t.Fatalf("stored = %d, want 1", len(entryRepo.stored))
	}
}

func TestService_IngestByID_UnknownFeed(t *testing.T) {
	svc := ingestUC.NewService(newStubFeedRepo(), &stubEntryRepo{}, &stubFetcher{})

	_, err := svc.IngestByID(context.Background(), 42)
	if !errors.Is(err, ingestUC.ErrFeedNotFound) {
		t.Fatalf("err = %v, want ErrFeedNotFound", err)
	}
}

func TestService_IngestByID_FetchFailure(t *testing.T) {
	feedRepo := newStubFeedRepo(feedFixture(1, "https://example.com/feed"))
	fetcher := &stubFetcher{errs: map[string]error{
		"https://example.com/feed": errors.New("connection refused"),
	}}

	svc := ingestUC.NewService(feedRepo, &stubEntryRepo{}, fetcher)

	_, err := svc.IngestByID(context.Background(), 1)
	var fetchErr *ingestUC.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("err = %v, want *FetchError", err)
	}
	if fetchErr.FeedID != 1 {
		t.Errorf("FetchError.FeedID = %d, want 1", fetchErr.FeedID)
	}
}

/* ──────────────────────────────── IngestAll ──────────────────────────────── */

func TestService_IngestAll_ContinuesPastFetchFailures(t *testing.T) {
	feedRepo := newStubFeedRepo(
		feedFixture(1, "https://a.example.com/feed"),
		feedFixture(2, "https://b.example.com/feed"),
		feedFixture(3, "https://c.example.com/feed"),
	)
	entryRepo := &stubEntryRepo{}
	fetcher := &stubFetcher{
		docs: map[string]*ingestUC.Document{
			"https://a.example.com/feed": {Candidates: []ingestUC.Candidate{
				{Link: "https://a.example.com/1", Title: "a1"},
			}},
			"https://c.example.com/feed": {Candidates: []ingestUC.Candidate{
				{Link: "https://c.example.com/1", Title: "c1"},
				{Link: "https://c.example.com/2", Title: "c2"},
			}},
		},
		errs: map[string]error{
			"https://b.example.com/feed": errors.New("503 service unavailable"),
		},
	}

	svc := ingestUC.NewService(feedRepo, entryRepo, fetcher)

	stats, err := svc.IngestAll(context.Background())
	if err != nil {
		t.Fatalf("IngestAll err=%v", err)
	}
	if stats.Feeds != 3 {
		t.Errorf("Feeds = %d, want 3", stats.Feeds)
	}
	if stats.Failed != 1 {
		t.Errorf("Failed = %d, want 1", stats.Failed)
	}
	if stats.Stored != 3 {
		t.Errorf("Stored = %d, want 3", stats.Stored)
	}
	if stats.RunID == "" {
		t.Error("RunID should not be empty")
	}
}

func TestService_IngestAll_StorageErrorAborts(t *testing.T) {
	feedRepo := newStubFeedRepo(feedFixture(1, "https://a.example.com/feed"))
	entryRepo := &stubEntryRepo{createErr: errors.New("disk full")}
	fetcher := &stubFetcher{docs: map[string]*ingestUC.Document{
		"https://a.example.com/feed": {Candidates: []ingestUC.Candidate{
			{Link: "https://a.example.com/1", Title: "a1"},
		}},
	}}

	svc := ingestUC.NewService(feedRepo, entryRepo, fetcher)

	if _, err := svc.IngestAll(context.Background()); err == nil {
		t.Fatal("IngestAll err=nil, want storage error")
	}
}

func TestService_IngestAll_NoFeeds(t *testing.T) {
	svc := ingestUC.NewService(newStubFeedRepo(), &stubEntryRepo{}, &stubFetcher{})

	stats, err := svc.IngestAll(context.Background())
	if err != nil {
		t.Fatalf("IngestAll err=%v", err)
	}
	if stats.Feeds != 0 || stats.Stored != 0 {
		t.Fatalf("stats = %+v, want empty run", stats)
	}
}

func TestService_IngestAll_ListError(t *testing.T) {
	feedRepo := newStubFeedRepo()
	feedRepo.listErr = errors.New("db down")

	svc := ingestUC.NewService(feedRepo, &stubEntryRepo{}, &stubFetcher{})

	if _, err := svc.IngestAll(context.Background()); err == nil {
		t.Fatal("IngestAll err=nil, want list error")
	}
}
