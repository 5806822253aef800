package ingest_test

import (
	"testing"
	"time"

	ingestUC "homefeed/internal/usecase/ingest"
)

func candidate(link, title string) ingestUC.Candidate {
	return ingestUC.Candidate{Link: link, Title: title}
}

func TestReconcile_NewEntries(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	published := time.Date(2025, 5, 30, 8, 0, 0, 0, time.UTC)

	candidates := []ingestUC.Candidate{
		{Link: "https://example.com/a", Title: "A", Summary: "summary a", Author: "alice", PublishedAt: &published},
		{Link: "https://example.com/b", Title: "B"},
	}

	result := ingestUC.Reconcile(7, nil, candidates, now)

	if len(result.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(result.Entries))
	}
	if result.SkippedDuplicate != 0 || result.SkippedMissingLink != 0 {
		t.Fatalf("unexpected skips: dup=%d missing=%d", result.SkippedDuplicate, result.SkippedMissingLink)
	}

	a := result.Entries[0]
	if a.FeedID != 7 {
		t.Errorf("FeedID = %d, want 7", a.FeedID)
	}
	if a.Link != "https://example.com/a" || a.Title != "A" {
		t.Errorf("entry a = %+v", a)
	}
	if a.Summary == nil || *a.Summary != "summary a" {
		t.Errorf("Summary = %v, want 'summary a'", a.Summary)
	}
	if a.Author == nil || *a.Author != "alice" {
		t.Errorf("Author = %v, want 'alice'", a.Author)
	}
	if a.Published != published.Unix() {
		t.Errorf("Published = %d, want %d", a.Published, published.Unix())
	}

	// Optional fields stay nil when the feed did not provide them.
	b := result.Entries[1]
	if b.Summary != nil || b.Author != nil {
		t.Errorf("entry b should have nil Summary/Author: %+v", b)
	}
	if b.Published != now.Unix() {
		t.Errorf("Published = %d, want fallback %d", b.Published, now.Unix())
	}
}

func TestReconcile_SkipsStoredLinks(t *testing.T) {
	existing := map[string]bool{"https://example.com/a": true}
	candidates := []ingestUC.Candidate{
		candidate("https://example.com/a", "A"),
		candidate("https://example.com/b", "B"),
	}

	result := ingestUC.Reconcile(1, existing, candidates, time.Now())

	if len(result.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(result.Entries))
	}
	if result.Entries[0].Link != "https://example.com/b" {
		t.Errorf("stored link = %q, want b", result.Entries[0].Link)
	}
	if result.SkippedDuplicate != 1 {
		t.Errorf("SkippedDuplicate = %d, want 1", result.SkippedDuplicate)
	}
}

func TestReconcile_FirstOccurrenceWins(t *testing.T) {
	candidates := []ingestUC.Candidate{
		candidate("https://example.com/a", "first"),
		candidate("https://example.com/a", "second"),
		candidate("https://example.com/a", "third"),
	}

	result := ingestUC.Reconcile(1, nil, candidates, time.Now())

	if len(result.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(result.Entries))
	}
	if result.Entries[0].Title != "first" {
		t.Errorf("Title = %q, want 'first'", result.Entries[0].Title)
	}
	if result.SkippedDuplicate != 2 {
		t.Errorf("SkippedDuplicate = %d, want 2", result.SkippedDuplicate)
	}
}

func TestReconcile_MixedBatch(t *testing.T) {
	// Two links already stored, one new link appearing twice with different
	// timestamps, plus a link-less candidate. Exactly one entry comes out and
	// it carries the first occurrence's timestamp.
	t1 := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)

	existing := map[string]bool{
		"https://example.com/a": true,
		"https://example.com/b": true,
	}
	candidates := []ingestUC.Candidate{
		{Link: "https://example.com/a", Title: "A retitled"},
		{Link: "https://example.com/c", Title: "C", PublishedAt: &t1},
		{Link: "https://example.com/c", Title: "C republished", PublishedAt: &t2},
		{Title: "no link"},
	}

	result := ingestUC.Reconcile(1, existing, candidates, time.Now())

	if len(result.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(result.Entries))
	}
	got := result.Entries[0]
	if got.Link != "https://example.com/c" || got.Title != "C" {
		t.Errorf("entry = %+v, want the first occurrence of c", got)
	}
	if got.Published != t1.Unix() {
		t.Errorf("Published = %d, want first occurrence's %d", got.Published, t1.Unix())
	}
	if result.SkippedDuplicate != 2 {
		t.Errorf("SkippedDuplicate = %d, want 2", result.SkippedDuplicate)
	}
	if result.SkippedMissingLink != 1 {
		t.Errorf("SkippedMissingLink = %d, want 1", result.SkippedMissingLink)
	}
}

func TestReconcile_SkipsMissingLink(t *testing.T) {
	candidates := []ingestUC.Candidate{
		candidate("", "no identity"),
		candidate("https://example.com/a", "A"),
	}

	result := ingestUC.Reconcile(1, nil, candidates, time.Now())

	if len(result.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(result.Entries))
	}
	if result.SkippedMissingLink != 1 {
		t.Errorf("SkippedMissingLink = %d, want 1", result.SkippedMissingLink)
	}
}

func TestReconcile_PublishedFallback(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	published := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		c    ingestUC.Candidate
		want int64
	}{
		{
			name: "published date preferred",
			c:    ingestUC.Candidate{Link: "https://example.com/a", PublishedAt: &published, UpdatedAt: &updated},
			want: published.Unix(),
		},
		{
			name: "updated date when published missing",
			c:    ingestUC.Candidate{Link: "https://example.com/b", UpdatedAt: &updated},
			want: updated.Unix(),
		},
		{
			name: "ingestion time when both missing",
			c:    ingestUC.Candidate{Link: "https://example.com/c"},
			want: now.Unix(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ingestUC.Reconcile(1, nil, []ingestUC.Candidate{tt.c}, now)
			if len(result.Entries) != 1 {
				t.Fatalf("entries = %d, want 1", len(result.Entries))
			}
			if got := result.Entries[0].Published; got != tt.want {
				t.Errorf("Published = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReconcile_RepeatedPassStoresNothing(t *testing.T) {
	candidates := []ingestUC.Candidate{
		candidate("https://example.com/a", "A"),
		candidate("https://example.com/b", "B"),
	}

	first := ingestUC.Reconcile(1, nil, candidates, time.Now())
	if len(first.Entries) != 2 {
		t.Fatalf("first pass entries = %d, want 2", len(first.Entries))
	}

	// Second pass over the unchanged document with the first pass persisted.
	existing := make(map[string]bool)
	for _, e := range first.Entries {
		existing[e.Link] = true
	}

	second := ingestUC.Reconcile(1, existing, candidates, time.Now())
	if len(second.Entries) != 0 {
		t.Fatalf("second pass entries = %d, want 0", len(second.Entries))
	}
	if second.SkippedDuplicate != 2 {
		t.Errorf("SkippedDuplicate = %d, want 2", second.SkippedDuplicate)
	}
}
