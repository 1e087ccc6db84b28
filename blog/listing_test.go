package blog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// pageFetcher serves pages keyed by cursor.
type pageFetcher struct {
	mu    sync.Mutex
	pages map[string]PostPagination
	err   error
	calls []string
}

func (f *pageFetcher) NextPage(_ context.Context, cursor string) (PostPagination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cursor)
	if f.err != nil {
		return PostPagination{}, f.err
	}
	p, ok := f.pages[cursor]
	if !ok {
		return PostPagination{}, fmt.Errorf("unknown cursor %q", cursor)
	}
	return p, nil
}

func posts(uids ...string) []Post {
	out := make([]Post, 0, len(uids))
	for _, uid := range uids {
		out = append(out, Post{UID: uid, Title: "Title " + uid})
	}
	return out
}

func uidsOf(ps []Post) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.UID)
	}
	return out
}

func TestListingLoadMoreKeepsPrefix(t *testing.T) {
	l := NewListing(PostPagination{NextPage: "c2", Results: posts("a", "b", "c", "d")})
	f := &pageFetcher{pages: map[string]PostPagination{
		"c2": {NextPage: "c3", Results: posts("e", "f", "g", "h")},
		"c3": {Results: posts("i")},
	}}

	before := l.Posts()
	added, err := l.LoadMore(context.Background(), f)
	if err != nil {
		t.Fatalf("LoadMore failed: %v", err)
	}
	after := l.Posts()
	if len(added) != 4 || len(after) != len(before)+4 {
		t.Fatalf("expected 4 new posts, got %v (total %d)", uidsOf(added), len(after))
	}
	for i := range before {
		if after[i].UID != before[i].UID {
			t.Errorf("prefix changed at %d: %q != %q", i, after[i].UID, before[i].UID)
		}
	}
	if l.NextPage() != "c3" {
		t.Errorf("cursor = %q, want c3", l.NextPage())
	}

	if _, err := l.LoadMore(context.Background(), f); err != nil {
		t.Fatalf("LoadMore failed: %v", err)
	}
	if l.HasMore() {
		t.Error("expected the listing to be exhausted")
	}
	if got := len(l.Posts()); got != 9 {
		t.Errorf("expected 9 posts, got %d", got)
	}
}

func TestListingLoadMoreWithoutCursorIsNoop(t *testing.T) {
	l := NewListing(PostPagination{Results: posts("a")})
	f := &pageFetcher{}
	added, err := l.LoadMore(context.Background(), f)
	if err != nil || added != nil {
		t.Fatalf("expected no-op, got %v, %v", added, err)
	}
	if len(f.calls) != 0 {
		t.Errorf("expected no fetch, got %v", f.calls)
	}
	if l.HasMore() {
		t.Error("HasMore should be false without a cursor")
	}
}

func TestListingFetchErrorLeavesStateUnchanged(t *testing.T) {
	l := NewListing(PostPagination{NextPage: "c2", Results: posts("a", "b")})
	boom := errors.New("boom")
	if _, err := l.LoadMore(context.Background(), &pageFetcher{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got := uidsOf(l.Posts()); len(got) != 2 || l.NextPage() != "c2" {
		t.Errorf("state changed after error: %v cursor=%q", got, l.NextPage())
	}
}

func TestListingOverlappingLoads(t *testing.T) {
	l := NewListing(PostPagination{NextPage: "c2", Results: posts("a", "b")})
	first, ok := l.Begin()
	if !ok {
		t.Fatal("expected a ticket")
	}
	second, _ := l.Begin()
	if first.Cursor() != "c2" || second.Cursor() != "c2" {
		t.Fatalf("tickets should load the same cursor: %q %q", first.Cursor(), second.Cursor())
	}

	page := PostPagination{NextPage: "c3", Results: posts("c", "d")}
	if _, err := l.Apply(second, page); err != nil {
		t.Fatalf("latest ticket should apply: %v", err)
	}
	if _, err := l.Apply(first, page); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("stale ticket should be rejected, got %v", err)
	}

	seen := map[string]bool{}
	for _, uid := range uidsOf(l.Posts()) {
		if seen[uid] {
			t.Fatalf("duplicate uid %q in %v", uid, uidsOf(l.Posts()))
		}
		seen[uid] = true
	}
	if len(seen) != 4 {
		t.Errorf("expected 4 posts, got %d", len(seen))
	}
}

func TestListingConcurrentLoadsNeverDuplicate(t *testing.T) {
	l := NewListing(PostPagination{NextPage: "c2", Results: posts("a", "b")})
	f := &pageFetcher{pages: map[string]PostPagination{
		"c2": {NextPage: "c3", Results: posts("c", "d")},
		"c3": {NextPage: "c4", Results: posts("e", "f")},
		"c4": {Results: posts("g")},
	}}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.LoadMore(context.Background(), f)
			if err != nil && !errors.Is(err, ErrSuperseded) {
				t.Errorf("LoadMore failed: %v", err)
			}
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, uid := range uidsOf(l.Posts()) {
		if seen[uid] {
			t.Fatalf("duplicate uid %q", uid)
		}
		seen[uid] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Error("first page must stay loaded")
	}
}

func TestListingMarkSeenSkipsDuplicates(t *testing.T) {
	l := NewListing(PostPagination{NextPage: "c2"})
	l.MarkSeen("a", "b", "")
	f := &pageFetcher{pages: map[string]PostPagination{
		"c2": {Results: posts("b", "c", "c")},
	}}
	added, err := l.LoadMore(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if got := uidsOf(added); len(got) != 1 || got[0] != "c" {
		t.Errorf("added = %v, want [c]", got)
	}
}
