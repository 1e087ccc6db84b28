package blog

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned by Apply when a newer load has started since
// the ticket was issued.
var ErrSuperseded = errors.New("blog: load superseded by a newer request")

// Fetcher loads the page behind a listing cursor.
type Fetcher interface {
	NextPage(ctx context.Context, cursor string) (PostPagination, error)
}

// Ticket identifies one in-flight load.
type Ticket struct {
	gen    uint64
	cursor string
}

// Cursor is the page the ticket loads.
func (t Ticket) Cursor() string { return t.cursor }

// Listing is the incrementally loaded post list. Loaded posts only ever grow
// at the end: earlier posts stay a prefix and each uid appears once.
type Listing struct {
	mu     sync.Mutex
	posts  []Post
	seen   map[string]struct{}
	cursor string
	gen    uint64
}

// NewListing starts a listing from its first page.
func NewListing(first PostPagination) *Listing {
	l := &Listing{seen: make(map[string]struct{}), cursor: first.NextPage}
	l.appendNew(first.Results)
	return l
}

// Posts returns a copy of the loaded posts.
func (l *Listing) Posts() []Post {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Post(nil), l.posts...)
}

// NextPage returns the cursor of the next page, "" at the end.
func (l *Listing) NextPage() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursor
}

// HasMore reports whether another page exists.
func (l *Listing) HasMore() bool {
	return l.NextPage() != ""
}

// MarkSeen records uids already shown elsewhere so later pages skip them.
func (l *Listing) MarkSeen(uids ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, uid := range uids {
		if uid != "" {
			l.seen[uid] = struct{}{}
		}
	}
}

// Begin issues a ticket for loading the next page and invalidates every
// earlier ticket. It reports false when there is nothing left to load.
func (l *Listing) Begin() (Ticket, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cursor == "" {
		return Ticket{}, false
	}
	l.gen++
	return Ticket{gen: l.gen, cursor: l.cursor}, true
}

// Apply merges page into the listing if t is still the latest ticket and
// returns the posts actually appended.
func (l *Listing) Apply(t Ticket, page PostPagination) ([]Post, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t.gen != l.gen {
		return nil, ErrSuperseded
	}
	added := l.appendNew(page.Results)
	l.cursor = page.NextPage
	return added, nil
}

// LoadMore fetches and merges the next page. It is a no-op without a
// cursor. On error the listing is left untouched.
func (l *Listing) LoadMore(ctx context.Context, f Fetcher) ([]Post, error) {
	t, ok := l.Begin()
	if !ok {
		return nil, nil
	}
	page, err := f.NextPage(ctx, t.cursor)
	if err != nil {
		return nil, err
	}
	return l.Apply(t, page)
}

// appendNew requires l.mu held, except during construction.
func (l *Listing) appendNew(posts []Post) []Post {
	var added []Post
	for _, p := range posts {
		if _, dup := l.seen[p.UID]; dup {
			continue
		}
		l.seen[p.UID] = struct{}{}
		l.posts = append(l.posts, p)
		added = append(added, p)
	}
	return added
}
