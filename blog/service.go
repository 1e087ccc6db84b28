package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/eringen/spacetraveling/prismic"
)

// Field paths fetched for listing and neighbor queries.
var (
	summaryFields  = []string{DocumentType + ".title", DocumentType + ".subtitle", DocumentType + ".author"}
	neighborFields = []string{DocumentType + ".title"}
	newestFirst    = []prismic.Ordering{{Field: prismic.FieldFirstPublicationDate, Desc: true}}
	oldestFirst    = []prismic.Ordering{{Field: prismic.FieldFirstPublicationDate}}
)

// Service reads posts from the CMS. It is safe for concurrent use.
type Service struct {
	client *prismic.Client
	norm   *Normalizer
}

// NewService returns a Service backed by client.
func NewService(client *prismic.Client, dates *DateFormatter) *Service {
	return &Service{client: client, norm: NewNormalizer(dates)}
}

// Client returns the underlying CMS client.
func (s *Service) Client() *prismic.Client { return s.client }

func (s *Service) scoped(ref string) *prismic.Client {
	if ref == "" {
		return s.client
	}
	return s.client.WithRef(ref)
}

// ListPosts returns the first page of posts, newest first. An empty ref
// reads the published content.
func (s *Service) ListPosts(ctx context.Context, ref string, pageSize int) (PostPagination, error) {
	resp, err := s.scoped(ref).Query(ctx,
		[]prismic.Predicate{prismic.At(prismic.FieldType, DocumentType)},
		prismic.QueryOptions{
			Fetch:     summaryFields,
			PageSize:  pageSize,
			Page:      1,
			Orderings: newestFirst,
		})
	if err != nil {
		return PostPagination{}, fmt.Errorf("list posts: %w", err)
	}
	return s.norm.Page(resp)
}

// NextPage follows a listing cursor.
func (s *Service) NextPage(ctx context.Context, cursor string) (PostPagination, error) {
	resp, err := s.client.FetchPage(ctx, cursor)
	if err != nil {
		return PostPagination{}, fmt.Errorf("fetch next page: %w", err)
	}
	return s.norm.Page(resp)
}

// AllPosts walks the listing from page 1, following cursors for at most
// maxPages pages. maxPages <= 0 means no limit.
func (s *Service) AllPosts(ctx context.Context, ref string, pageSize, maxPages int) ([]Post, error) {
	page, err := s.ListPosts(ctx, ref, pageSize)
	if err != nil {
		return nil, err
	}
	l := NewListing(page)
	for n := 1; l.HasMore() && (maxPages <= 0 || n < maxPages); n++ {
		if _, err := l.LoadMore(ctx, s); err != nil {
			return nil, err
		}
	}
	return l.Posts(), nil
}

// PostUIDs returns the uids of the newest limit posts.
func (s *Service) PostUIDs(ctx context.Context, limit int) ([]string, error) {
	page, err := s.ListPosts(ctx, "", limit)
	if err != nil {
		return nil, err
	}
	uids := make([]string, 0, len(page.Results))
	for _, p := range page.Results {
		uids = append(uids, p.UID)
	}
	return uids, nil
}

// Post returns the post with uid and its neighbors. A non-empty ref reads
// preview content; previews get no Previous link. Unknown uids yield
// ErrNotFound.
func (s *Service) Post(ctx context.Context, uid, ref string) (PostPage, error) {
	client := s.scoped(ref)
	doc, err := client.GetByUID(ctx, DocumentType, uid)
	if errors.Is(err, prismic.ErrNotFound) {
		return PostPage{}, ErrNotFound
	}
	if err != nil {
		return PostPage{}, fmt.Errorf("get post %q: %w", uid, err)
	}
	post, err := s.norm.Full(*doc)
	if err != nil {
		return PostPage{}, err
	}

	page := PostPage{Post: post}
	if post.PublishedAt == nil {
		return page, nil
	}
	at := *post.PublishedAt
	if ref == "" {
		page.Previous, err = s.neighbor(ctx, client, post.UID, prismic.DateAfter(prismic.FieldFirstPublicationDate, at), oldestFirst)
		if err != nil {
			return PostPage{}, fmt.Errorf("previous post of %q: %w", uid, err)
		}
	}
	page.Next, err = s.neighbor(ctx, client, post.UID, prismic.DateBefore(prismic.FieldFirstPublicationDate, at), newestFirst)
	if err != nil {
		return PostPage{}, fmt.Errorf("next post of %q: %w", uid, err)
	}
	return page, nil
}

func (s *Service) neighbor(ctx context.Context, client *prismic.Client, self string, pred prismic.Predicate, order []prismic.Ordering) (*Neighbor, error) {
	resp, err := client.Query(ctx,
		[]prismic.Predicate{prismic.At(prismic.FieldType, DocumentType), pred},
		prismic.QueryOptions{Fetch: neighborFields, PageSize: 1, Page: 1, Orderings: order})
	if err != nil {
		return nil, err
	}
	for _, doc := range resp.Results {
		if doc.UID != "" && doc.UID != self {
			return neighbor(doc), nil
		}
	}
	return nil, nil
}

// Banner returns the banner of the published post with uid.
func (s *Service) Banner(ctx context.Context, uid string) (Banner, error) {
	doc, err := s.client.GetByUID(ctx, DocumentType, uid)
	if errors.Is(err, prismic.ErrNotFound) {
		return Banner{}, ErrNotFound
	}
	if err != nil {
		return Banner{}, fmt.Errorf("get banner %q: %w", uid, err)
	}
	var data publicationData
	if err := doc.DecodeData(&data); err != nil {
		return Banner{}, err
	}
	if data.Banner == nil || data.Banner.URL == nil || *data.Banner.URL == "" {
		return Banner{}, missing(*doc, "banner.url")
	}
	b := Banner{URL: *data.Banner.URL}
	if data.Banner.Alt != nil {
		b.Alt = *data.Banner.Alt
	}
	return b, nil
}

// ResolvePreview returns the site path of document docID under a preview
// ref. Documents that are not posts resolve to "/".
func (s *Service) ResolvePreview(ctx context.Context, ref, docID string) (string, error) {
	if docID == "" {
		return "/", nil
	}
	doc, err := s.scoped(ref).GetByID(ctx, docID)
	if errors.Is(err, prismic.ErrNotFound) {
		return "/", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve preview %q: %w", docID, err)
	}
	if doc.Type != DocumentType || doc.UID == "" {
		return "/", nil
	}
	return Post{UID: doc.UID}.Link(), nil
}
