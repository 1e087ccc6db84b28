package prismic_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eringen/spacetraveling/internal/prismictest"
	"github.com/eringen/spacetraveling/prismic"
)

func newClient(t *testing.T, endpoint string, opts ...prismic.Option) *prismic.Client {
	t.Helper()
	c, err := prismic.New(endpoint, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestNewRejectsBadEndpoint(t *testing.T) {
	for _, endpoint := range []string{"", "ftp://example.com/api/v2", "::"} {
		if _, err := prismic.New(endpoint); err == nil {
			t.Errorf("New(%q) should fail", endpoint)
		}
	}
}

func TestQueryResolvesMasterRefAndPaginates(t *testing.T) {
	srv := prismictest.NewServer(
		prismictest.Publication("a", "2021-03-15T12:00:00+0000", "A"),
		prismictest.Publication("b", "2021-03-16T12:00:00+0000", "B"),
		prismictest.Publication("c", "2021-03-17T12:00:00+0000", "C"),
	)
	defer srv.Close()
	c := newClient(t, srv.Endpoint())

	resp, err := c.Query(context.Background(),
		[]prismic.Predicate{prismic.At(prismic.FieldType, "publication")},
		prismic.QueryOptions{
			Fetch:     []string{"publication.title"},
			PageSize:  2,
			Page:      1,
			Orderings: []prismic.Ordering{{Field: prismic.FieldFirstPublicationDate, Desc: true}},
		})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if srv.LastRef() != prismictest.MasterRef {
		t.Errorf("ref = %q, want %q", srv.LastRef(), prismictest.MasterRef)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(resp.Results))
	}
	if resp.Results[0].UID != "c" || resp.Results[1].UID != "b" {
		t.Errorf("order = %s,%s, want c,b", resp.Results[0].UID, resp.Results[1].UID)
	}
	if resp.Next() == "" {
		t.Fatal("expected a next page cursor")
	}

	next, err := c.FetchPage(context.Background(), resp.Next())
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if len(next.Results) != 1 || next.Results[0].UID != "a" {
		t.Fatalf("unexpected second page: %+v", next.Results)
	}
	if next.Next() != "" {
		t.Errorf("expected end of list, got cursor %q", next.Next())
	}
}

func TestWithRefSkipsRootLookup(t *testing.T) {
	srv := prismictest.NewServer()
	defer srv.Close()
	srv.AddPreview("preview-1", prismictest.Publication("draft", "", "Draft"))
	base := newClient(t, srv.Endpoint())
	c := base.WithRef("preview-1")

	doc, err := c.GetByUID(context.Background(), "publication", "draft")
	if err != nil {
		t.Fatalf("GetByUID failed: %v", err)
	}
	if doc.UID != "draft" {
		t.Errorf("UID = %q, want draft", doc.UID)
	}
	if srv.LastRef() != "preview-1" {
		t.Errorf("ref = %q, want preview-1", srv.LastRef())
	}
	if base.Ref() != "" {
		t.Errorf("WithRef must not mutate the base client, got ref %q", base.Ref())
	}
}

func TestGetByUIDNotFound(t *testing.T) {
	srv := prismictest.NewServer(prismictest.Publication("a", "2021-03-15T12:00:00+0000", "A"))
	defer srv.Close()
	c := newClient(t, srv.Endpoint())

	_, err := c.GetByUID(context.Background(), "publication", "missing")
	if !errors.Is(err, prismic.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetByID(t *testing.T) {
	srv := prismictest.NewServer(prismictest.Publication("a", "2021-03-15T12:00:00+0000", "A"))
	defer srv.Close()
	c := newClient(t, srv.Endpoint())

	doc, err := c.GetByID(context.Background(), "id-a")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if doc.UID != "a" {
		t.Errorf("UID = %q, want a", doc.UID)
	}
}

func TestFetchPageRejectsForeignCursor(t *testing.T) {
	srv := prismictest.NewServer()
	defer srv.Close()
	c := newClient(t, srv.Endpoint())

	for _, cursor := range []string{
		"https://evil.example.com/api/v2/documents/search?page=2",
		"javascript:alert(1)",
		srv.URL + "/admin",
		"not a url",
	} {
		if _, err := c.FetchPage(context.Background(), cursor); !errors.Is(err, prismic.ErrForeignCursor) {
			t.Errorf("FetchPage(%q) err = %v, want ErrForeignCursor", cursor, err)
		}
	}
}

func TestQueryAPIError(t *testing.T) {
	srv := prismictest.NewServer()
	defer srv.Close()
	srv.SetFail(true)
	c := newClient(t, srv.Endpoint())

	_, err := c.Query(context.Background(), nil, prismic.QueryOptions{})
	var apiErr *prismic.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode)
	}
}

func TestQueryDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/search") {
			_, _ = w.Write([]byte(`{"results": "nope"}`))
			return
		}
		_, _ = w.Write([]byte(`{"refs":[{"ref":"m","isMasterRef":true}]}`))
	}))
	defer srv.Close()
	c := newClient(t, srv.URL+"/api/v2")

	_, err := c.Query(context.Background(), nil, prismic.QueryOptions{})
	var decErr *prismic.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("err = %v, want *DecodeError", err)
	}
}

func TestAccessTokenIsSentAndRedacted(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("access_token")
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer srv.Close()
	c := newClient(t, srv.URL+"/api/v2", prismic.WithAccessToken("s3cret"))

	_, err := c.WithRef("r").Query(context.Background(), nil, prismic.QueryOptions{})
	if err == nil {
		t.Fatal("expected an error")
	}
	if gotToken != "s3cret" {
		t.Errorf("access_token = %q, want s3cret", gotToken)
	}
	if strings.Contains(err.Error(), "s3cret") {
		t.Errorf("error leaks the access token: %v", err)
	}
}

func TestDocumentPublishedAt(t *testing.T) {
	doc := prismictest.Publication("a", "2021-03-15T12:00:00+0000", "A")
	at, err := doc.PublishedAt()
	if err != nil {
		t.Fatalf("PublishedAt failed: %v", err)
	}
	if at == nil || at.Day() != 15 || at.Month() != 3 || at.Year() != 2021 {
		t.Fatalf("PublishedAt = %v", at)
	}

	draft := prismictest.Publication("b", "", "B")
	at, err = draft.PublishedAt()
	if err != nil || at != nil {
		t.Fatalf("null date: got %v, %v", at, err)
	}

	bad := "yesterday"
	draft.FirstPublicationDate = &bad
	if _, err := draft.PublishedAt(); err == nil {
		t.Fatal("expected a decode error for a malformed date")
	}
}
