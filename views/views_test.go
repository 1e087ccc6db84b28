package views

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/blog"
	"github.com/eringen/spacetraveling/richtext"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return buf.String()
}

var testMeta = PageMeta{
	Site: SiteConfig{Name: "spacetraveling", URL: "https://blog.example.com", Locale: "pt-BR"},
	URL:  "https://blog.example.com/",
}

func testPost(uid string) blog.Post {
	at := time.Date(2021, 3, 15, 12, 0, 0, 0, time.UTC)
	return blog.Post{
		UID:         uid,
		PublishedAt: &at,
		Date:        "15 mar 2021",
		Title:       "Como utilizar <Hooks>",
		Subtitle:    "Pensando em sincronização",
		Author:      "Joseph Oliveira",
	}
}

func TestHomeRendersPostsAndLoadMore(t *testing.T) {
	page := blog.PostPagination{
		NextPage: "https://repo.cdn.prismic.io/api/v2/documents/search?page=2&pageSize=4",
		Results:  []blog.Post{testPost("a"), testPost("b")},
	}
	out := render(t, Home(testMeta, PostItems(page.Results), LoadMoreButton(page.NextPage)))

	for _, want := range []string{
		`data-uid="a"`,
		`data-uid="b"`,
		`href="/post/a"`,
		"Como utilizar &lt;Hooks&gt;",
		`<time datetime="2021-03-15T12:00:00Z">15 mar 2021</time>`,
		"Joseph Oliveira",
		`data-next-page="https://repo.cdn.prismic.io/api/v2/documents/search?page=2&amp;pageSize=4"`,
		"Carregar mais posts",
		`<html lang="pt-BR">`,
		`<div id="loading" class="loading" hidden`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "Sair do modo Preview") {
		t.Error("preview banner should only render in preview mode")
	}
}

func TestHomeWithoutNextPageHasNoButton(t *testing.T) {
	out := render(t, Home(testMeta, PostItems([]blog.Post{testPost("a")}), LoadMoreButton("")))
	if strings.Contains(out, "load-more") {
		t.Error("load more control rendered without a next page")
	}
}

func TestPostItemsWithoutDate(t *testing.T) {
	p := testPost("draft")
	p.PublishedAt = nil
	p.Date = ""
	out := render(t, PostItems([]blog.Post{p}))
	if strings.Contains(out, "<time") {
		t.Errorf("undated post should have no time element: %s", out)
	}
}

func TestPostPage(t *testing.T) {
	p := testPost("hooks")
	p.Banner = &blog.Banner{URL: "https://images.prismic.io/banner.png", Alt: "banner"}
	p.Content = []blog.ContentGroup{{
		Heading: "Introdução",
		Body:    []richtext.Block{{Type: richtext.TypeParagraph, Text: "Olá mundo"}},
	}}
	page := blog.PostPage{
		Post: p,
		Next: &blog.Neighbor{UID: "older", Title: "Older post"},
	}
	meta := testMeta
	meta.Preview = true
	out := render(t, Post(meta, page))

	for _, want := range []string{
		`<img class="banner" src="/banner/hooks" alt="banner">`,
		"<h1>Como utilizar &lt;Hooks&gt;</h1>",
		`<li class="reading-time">1 min</li>`,
		"<section><h2>Introdução</h2>",
		"<p>Olá mundo</p>",
		`<a class="next" href="/post/older"><span>Older post</span><small>Próximo post</small></a>`,
		`<span class="previous"></span>`,
		`<a href="/api/exit-preview">Sair do modo Preview</a>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestPostPageWithoutNeighbors(t *testing.T) {
	out := render(t, Post(testMeta, blog.PostPage{Post: testPost("solo")}))
	if strings.Contains(out, "navigation") {
		t.Error("navigation rendered without neighbors")
	}
}

func TestLayoutMetadata(t *testing.T) {
	meta := testMeta
	meta.Title = "Post"
	meta.Description = `"quoted"`
	meta.JSONLD = WebsiteJsonLD(meta.Site)
	out := render(t, Layout(meta, nil))
	for _, want := range []string{
		"<title>Post | spacetraveling</title>",
		`<meta name="description" content="&#34;quoted&#34;">`,
		`<link rel="canonical" href="https://blog.example.com/">`,
		`<meta property="og:type" content="website">`,
		`<script type="application/ld+json">{`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestErrorPages(t *testing.T) {
	if out := render(t, NotFound(testMeta)); !strings.Contains(out, "404") {
		t.Error("not found page missing 404")
	}
	if out := render(t, ServerError(testMeta)); !strings.Contains(out, "Algo deu errado") {
		t.Error("server error page missing message")
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		expected string
	}{
		{"https://example.com", nil, "https://example.com/"},
		{"https://example.com/", []string{"post", "a"}, "https://example.com/post/a"},
		{"https://example.com/blog", []string{"feed.xml"}, "https://example.com/blog/feed.xml"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.expected {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.expected)
		}
	}
}

func TestBlogPostingJsonLD(t *testing.T) {
	p := testPost("hooks")
	p.Banner = &blog.Banner{URL: "https://images.prismic.io/banner.png"}
	var data map[string]any
	if err := json.Unmarshal([]byte(BlogPostingJsonLD(testMeta.Site, p)), &data); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if data["url"] != "https://blog.example.com/post/hooks" {
		t.Errorf("url = %v", data["url"])
	}
	if data["datePublished"] != "2021-03-15T12:00:00Z" {
		t.Errorf("datePublished = %v", data["datePublished"])
	}
	if data["image"] != "https://blog.example.com/banner/hooks" {
		t.Errorf("image = %v", data["image"])
	}
	if _, ok := data["timeRequired"]; ok {
		t.Error("timeRequired should be omitted without content")
	}
}
