package spacetraveling

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/pagecache"
	"github.com/eringen/spacetraveling/views"
)

// pageBuilder produces a page component from live CMS content.
type pageBuilder func(ctx context.Context) (templ.Component, error)

// servePage answers from the page cache when it can and otherwise builds the
// page, caches it for RevalidateInterval and serves it. Preview requests
// bypass the cache in both directions.
func (a *App) servePage(c echo.Context, build pageBuilder) error {
	ctx := c.Request().Context()
	key := c.Request().URL.EscapedPath()
	h := c.Response().Header()

	if previewRef(c) != "" {
		body, err := a.buildPage(ctx, build)
		if err != nil {
			return err
		}
		h.Set("Cache-Control", "no-store")
		h.Set("X-Cache", "BYPASS")
		return c.HTMLBlob(http.StatusOK, body)
	}

	entry, err := a.Pages.Get(ctx, key)
	if err == nil {
		h.Set("X-Cache", "HIT")
		return c.Blob(http.StatusOK, entry.ContentType, entry.Body)
	}
	if !errors.Is(err, pagecache.ErrMiss) {
		c.Logger().Warnf("page cache get %s: %v", key, err)
	}

	body, err := a.buildPage(ctx, build)
	if err != nil {
		return err
	}
	if err := a.storePage(ctx, key, body); err != nil {
		c.Logger().Warnf("page cache set %s: %v", key, err)
	}
	h.Set("X-Cache", "MISS")
	return c.HTMLBlob(http.StatusOK, body)
}

func (a *App) buildPage(ctx context.Context, build pageBuilder) ([]byte, error) {
	cmp, err := build(ctx)
	if err != nil {
		return nil, err
	}
	return renderBytes(ctx, cmp)
}

func (a *App) storePage(ctx context.Context, key string, body []byte) error {
	return a.Pages.Set(ctx, key, pagecache.Entry{
		Body:        body,
		ContentType: echo.MIMETextHTMLCharsetUTF8,
		GeneratedAt: time.Now().UTC(),
	}, a.Config.RevalidateInterval)
}

func (a *App) homePage(ref string) pageBuilder {
	return func(ctx context.Context) (templ.Component, error) {
		page, err := a.Posts.ListPosts(ctx, ref, a.Config.PageSize)
		if err != nil {
			return nil, err
		}
		site := a.siteConfig()
		meta := views.PageMeta{
			Site:    site,
			URL:     views.BuildURL(site.URL),
			OGType:  "website",
			JSONLD:  views.WebsiteJsonLD(site),
			Preview: ref != "",
		}
		return a.Views.Home(meta, a.Views.PostItems(page.Results), a.Views.LoadMore(page.NextPage)), nil
	}
}

func (a *App) postPage(uid, ref string) pageBuilder {
	return func(ctx context.Context) (templ.Component, error) {
		page, err := a.Posts.Post(ctx, uid, ref)
		if err != nil {
			return nil, err
		}
		site := a.siteConfig()
		meta := views.PageMeta{
			Site:        site,
			Title:       page.Post.Title,
			Description: page.Post.Subtitle,
			URL:         views.BuildURL(site.URL, "post", page.Post.UID),
			OGType:      "article",
			JSONLD:      views.BlogPostingJsonLD(site, page.Post),
			Preview:     ref != "",
		}
		if page.Post.Banner != nil {
			meta.Image = views.BuildURL(site.URL, "banner", page.Post.UID)
		}
		return a.Views.Post(meta, page), nil
	}
}

// pageMeta is the metadata for pages outside the listing and post routes.
func (a *App) pageMeta(c echo.Context) views.PageMeta {
	return views.PageMeta{
		Site:    a.siteConfig(),
		Preview: previewRef(c) != "",
	}
}
