package spacetraveling

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/blog"
	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/views"
)

// maxSeen bounds the uids a load-more request may send back.
const maxSeen = 500

func (a *App) handleHome(c echo.Context) error {
	return a.servePage(c, a.homePage(previewRef(c)))
}

func (a *App) handlePost(c echo.Context) error {
	uid := c.Param("slug")
	err := a.servePage(c, a.postPage(uid, previewRef(c)))
	if errors.Is(err, blog.ErrNotFound) {
		c.Response().Header().Set("Cache-Control", "no-store")
		return c.Redirect(http.StatusFound, "/")
	}
	return err
}

// handleMorePosts serves the next listing page as an HTML fragment for the
// load-more script. Posts whose uid is listed in seen are left out, and the
// following cursor is returned in X-Next-Page.
func (a *App) handleMorePosts(c echo.Context) error {
	cursor := c.QueryParam("cursor")
	if cursor == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "cursor is required")
	}
	listing := blog.NewListing(blog.PostPagination{NextPage: cursor})
	listing.MarkSeen(splitSeen(c.QueryParam("seen"))...)

	added, err := listing.LoadMore(c.Request().Context(), a.Posts)
	if errors.Is(err, prismic.ErrForeignCursor) {
		return err
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "could not load more posts").SetInternal(err)
	}
	c.Response().Header().Set("X-Next-Page", listing.NextPage())
	return Render(c, a.Views.PostItems(added))
}

// handleAPIPosts returns one listing page as JSON: page 1 without a cursor,
// the cursor's page otherwise.
func (a *App) handleAPIPosts(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		page blog.PostPagination
		err  error
	)
	if cursor := c.QueryParam("cursor"); cursor != "" {
		page, err = a.Posts.NextPage(ctx, cursor)
	} else {
		page, err = a.Posts.ListPosts(ctx, previewRef(c), a.Config.PageSize)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Posts.AllPosts(c.Request().Context(), "", 100, 0)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	page, err := a.Posts.ListPosts(c.Request().Context(), "", a.Config.FeedSize)
	if err != nil {
		return err
	}
	return a.renderRSS(c, page.Results)
}

// handleRobots serves robots.txt from the static dir, or a permissive
// default pointing at the sitemap.
func (a *App) handleRobots(c echo.Context) error {
	path := filepath.Join(a.staticDir, "robots.txt")
	if _, err := os.Stat(path); err == nil {
		return c.File(path)
	}
	body := "User-agent: *\nAllow: /\n\nSitemap: " + views.BuildURL(a.Config.URL, "sitemap.xml") + "\n"
	return c.String(http.StatusOK, body)
}

func splitSeen(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) > maxSeen {
		parts = parts[:maxSeen]
	}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	he := classifyError(err)
	if he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.pageMeta(c)))
		return
	}
	if he.Code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		if isFragmentRequest(c) {
			_ = c.String(he.Code, http.StatusText(he.Code))
			return
		}
		_ = RenderStatus(c, he.Code, a.Views.ServerError(a.pageMeta(c)))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(he, c)
}

// classifyError maps CMS failures onto HTTP statuses: unreachable or
// malformed upstream content is a bad gateway, a cursor for another host a
// bad request.
func classifyError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	var (
		apiErr    *prismic.APIError
		decodeErr *prismic.DecodeError
	)
	switch {
	case errors.Is(err, prismic.ErrForeignCursor):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid cursor").SetInternal(err)
	case errors.Is(err, blog.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound).SetInternal(err)
	case errors.As(err, &apiErr), errors.As(err, &decodeErr):
		return echo.NewHTTPError(http.StatusBadGateway).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
}

// isFragmentRequest reports whether the caller expects a bare response
// rather than a full error page.
func isFragmentRequest(c echo.Context) bool {
	path := c.Request().URL.Path
	return path == "/posts" || strings.HasPrefix(path, "/api/")
}
