package spacetraveling

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	sessionName   = "preview_session"
	previewRefKey = "ref"
)

// previewRef returns the preview ref stored in the session, or "" when the
// visitor is not previewing.
func previewRef(c echo.Context) string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	ref, _ := sess.Values[previewRefKey].(string)
	return ref
}

func setPreviewRef(c echo.Context, ref string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[previewRefKey] = ref
	return sess.Save(c.Request(), c.Response())
}

func clearPreview(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// handlePreview enters preview mode. The CMS calls it with the preview ref
// in token and the edited document in documentId.
func (a *App) handlePreview(c echo.Context) error {
	token := strings.TrimSpace(c.QueryParam("token"))
	if token == "" || !validPreviewToken(token) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid preview token")
	}
	target, err := a.Posts.ResolvePreview(c.Request().Context(), token, c.QueryParam("documentId"))
	if err != nil {
		return err
	}
	if err := setPreviewRef(c, token); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, target)
}

// handleExitPreview leaves preview mode and returns to the home page.
func handleExitPreview(c echo.Context) error {
	if err := clearPreview(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/")
}

// validPreviewToken accepts opaque refs and preview URLs, rejecting
// anything with control characters or excessive length.
func validPreviewToken(token string) bool {
	if len(token) > 2048 {
		return false
	}
	for _, r := range token {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	if strings.Contains(token, "://") {
		u, err := url.Parse(token)
		return err == nil && (u.Scheme == "https" || u.Scheme == "http")
	}
	return true
}
