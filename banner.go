package spacetraveling

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	"github.com/eringen/spacetraveling/blog"
	"github.com/eringen/spacetraveling/pagecache"
)

const (
	maxBannerWidth = 1440
	jpegQuality    = 80
	maxBannerSize  = 20 << 20 // 20MB
	bannerTTL      = 24 * time.Hour
)

// processBanner decodes an image from src, resizes it down to
// maxBannerWidth if wider, and encodes it as JPEG.
func processBanner(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxBannerWidth {
		newH := h * maxBannerWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxBannerWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// handleBanner serves a post's banner image, resized and re-encoded, from
// the page cache when possible.
func (a *App) handleBanner(c echo.Context) error {
	ctx := c.Request().Context()
	uid := c.Param("slug")
	key := "/banner/" + uid

	if entry, err := a.Pages.Get(ctx, key); err == nil {
		c.Response().Header().Set("X-Cache", "HIT")
		return c.Blob(http.StatusOK, entry.ContentType, entry.Body)
	}

	banner, err := a.Posts.Banner(ctx, uid)
	if errors.Is(err, blog.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if err != nil {
		return err
	}
	data, err := a.fetchBanner(ctx, banner.URL)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "banner unavailable").SetInternal(err)
	}

	entry := pagecache.Entry{Body: data, ContentType: "image/jpeg", GeneratedAt: time.Now().UTC()}
	if err := a.Pages.Set(ctx, key, entry, bannerTTL); err != nil {
		c.Logger().Warnf("page cache set %s: %v", key, err)
	}
	c.Response().Header().Set("X-Cache", "MISS")
	return c.Blob(http.StatusOK, entry.ContentType, data)
}

func (a *App) fetchBanner(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("banner url %q is not absolute http(s)", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	res, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch banner: status %d", res.StatusCode)
	}
	return processBanner(io.LimitReader(res.Body, maxBannerSize))
}
