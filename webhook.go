package spacetraveling

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const maxWebhookBody = 1 << 20

// webhookPayload is the part of the CMS publish webhook we read.
type webhookPayload struct {
	Type      string   `json:"type"`
	Secret    string   `json:"secret"`
	Documents []string `json:"documents"`
}

// handleRevalidate purges the page cache when the CMS reports a publish.
// The shared secret comes from the payload or the X-Webhook-Secret header.
// Repeated failures from one IP are throttled.
func (a *App) handleRevalidate(c echo.Context) error {
	if a.Config.WebhookSecret == "" {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	ip := c.RealIP()
	if !a.webhookLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many attempts. Try again later.")
	}

	var payload webhookPayload
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return err
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
	}
	secret := payload.Secret
	if h := c.Request().Header.Get("X-Webhook-Secret"); h != "" {
		secret = h
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(a.Config.WebhookSecret)) != 1 {
		a.webhookLimiter.Record(ip)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid secret")
	}

	if err := a.Pages.Purge(c.Request().Context()); err != nil {
		return err
	}
	c.Logger().Infof("page cache purged by webhook type=%q documents=%d", payload.Type, len(payload.Documents))
	return c.JSON(http.StatusOK, map[string]any{
		"revalidated": true,
		"now":         time.Now().UTC().Format(time.RFC3339),
	})
}
