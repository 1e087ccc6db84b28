package spacetraveling

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/eringen/spacetraveling/pagecache"
)

// SiteConfig holds all configuration for a spacetraveling site.
type SiteConfig struct {
	Name        string // Site name (default "spacetraveling")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags

	Addr string // Listen address (default ":3000")

	PrismicEndpoint    string        // Required: repository API root, e.g. https://repo.cdn.prismic.io/api/v2
	PrismicAccessToken string        // Token for private repositories
	HTTPTimeout        time.Duration // Outbound CMS timeout (default 10s)

	Locale   string // BCP 47 locale for dates (default "pt-BR")
	TimeZone string // IANA zone for dates (default "UTC")

	PageSize       int // Posts per listing page (default 4)
	FeedSize       int // Posts in feed.xml (default 10)
	PrerenderCount int // Posts generated ahead of traffic (default 3)

	RevalidateInterval time.Duration // Page regeneration interval (default 3h)
	CacheBackend       string        // memory, sqlite or redis (default memory)
	CachePath          string        // SQLite path (default "data/pages.db")
	RedisAddr          string        // host:port or redis:// URL

	SessionSecret string // Required: preview session signing secret
	CookieSecure  bool   // Set true for HTTPS
	WebhookSecret string // Enables POST /api/revalidate when set
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "spacetraveling"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = 10 * time.Second
	}
	if c.Locale == "" {
		c.Locale = "pt-BR"
	}
	if c.TimeZone == "" {
		c.TimeZone = "UTC"
	}
	if c.PageSize == 0 {
		c.PageSize = 4
	}
	if c.FeedSize == 0 {
		c.FeedSize = 10
	}
	if c.PrerenderCount == 0 {
		c.PrerenderCount = 3
	}
	if c.RevalidateInterval == 0 {
		c.RevalidateInterval = 3 * time.Hour
	}
	if c.CacheBackend == "" {
		c.CacheBackend = pagecache.BackendMemory
	}
	if c.CachePath == "" {
		c.CachePath = "data/pages.db"
	}
}

func (c *SiteConfig) validate() error {
	if c.PrismicEndpoint == "" {
		return errors.New("PrismicEndpoint is required")
	}
	if c.SessionSecret == "" {
		return errors.New("SessionSecret is required")
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("PageSize must be between 1 and 100, got %d", c.PageSize)
	}
	if c.FeedSize < 1 || c.FeedSize > 100 {
		return fmt.Errorf("FeedSize must be between 1 and 100, got %d", c.FeedSize)
	}
	if c.RevalidateInterval < 0 {
		return fmt.Errorf("RevalidateInterval must be positive, got %s", c.RevalidateInterval)
	}
	if u, err := url.Parse(c.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("URL %q must be absolute", c.URL)
	}
	return nil
}

func (c *SiteConfig) cacheConfig() pagecache.Config {
	return pagecache.Config{
		Backend:   c.CacheBackend,
		Path:      c.CachePath,
		RedisAddr: c.RedisAddr,
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithPageCache replaces the cache built from CacheBackend.
func WithPageCache(c pagecache.Cache) Option {
	return func(a *App) {
		a.Pages = c
	}
}

// WithHTTPClient sets the client used for CMS and banner requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *App) {
		a.httpClient = hc
	}
}

// WithViews overrides the built-in templates. Nil fields keep the default.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
