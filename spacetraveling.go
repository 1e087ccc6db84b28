// Package spacetraveling is a server-rendered blog front-end for a Prismic
// repository, built with Go, Echo, and templ.
//
// Pages are generated from live CMS content and kept in a regeneration cache
// for RevalidateInterval. The home page lists posts a page at a time and
// loads more on demand; post pages link to their chronological neighbors.
package spacetraveling

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/blog"
	"github.com/eringen/spacetraveling/pagecache"
	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/views"
)

// ViewFuncs holds the templ components the App renders. Replace any of
// them with WithViews to restyle the site; nil fields fall back to the
// views package.
type ViewFuncs struct {
	Home        func(meta views.PageMeta, items, loadMore templ.Component) templ.Component
	PostItems   func(posts []blog.Post) templ.Component
	LoadMore    func(nextPage string) templ.Component
	Post        func(meta views.PageMeta, page blog.PostPage) templ.Component
	NotFound    func(meta views.PageMeta) templ.Component
	ServerError func(meta views.PageMeta) templ.Component
}

func (v *ViewFuncs) setDefaults() {
	if v.Home == nil {
		v.Home = views.Home
	}
	if v.PostItems == nil {
		v.PostItems = views.PostItems
	}
	if v.LoadMore == nil {
		v.LoadMore = views.LoadMoreButton
	}
	if v.Post == nil {
		v.Post = views.Post
	}
	if v.NotFound == nil {
		v.NotFound = views.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = views.ServerError
	}
}

// App is the central application. It wires together the CMS client, the
// page cache, handlers, middleware, and templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Posts  *blog.Service
	Pages  pagecache.Cache
	Views  ViewFuncs

	webhookLimiter *Limiter
	customRoutes   []func(*App)
	staticDir      string
	httpClient     *http.Client
}

// New validates cfg and builds a ready-to-serve App. Call Close when done.
func New(cfg SiteConfig, opts ...Option) (*App, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("spacetraveling: %w", err)
	}

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "public",
	}
	a.Echo.HideBanner = true
	for _, opt := range opts {
		opt(a)
	}
	a.Views.setDefaults()
	if a.httpClient == nil {
		a.httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("spacetraveling: load time zone: %w", err)
	}
	dates, err := blog.NewDateFormatter(cfg.Locale, loc)
	if err != nil {
		return nil, fmt.Errorf("spacetraveling: %w", err)
	}

	clientOpts := []prismic.Option{prismic.WithHTTPClient(a.httpClient)}
	if cfg.PrismicAccessToken != "" {
		clientOpts = append(clientOpts, prismic.WithAccessToken(cfg.PrismicAccessToken))
	}
	client, err := prismic.New(cfg.PrismicEndpoint, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("spacetraveling: %w", err)
	}
	a.Posts = blog.NewService(client, dates)

	if a.Pages == nil {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
		defer cancel()
		pages, err := pagecache.Open(ctx, cfg.cacheConfig())
		if err != nil {
			return nil, fmt.Errorf("spacetraveling: init page cache: %w", err)
		}
		a.Pages = pages
	}

	a.webhookLimiter = NewLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return a, nil
}

// Start serves HTTP on Config.Addr until Shutdown is called.
func (a *App) Start() error {
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Built-in assets (loadmore.js, logo.svg, site.css) are served under
	// /public/ ahead of the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	for _, name := range []string{"loadmore.js", "logo.svg", "site.css"} {
		e.GET("/public/"+name, echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	}
	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleHome)
	e.GET("/post/:slug", a.handlePost)
	e.GET("/posts", a.handleMorePosts)
	e.GET("/banner/:slug", a.handleBanner)

	e.GET("/api/posts", a.handleAPIPosts)
	e.GET("/api/preview", a.handlePreview)
	e.GET("/api/exit-preview", handleExitPreview)
	e.POST("/api/revalidate", a.handleRevalidate)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.webhookLimiter != nil {
		a.webhookLimiter.Stop()
	}
	if a.Pages != nil {
		return a.Pages.Close()
	}
	return nil
}

// siteConfig is the subset of Config the templates see.
func (a *App) siteConfig() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Locale:      a.Config.Locale,
	}
}
