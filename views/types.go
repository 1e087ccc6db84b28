package views

// SiteConfig holds site-wide settings populated from environment variables.
// Every handler passes this to templates so nothing is hardcoded.
type SiteConfig struct {
	Name        string // SITE_NAME  (default "spacetraveling")
	URL         string // SITE_URL   (default "http://localhost:3000")
	Description string // SITE_DESCRIPTION
	Locale      string // LOCALE     (default "pt-BR")
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head>
// template, plus the preview flag for the exit-preview banner.
type PageMeta struct {
	Site        SiteConfig
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image, absolute
	JSONLD      string
	Preview     bool
}
