package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eringen/spacetraveling"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	envFile string
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "spacetraveling",
	Short: "spacetraveling - a Prismic blog front-end built with Go, Echo, and templ",
	Long: `spacetraveling serves a blog whose posts live in a Prismic repository.
Pages are rendered on the server and regenerated on an interval; settings come
from flags, environment variables, or a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initializeConfig(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the spacetraveling version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "spacetraveling %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	f := rootCmd.PersistentFlags()
	f.String("prismic-api-endpoint", "", "Prismic repository API root (required)")
	f.String("prismic-access-token", "", "access token for private repositories")
	f.String("site-name", "", "site name")
	f.String("site-url", "", "canonical site URL")
	f.String("site-description", "", "site description for feeds and meta tags")
	f.String("addr", "", "listen address")
	f.String("locale", "", "BCP 47 locale for dates")
	f.String("timezone", "", "IANA time zone for dates")
	f.Int("page-size", 0, "posts per listing page")
	f.Int("feed-size", 0, "posts in feed.xml")
	f.Int("prerender-count", 0, "posts generated ahead of traffic")
	f.Duration("revalidate-interval", 0, "page regeneration interval")
	f.Duration("http-timeout", 0, "CMS request timeout")
	f.String("cache-backend", "", "page cache backend: memory, sqlite or redis")
	f.String("cache-path", "", "SQLite page cache path")
	f.String("redis-addr", "", "Redis address or redis:// URL")
	f.String("session-secret", "", "preview session signing secret (required)")
	f.Bool("cookie-secure", false, "mark session cookies Secure")
	f.String("webhook-secret", "", "shared secret enabling POST /api/revalidate")
	f.String("log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd, prerenderCmd, versionCmd)
}

// initializeConfig loads the dotenv file and binds every flag to the
// environment variable of the same name, upper-cased with underscores.
func initializeConfig(cmd *cobra.Command) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	return nil
}

func siteConfig() spacetraveling.SiteConfig {
	return spacetraveling.SiteConfig{
		Name:               v.GetString("site-name"),
		URL:                v.GetString("site-url"),
		Description:        v.GetString("site-description"),
		Addr:               v.GetString("addr"),
		PrismicEndpoint:    v.GetString("prismic-api-endpoint"),
		PrismicAccessToken: v.GetString("prismic-access-token"),
		HTTPTimeout:        v.GetDuration("http-timeout"),
		Locale:             v.GetString("locale"),
		TimeZone:           v.GetString("timezone"),
		PageSize:           v.GetInt("page-size"),
		FeedSize:           v.GetInt("feed-size"),
		PrerenderCount:     v.GetInt("prerender-count"),
		RevalidateInterval: v.GetDuration("revalidate-interval"),
		CacheBackend:       v.GetString("cache-backend"),
		CachePath:          v.GetString("cache-path"),
		RedisAddr:          v.GetString("redis-addr"),
		SessionSecret:      v.GetString("session-secret"),
		CookieSecure:       v.GetBool("cookie-secure"),
		WebhookSecret:      v.GetString("webhook-secret"),
	}
}

// newApp builds the App from the bound configuration.
func newApp() (*spacetraveling.App, error) {
	app, err := spacetraveling.New(siteConfig())
	if err != nil {
		return nil, err
	}
	app.Echo.Logger.SetLevel(logLevel(v.GetString("log-level")))
	return app, nil
}

func logLevel(name string) log.Lvl {
	switch strings.ToLower(name) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
