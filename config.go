package folio

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Default article author and JSON-LD author
	Language    string `yaml:"language"`    // RSS <language> and <html lang> (default "en-us")
	Email       string `yaml:"email"`

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	ContentDir   string `yaml:"content_dir"`   // Markdown collections root (default "content")
	DatabasePath string `yaml:"database_path"` // SQLite path (default "data/folio.db")
	StaticDir    string `yaml:"static_dir"`    // User static assets (default "public")
	OutputDir    string `yaml:"output_dir"`    // Static export target (default "dist")

	// Production hides drafts from every page and feed.
	Production bool `yaml:"production"`

	SessionSecret string `yaml:"session_secret"` // Required to serve: cookie signing secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	ArticleCacheTTL time.Duration `yaml:"article_cache_ttl"` // default 5m
	LogLevel        string        `yaml:"log_level"`         // debug, info, warn, error (default "info")

	Search     SearchConfig     `yaml:"search"`
	Features   FeaturesConfig   `yaml:"features"`
	Social     SocialConfig     `yaml:"social"`
	Navigation NavigationConfig `yaml:"navigation"`
}

// SearchConfig tunes the fuzzy search and the search API.
type SearchConfig struct {
	Threshold      float64       `yaml:"threshold"`        // default 0.4
	MinQueryLength int           `yaml:"min_query_length"` // default 2
	PopularTags    []string      `yaml:"popular_tags"`     // default: most used tags
	RateLimit      int           `yaml:"rate_limit"`       // API requests per window per IP (default 60)
	RateWindow     time.Duration `yaml:"rate_window"`      // default 1m
}

// FeaturesConfig switches optional page features. Nil means enabled.
type FeaturesConfig struct {
	DarkMode        *bool `yaml:"dark_mode"`
	TableOfContents *bool `yaml:"table_of_contents"`
	ReadingTime     *bool `yaml:"reading_time"`
	Search          *bool `yaml:"search"`
}

type SocialConfig struct {
	Twitter  string `yaml:"twitter"`
	GitHub   string `yaml:"github"`
	LinkedIn string `yaml:"linkedin"`
}

type NavItem struct {
	Text string `yaml:"text"`
	Href string `yaml:"href"`
}

type NavigationConfig struct {
	Header []NavItem `yaml:"header"`
	Footer []NavItem `yaml:"footer"`
}

func enabled(b *bool) bool {
	return b == nil || *b
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Language == "" {
		c.Language = "en-us"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/folio.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.OutputDir == "" {
		c.OutputDir = "dist"
	}
	if c.ArticleCacheTTL == 0 {
		c.ArticleCacheTTL = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Search.Threshold == 0 {
		c.Search.Threshold = 0.4
	}
	if c.Search.MinQueryLength == 0 {
		c.Search.MinQueryLength = 2
	}
	if c.Search.RateLimit == 0 {
		c.Search.RateLimit = 60
	}
	if c.Search.RateWindow == 0 {
		c.Search.RateWindow = time.Minute
	}
	if len(c.Navigation.Header) == 0 {
		c.Navigation.Header = []NavItem{
			{Text: "Home", Href: "/"},
			{Text: "Blog", Href: "/blog/"},
			{Text: "Projects", Href: "/projects/"},
			{Text: "Search", Href: "/search/"},
		}
	}
}

// LoadConfig reads a YAML config file, applies FOLIO_* environment overrides,
// and fills defaults. A missing file is not an error.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("folio: read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("folio: parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) applyEnv() error {
	c.Addr = EnvOr("FOLIO_ADDR", c.Addr)
	c.URL = EnvOr("FOLIO_SITE_URL", c.URL)
	c.SessionSecret = EnvOr("FOLIO_SESSION_SECRET", c.SessionSecret)
	c.DatabasePath = EnvOr("FOLIO_DATABASE_PATH", c.DatabasePath)
	c.ContentDir = EnvOr("FOLIO_CONTENT_DIR", c.ContentDir)
	if v := os.Getenv("FOLIO_PRODUCTION"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("folio: FOLIO_PRODUCTION: %w", err)
		}
		c.Production = b
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir overrides the directory for user-owned static assets.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithViews replaces the default page components. Nil fields keep defaults.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
