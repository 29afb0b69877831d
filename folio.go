// Package folio is a blog and portfolio engine built with Go, Echo, and templ.
// It loads blog posts and projects from markdown files, keeps a SQLite
// catalog of them, and serves pages, fuzzy search, RSS, and a sitemap. The
// same routes can be exported as a static site.
//
// Pages are rendered by the components in ViewFuncs; the defaults live in
// the views package and any of them can be replaced with WithViews.
package folio

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/views"
)

// ViewFuncs holds the templ components the handlers render. Nil fields fall
// back to DefaultViews.
type ViewFuncs struct {
	Home          func(views.HomeData) templ.Component
	Blog          func(views.BlogData) templ.Component
	Post          func(views.PostData) templ.Component
	Projects      func(views.ProjectsData) templ.Component
	Project       func(views.ProjectData) templ.Component
	Tag           func(views.TagData) templ.Component
	Search        func(views.SearchData) templ.Component
	SearchResults func(views.SearchData) templ.Component
	NotFound      func(views.ErrorData) templ.Component
	ServerError   func(views.ErrorData) templ.Component
}

// DefaultViews returns the built-in page templates.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:          views.Home,
		Blog:          views.Blog,
		Post:          views.Post,
		Projects:      views.Projects,
		Project:       views.Project,
		Tag:           views.Tag,
		Search:        views.Search,
		SearchResults: views.SearchResults,
		NotFound:      views.NotFound,
		ServerError:   views.ServerError,
	}
}

func (v ViewFuncs) withDefaults() ViewFuncs {
	d := DefaultViews()
	if v.Home == nil {
		v.Home = d.Home
	}
	if v.Blog == nil {
		v.Blog = d.Blog
	}
	if v.Post == nil {
		v.Post = d.Post
	}
	if v.Projects == nil {
		v.Projects = d.Projects
	}
	if v.Project == nil {
		v.Project = d.Project
	}
	if v.Tag == nil {
		v.Tag = d.Tag
	}
	if v.Search == nil {
		v.Search = d.Search
	}
	if v.SearchResults == nil {
		v.SearchResults = d.SearchResults
	}
	if v.NotFound == nil {
		v.NotFound = d.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = d.ServerError
	}
	return v
}

// App is the central folio application. It wires together the content
// loader, store, cache, handlers, middleware, and templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *ArticleCache
	Views  ViewFuncs
	Logger *log.Logger

	searchLimiter *RateLimiter
	customRoutes  []func(*App)

	reloadMu sync.Mutex
	mu       sync.RWMutex
	version  int64 // unix time of the last content load, busts search-data caches
	ready    bool
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// New creates a folio App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  DefaultViews(),
	}

	for _, opt := range opts {
		opt(a)
	}
	a.Views = a.Views.withDefaults()

	if a.Logger == nil {
		a.Logger = log.New("folio")
		a.Logger.SetLevel(ParseLogLevel(a.Config.LogLevel))
	}
	a.Echo.HideBanner = true
	a.Echo.Logger = a.Logger

	return a
}

// ParseLogLevel maps a level name onto a gommon log level, defaulting to INFO.
func ParseLogLevel(s string) log.Lvl {
	switch s {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// Setup opens the store, loads content, and registers middleware and routes.
// It is called by Start and Build; tests call it directly and drive a.Echo.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if a.Config.SessionSecret == "" {
		if a.Config.Production {
			return errors.New("folio: SessionSecret is required in production")
		}
		a.Config.SessionSecret = randomSecret()
		a.Logger.Warn("session_secret not set; using a random secret, theme preferences reset on restart")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("folio: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewArticleCache(a.Store, a.Config.ArticleCacheTTL, !a.Config.Production, SearchOptions(a.Config.Search))

	if err := a.Reload(); err != nil {
		a.Store.Close()
		return err
	}

	a.searchLimiter = NewRateLimiter(a.Config.Search.RateLimit, a.Config.Search.RateWindow)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Reload reads the content directory again, replaces the catalog, and drops
// the cache. On error the previous catalog stays live.
func (a *App) Reload() error {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	coll, err := content.Load(a.Config.ContentDir, content.LoadOptions{DefaultAuthor: a.Config.Author})
	if err != nil {
		return fmt.Errorf("folio: load content: %w", err)
	}
	if err := a.Store.Sync(coll); err != nil {
		return fmt.Errorf("folio: sync catalog: %w", err)
	}
	a.Cache.Invalidate()

	a.mu.Lock()
	a.version = time.Now().Unix()
	a.mu.Unlock()

	a.Logger.Infof("loaded %d articles, %d projects from %s", len(coll.Articles), len(coll.Projects), a.Config.ContentDir)
	return nil
}

// Version identifies the loaded content; it changes on every reload.
func (a *App) Version() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.version
}

// Start sets the app up and serves HTTP until the server stops.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve runs Start with a content watcher until ctx is done, then shuts the
// server down gracefully.
func (a *App) Serve(ctx context.Context) error {
	if err := a.Setup(); err != nil {
		return err
	}
	w, err := a.Watch(ctx)
	if err != nil {
		a.Logger.Warnf("content watcher disabled: %v", err)
	} else {
		defer w.Close()
	}

	errc := make(chan error, 1)
	go func() {
		errc <- a.Start()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.Echo.Shutdown(shutdownCtx)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.searchLimiter != nil {
		a.searchLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Engine scripts are served under /public/ ahead of the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/search.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/theme.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.Config.StaticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/rss.xml", a.handleFeed)
	e.GET("/data/search-data.json", a.handleSearchData)

	e.GET("/", a.handleHome)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/projects/", a.handleProjects)
	e.GET("/projects/:slug/", a.handleProject)
	e.GET("/tags/:tag/", a.handleTag)
	e.GET("/categories/:category/", a.handleCategory)
	e.GET("/search/", a.handleSearch)
	e.POST("/theme/", a.handleTheme)

	api := e.Group("/api")
	api.GET("/search.json", a.handleSearchData)
	api.GET("/search/", a.handleSearchAPI, a.searchLimiter.Middleware)
}
