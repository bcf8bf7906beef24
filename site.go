// Package blog serves the HiDental blog: a list page and a details page whose
// articles come from a Strapi CMS, plus reader comments and newsletter
// sign-ups kept in SQLite.
//
// Templates are supplied by the caller through ViewFuncs; package views
// provides the stock set.
package blog

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/hidental/blog/analytics"
	"github.com/hidental/blog/blocks"
	"github.com/hidental/blog/strapi"
)

// ViewFuncs holds the templ components the handlers render.
type ViewFuncs struct {
	Blog           func(page BlogPage, meta PageMeta) templ.Component
	Details        func(page DetailsPage, meta PageMeta) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(page AdminPage) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App wires the CMS client, article cache, comment store, handlers and
// middleware together.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *ArticleCache
	Views  ViewFuncs

	source         ArticleSource
	httpClient     *http.Client
	renderer       blocks.Renderer
	loginLimiter   *RateLimiter
	commentLimiter *RateLimiter
	analyticsStore *analytics.Store
	stopCleanup    func()
	customRoutes   []func(*App)
	staticDir      string
}

// New creates an App with the given configuration and views.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
		renderer: blocks.Renderer{
			MissingMedia: cfg.MissingMedia,
			RichText:     cfg.RichText,
			BaseURL:      cfg.CMS.BaseURL,
		},
	}
	a.Echo.HideBanner = true
	a.Echo.Logger.SetLevel(log.INFO)

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init prepares the store, cache, middleware and routes without listening.
// Start calls it; tests call it directly and drive a.Echo with httptest.
func (a *App) Init() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("blog: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("blog: SessionSecret is required")
	}

	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("blog: init store: %w", err)
		}
		a.Store = store
	}

	if a.source == nil {
		opts := []strapi.ClientOption{strapi.WithLogger(a.Echo.Logger)}
		if a.httpClient != nil {
			opts = append(opts, strapi.WithHTTPClient(a.httpClient))
		}
		a.source = strapi.NewClient(a.Config.CMS, opts...)
	}
	ttl := a.Config.ArticleCacheTTL
	if ttl < 0 {
		ttl = 0
	}
	a.Cache = NewArticleCache(a.source, ttl, a.Echo.Logger)

	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.commentLimiter = NewRateLimiter(5, 10*time.Minute)

	if a.Config.AnalyticsEnabled {
		analyticsStore, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("blog: init analytics: %w", err)
		}
		a.analyticsStore = analyticsStore
		a.stopCleanup = analyticsStore.StartCleanupScheduler(365, 24*time.Hour, a.Echo.Logger.Errorf)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Echo.Logger.Infof("serving %s on %s (cms %s)", a.Config.Name, a.Config.Addr, a.Config.CMS.BaseURL)
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/site.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.staticDir)
	e.Static("/assets", a.staticDir+"/assets")
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", handleRootRedirect)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog-details/", a.handleDetails)
	e.POST("/blog-details/comments/", a.handleCommentSubmit)
	e.POST("/newsletter/", a.handleSubscribe)

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.POST("/admin/comments/:id/approve/", a.handleAdminApprove)
	e.DELETE("/admin/comments/:id/", a.handleAdminDeleteComment)
	e.POST("/admin/comments/:id/delete/", a.handleAdminDeleteComment)
	e.POST("/admin/cache/flush/", a.handleAdminFlush)
}

// Shutdown stops the server, letting in-flight requests finish until ctx ends.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	for _, l := range []*RateLimiter{a.loginLimiter, a.commentLimiter} {
		if l != nil {
			l.Stop()
		}
	}
	if a.stopCleanup != nil {
		a.stopCleanup()
	}
	if a.analyticsStore != nil {
		a.analyticsStore.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
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

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("blog: required environment variable %s is not set", key)
	}
	return v
}
