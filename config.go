package blog

import (
	"net/http"
	"time"

	"github.com/hidental/blog/blocks"
	"github.com/hidental/blog/strapi"
)

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string // Site name (default "HiDental")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path for comments and subscribers (default "data/site.db")

	AdminPassword string // Required: moderation login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	AnalyticsEnabled      bool   // Count article reads
	AnalyticsDatabasePath string // default "data/analytics.db"

	CMS             strapi.Config
	ArticleCacheTTL time.Duration             // Article cache TTL (default 60s, negative disables caching)
	MissingMedia    blocks.MissingMediaPolicy // What to do with media blocks that lost their file
	RichText        blocks.RichTextFormat     // How rich-text bodies are stored (default HTML)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "HiDental"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/site.db"
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.ArticleCacheTTL == 0 {
		c.ArticleCacheTTL = 60 * time.Second
	}
	c.CMS = strapi.NewConfig(c.CMS.BaseURL, c.CMS.APIToken)
}

// WithDefaults returns a copy of c with unset fields defaulted, as New sees it.
func (c SiteConfig) WithDefaults() SiteConfig {
	c.setDefaults()
	return c
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
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

// WithArticleSource replaces the Strapi client, e.g. with a fixture in tests.
func WithArticleSource(src ArticleSource) Option {
	return func(a *App) {
		a.source = src
	}
}

// WithHTTPClient sets the HTTP client used to reach the CMS.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *App) {
		a.httpClient = hc
	}
}

// WithStore injects an already opened Store instead of opening DatabasePath.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}
