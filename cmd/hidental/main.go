package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hidental/blog"
	"github.com/hidental/blog/blocks"
	"github.com/hidental/blog/strapi"
	"github.com/hidental/blog/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe()
	case "fetch":
		slug := ""
		if len(os.Args) > 2 {
			slug = os.Args[2]
		}
		err = runFetch(os.Stdout, slug)
	case "list":
		err = runList(os.Stdout)
	case "version":
		fmt.Printf("hidental %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`hidental - the HiDental blog, served from a Strapi CMS

Usage:
  hidental [command] [arguments]

Commands:
  serve          Run the web server (default)
  fetch [slug]   Print one article as JSON; the newest when slug is omitted
  list           Print every article as JSON
  version        Print the version
  help           Show this help message

Environment:
  NEXT_PUBLIC_STRAPI_URL, STRAPI_URL   CMS base URL (default https://cms.hidental.com)
  STRAPI_API_TOKEN                     CMS bearer token
  SITE_NAME, SITE_URL, SITE_DESCRIPTION, ADDR, DATABASE_PATH
  ADMIN_PASSWORD, ADMIN_SESSION_SECRET, COOKIE_SECURE
  ANALYTICS_ENABLED, ANALYTICS_DATABASE_PATH
  ARTICLE_CACHE_TTL                    e.g. 60s; negative disables the cache
  MISSING_MEDIA                        skip (default) or diagnose
  RICH_TEXT_FORMAT                     html (default), markdown or auto`)
}

// configFromEnv reads the site configuration once at startup.
func configFromEnv() (blog.SiteConfig, error) {
	cfg := blog.SiteConfig{
		Name:         blog.EnvOr("SITE_NAME", "HiDental"),
		URL:          blog.EnvOr("SITE_URL", "http://localhost:3000"),
		Description:  blog.EnvOr("SITE_DESCRIPTION", "News and insights from HiDental"),
		Addr:         blog.EnvOr("ADDR", ":3000"),
		DatabasePath: blog.EnvOr("DATABASE_PATH", "data/site.db"),

		AnalyticsDatabasePath: blog.EnvOr("ANALYTICS_DATABASE_PATH", "data/analytics.db"),

		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("ADMIN_SESSION_SECRET"),
		CMS:           strapi.ConfigFromEnv(),
		MissingMedia:  blocks.ParseMissingMediaPolicy(os.Getenv("MISSING_MEDIA")),
		RichText:      blocks.ParseRichTextFormat(os.Getenv("RICH_TEXT_FORMAT")),
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		cfg.CookieSecure = secure
	}
	analyticsOn, err := strconv.ParseBool(blog.EnvOr("ANALYTICS_ENABLED", "true"))
	if err != nil {
		return cfg, fmt.Errorf("ANALYTICS_ENABLED: %w", err)
	}
	cfg.AnalyticsEnabled = analyticsOn
	if v := os.Getenv("ARTICLE_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("ARTICLE_CACHE_TTL: %w", err)
		}
		if ttl == 0 {
			ttl = -1
		}
		cfg.ArticleCacheTTL = ttl
	}
	return cfg, nil
}

func runServe() error {
	cfg, err := configFromEnv()
	if err != nil {
		return err
	}
	app := blog.New(cfg, views.Funcs(cfg))
	defer app.Close()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-shutdownCtx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		app.Echo.Logger.Errorf("graceful shutdown failed: %v", err)
	}
	return <-errc
}
