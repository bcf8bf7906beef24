// Package views holds the site's templ components.
package views

import "github.com/hidental/blog"

// Funcs returns the component set for cfg.
func Funcs(cfg blog.SiteConfig) blog.ViewFuncs {
	cfg = cfg.WithDefaults()
	return blog.ViewFuncs{
		Blog:           Blog(cfg),
		Details:        Details(cfg),
		AdminLogin:     AdminLogin(cfg),
		AdminDashboard: AdminDashboard(cfg),
		NotFound:       NotFound(cfg),
		ServerError:    ServerError(cfg),
	}
}
