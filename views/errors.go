package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/hidental/blog"
)

func NotFound(cfg blog.SiteConfig) func() templ.Component {
	return func() templ.Component {
		meta := blog.PageMeta{Title: "Not found | " + cfg.Name}
		return component(layout(cfg, meta, "", func(ctx context.Context, p *page) error {
			breadcrumb(p, "Page not found")
			p.raw(`<section class="container"><p>The page you are looking for does not exist. <a href="/blog/">Back to the blog</a>.</p></section>`)
			return nil
		}))
	}
}

func ServerError(cfg blog.SiteConfig) func() templ.Component {
	return func() templ.Component {
		meta := blog.PageMeta{Title: "Error | " + cfg.Name}
		return component(layout(cfg, meta, "", func(ctx context.Context, p *page) error {
			breadcrumb(p, "Something went wrong")
			p.raw(`<section class="container"><p>We could not load this page. Please try again shortly.</p></section>`)
			return nil
		}))
	}
}
