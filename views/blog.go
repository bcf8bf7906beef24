package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/hidental/blog"
)

// Blog renders the article list.
func Blog(cfg blog.SiteConfig) func(blog.BlogPage, blog.PageMeta) templ.Component {
	return func(data blog.BlogPage, meta blog.PageMeta) templ.Component {
		return component(layout(cfg, meta, blog.WebsiteJsonLD(cfg), func(ctx context.Context, p *page) error {
			breadcrumb(p, "Our Blog")
			p.raw(`<section class="container">`)
			if data.Query != "" || data.Category != "" {
				p.raw(`<p class="blog-filter">Showing results`)
				if data.Query != "" {
					p.raw(` for <strong>`)
					p.text(data.Query)
					p.raw(`</strong>`)
				}
				if data.Category != "" {
					p.raw(` in <strong>`)
					p.text(data.Category)
					p.raw(`</strong>`)
				}
				p.raw(` &middot; <a href="/blog/">Clear</a></p>`)
			}
			if len(data.Cards) == 0 {
				p.raw(`<p class="blog-empty">No articles found.</p></section>`)
				return nil
			}
			p.raw(`<ul class="blog-grid">`)
			for _, c := range data.Cards {
				card(p, c)
			}
			p.raw(`</ul></section>`)
			return nil
		}))
	}
}

func card(p *page, c blog.PostCard) {
	p.raw(`<li class="blog-card"><a class="blog-card-cover"`)
	p.href("href", c.Link)
	p.raw(`>`)
	p.img(c.Cover.URL, c.Cover.Alt, c.Cover.Width, c.Cover.Height, "")
	p.raw(`</a><div class="blog-card-body"><ul class="post-meta"><li class="category">`)
	p.text(c.Category)
	p.raw(`</li><li class="blog-card-date">`)
	p.text(c.Date)
	p.raw(`</li></ul><h3><a`)
	p.href("href", c.Link)
	p.raw(`>`)
	p.text(c.Title)
	p.raw(`</a></h3><p>`)
	p.text(c.Description)
	p.raw(`</p></div></li>`)
}
