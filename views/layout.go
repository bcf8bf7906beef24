package views

import (
	"context"
	"strconv"
	"time"

	"github.com/hidental/blog"
)

// layout wraps body in the document shell: head metadata, header and footer.
func layout(cfg blog.SiteConfig, meta blog.PageMeta, jsonLD string, body func(ctx context.Context, p *page) error) func(ctx context.Context, p *page) error {
	return func(ctx context.Context, p *page) error {
		title := meta.Title
		if title == "" {
			title = cfg.Name
		}
		desc := meta.Description
		if desc == "" {
			desc = cfg.Description
		}

		p.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<title>`)
		p.text(title)
		p.raw(`</title>`)
		if desc != "" {
			p.raw(`<meta name="description"`)
			p.attr("content", desc)
			p.raw(`>`)
		}
		if meta.URL != "" {
			p.raw(`<link rel="canonical"`)
			p.href("href", meta.URL)
			p.raw(`><meta property="og:url"`)
			p.attr("content", meta.URL)
			p.raw(`>`)
		}
		p.raw(`<meta property="og:title"`)
		p.attr("content", title)
		p.raw(`><meta property="og:site_name"`)
		p.attr("content", cfg.Name)
		p.raw(`>`)
		if meta.OGType != "" {
			p.raw(`<meta property="og:type"`)
			p.attr("content", meta.OGType)
			p.raw(`>`)
		}
		if desc != "" {
			p.raw(`<meta property="og:description"`)
			p.attr("content", desc)
			p.raw(`>`)
		}
		if meta.Image != "" {
			p.raw(`<meta property="og:image"`)
			p.attr("content", meta.Image)
			p.raw(`>`)
		}
		p.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml"`)
		p.attr("title", cfg.Name)
		p.raw(`><link rel="icon" href="/favicon.svg" type="image/svg+xml">`)
		p.raw(`<link rel="stylesheet" href="/public/site.css">`)
		if jsonLD != "" {
			// json.Marshal escapes <, > and &, so the payload cannot close the tag.
			p.raw(`<script type="application/ld+json">`, jsonLD, `</script>`)
		}
		p.raw(`</head><body>`)

		p.raw(`<header class="site-header"><div class="container"><a class="site-brand" href="/blog/">`)
		p.text(cfg.Name)
		p.raw(`</a><nav class="site-nav"><a href="/blog/">Blog</a><a href="/blog-details/">Latest</a><a href="/feed.xml">RSS</a></nav></div></header>`)

		p.raw(`<main>`)
		if err := body(ctx, p); err != nil {
			return err
		}
		p.raw(`</main>`)

		p.raw(`<footer class="site-footer"><div class="container">&copy; `, strconv.Itoa(time.Now().Year()), ` `)
		p.text(cfg.Name)
		p.raw(`</div></footer></body></html>`)
		return nil
	}
}

func breadcrumb(p *page, title string) {
	p.raw(`<section class="breadcrumb"><div class="container"><h1 class="breadcrumb-title">`)
	p.text(title)
	p.raw(`</h1><ul><li><a href="/">Home</a></li><li>`)
	p.text(title)
	p.raw(`</li></ul></div></section>`)
}
