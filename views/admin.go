package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/hidental/blog"
)

// AdminLogin renders the moderation login form.
func AdminLogin(cfg blog.SiteConfig) func(bool, string) templ.Component {
	return func(showError bool, csrf string) templ.Component {
		meta := blog.PageMeta{Title: "Admin | " + cfg.Name}
		return component(layout(cfg, meta, "", func(ctx context.Context, p *page) error {
			p.raw(`<section class="container admin"><h1>Sign in</h1>`)
			if showError {
				p.raw(`<div class="notice notice-error" role="alert">Wrong password.</div>`)
			}
			p.raw(`<form method="post" action="/admin/login/">`)
			p.csrf(csrf)
			p.raw(`<div class="form-field"><label for="password">Password</label><input type="password" name="password" id="password" autocomplete="current-password" required></div>`)
			p.raw(`<button type="submit" class="button">Sign in</button></form></section>`)
			return nil
		}))
	}
}

// AdminDashboard lists pending comments with approve and delete actions.
func AdminDashboard(cfg blog.SiteConfig) func(blog.AdminPage) templ.Component {
	return func(data blog.AdminPage) templ.Component {
		meta := blog.PageMeta{Title: "Moderation | " + cfg.Name}
		return component(layout(cfg, meta, "", func(ctx context.Context, p *page) error {
			p.raw(`<section class="container admin"><h1>Moderation</h1>`)
			if data.Message != "" {
				p.raw(`<div class="notice notice-ok" role="status">`)
				p.text(data.Message)
				p.raw(`</div>`)
			}
			p.raw(`<p class="admin-stats"><span class="subscribers">`, strconv.Itoa(data.Subscribers), `</span> newsletter subscribers &middot; CMS `)
			p.text(data.CMSURL)
			p.raw(`</p>`)

			p.raw(`<form method="post" action="/admin/cache/flush/">`)
			p.csrf(data.CSRF)
			p.raw(`<button type="submit" class="button button-ghost">Refresh articles</button></form>`)

			p.raw(`<h2>Pending comments</h2>`)
			if len(data.Pending) == 0 {
				p.raw(`<p class="admin-empty">Nothing to moderate.</p>`)
			} else {
				p.raw(`<table><thead><tr><th>Article</th><th>From</th><th>Message</th><th>Received</th><th></th></tr></thead><tbody>`)
				for _, c := range data.Pending {
					p.raw(`<tr`)
					p.attr("data-comment-id", c.ID)
					p.raw(`><td><a`)
					p.href("href", blog.DetailsLink(c.Slug))
					p.raw(`>`)
					p.text(c.Slug)
					p.raw(`</a></td><td>`)
					p.text(c.Name)
					p.raw(`<br><small>`)
					p.text(c.Email)
					p.raw(`</small></td><td>`)
					p.text(c.Message)
					p.raw(`</td><td>`)
					p.text(c.CreatedAt.UTC().Format("2006-01-02 15:04"))
					p.raw(`</td><td class="actions">`)
					action(p, "/admin/comments/"+c.ID+"/approve/", "Approve", data.CSRF)
					action(p, "/admin/comments/"+c.ID+"/delete/", "Delete", data.CSRF)
					p.raw(`</td></tr>`)
				}
				p.raw(`</tbody></table>`)
			}

			if data.TopArticles != nil {
				p.raw(`<h2>Most read (30 days)</h2><table class="top-articles"><thead><tr><th>Article</th><th>Readers</th></tr></thead><tbody>`)
				for _, r := range data.TopArticles {
					p.raw(`<tr><td><a`)
					p.href("href", blog.DetailsLink(r.Slug))
					p.raw(`>`)
					p.text(r.Slug)
					p.raw(`</a></td><td>`, strconv.Itoa(r.Reads), `</td></tr>`)
				}
				p.raw(`</tbody></table>`)
			}

			p.raw(`<form method="post" action="/admin/logout/">`)
			p.csrf(data.CSRF)
			p.raw(`<button type="submit" class="button button-ghost">Sign out</button></form></section>`)
			return nil
		}))
	}
}

func action(p *page, path, label, csrf string) {
	p.raw(`<form method="post"`)
	p.href("action", path)
	p.raw(`>`)
	p.csrf(csrf)
	p.raw(`<button type="submit" class="button">`, label, `</button></form>`)
}
