package views

import (
	"context"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/hidental/blog"
	"github.com/hidental/blog/blocks"
)

// Tags are the fixed sidebar tags.
var Tags = []string{"Article", "Business", "Digital", "Technology", "UI/UX"}

var notices = map[string]struct {
	ok   bool
	text string
}{
	"comment-pending":       {true, "Thanks! Your comment is awaiting moderation."},
	"comment-invalid":       {false, "Please enter your name, a valid email address and a message."},
	"newsletter-subscribed": {true, "You're subscribed. Thanks for reading!"},
	"newsletter-invalid":    {false, "Please enter a valid email address."},
}

// Details renders a single article with comments and the sidebar.
func Details(cfg blog.SiteConfig) func(blog.DetailsPage, blog.PageMeta) templ.Component {
	return func(data blog.DetailsPage, meta blog.PageMeta) templ.Component {
		post := data.Post
		jsonLD := ""
		if post.Found {
			jsonLD = blog.ArticleJsonLD(post, cfg, meta.URL)
		}
		return component(layout(cfg, meta, jsonLD, func(ctx context.Context, p *page) error {
			breadcrumb(p, "Blog Details")
			p.raw(`<section class="container details"><article class="post">`)
			if n, ok := notices[data.Notice]; ok {
				cls := "notice notice-error"
				if n.ok {
					cls = "notice notice-ok"
				}
				p.raw(`<div role="status"`)
				p.attr("class", cls)
				p.raw(`>`)
				p.text(n.text)
				p.raw(`</div>`)
			}

			p.img(post.Cover.URL, post.Cover.Alt, post.Cover.Width, post.Cover.Height, "post-cover")
			p.raw(`<ul class="post-meta"><li class="category">`)
			p.text(post.Category)
			p.raw(`</li><li class="date">`)
			p.text(post.Date)
			p.raw(`</li></ul><h2 class="post-title">`)
			p.text(post.Title)
			p.raw(`</h2><p class="post-description">`)
			p.text(post.Description)
			p.raw(`</p><div class="post-body">`)
			if len(post.Body) > 0 {
				if err := p.render(ctx, blocks.Join(post.Body)); err != nil {
					return err
				}
			} else {
				fallbackBody(p)
			}
			p.raw(`</div>`)

			postNav(p, data.Prev, data.Next)
			if post.Slug != "" {
				comments(p, data.Comments)
				commentForm(p, post.Slug, data.CSRF)
			}
			p.raw(`</article>`)
			sidebar(p, data)
			p.raw(`</section>`)
			return nil
		}))
	}
}

// fallbackBody is shown when an article has no content blocks.
func fallbackBody(p *page) {
	item := func(title, body string) {
		p.raw(`<li><div class="font-semibold">`, title, `</div><p>`, body, `</p></li>`)
	}
	p.raw(`<ul class="post-fallback">`)
	item("1. AI-Powered Customer Support",
		"AI chatbots and virtual assistants can handle routine queries, troubleshoot issues, and guide users, improving response times. This frees up human agents to tackle complex tasks, enhancing user experience.")
	item("2. Predictive Maintenance",
		"By analyzing usage patterns, ML algorithms can predict failures, enabling proactive maintenance and minimizing downtime.")
	item("3. Enhanced Cybersecurity",
		"AI anomaly detection, behavior analysis, and intrusion prevention boost security and data protection. This safeguards infrastructure and builds user trust.")
	p.raw(`<li>`)
	p.img("/assets/img_placeholder/th-1/blog-inner-image.jpg", blocks.DefaultMediaAlt, blocks.DefaultMediaWidth, blocks.DefaultMediaHeight, "")
	p.raw(`</li>`)
	item("4. Personalized User Experiences",
		"By analyzing behavior and preferences, AI tailors interfaces and features. This improves satisfaction and encourages retention.")
	item("5. Automated Workflows",
		"Automating tasks like software updates and license management with AI reduces manual efforts and minimizes errors.")
	p.raw(`</ul>`)
}

func postNav(p *page, prev, next *blog.PostCard) {
	if prev == nil && next == nil {
		return
	}
	p.raw(`<nav class="post-nav">`)
	if prev != nil {
		p.raw(`<a class="post-nav-prev"`)
		p.href("href", prev.Link)
		p.raw(`><span>Previous post</span><p>`)
		p.text(prev.Title)
		p.raw(`</p></a>`)
	}
	if next != nil {
		p.raw(`<a class="post-nav-next"`)
		p.href("href", next.Link)
		p.raw(`><span>Next post</span><p>`)
		p.text(next.Title)
		p.raw(`</p></a>`)
	}
	p.raw(`</nav>`)
}

func comments(p *page, list []blog.Comment) {
	p.raw(`<section class="comments" id="comments">`)
	switch len(list) {
	case 0:
		p.raw(`<h3>No comments yet.</h3>`)
	case 1:
		p.raw(`<h3>1 comment on this post:</h3>`)
	default:
		p.raw(`<h3>`, strconv.Itoa(len(list)), ` comments on this post:</h3>`)
	}
	if len(list) > 0 {
		p.raw(`<ul class="comment-list">`)
		for _, c := range list {
			p.raw(`<li class="comment"><div><div class="comment-author">`)
			p.text(c.Name)
			p.raw(`</div><div class="comment-date">`)
			p.text(blog.FormatDate(c.CreatedAt))
			p.raw(`</div><p class="comment-message">`)
			p.text(c.Message)
			p.raw(`</p></div></li>`)
		}
		p.raw(`</ul>`)
	}
	p.raw(`</section>`)
}

func commentForm(p *page, slug, csrf string) {
	p.raw(`<section class="comment-form"><h3>Leave a comment:</h3><form method="post" action="/blog-details/comments/">`)
	p.csrf(csrf)
	p.raw(`<input type="hidden" name="slug"`)
	p.attr("value", slug)
	p.raw(`>`)
	p.raw(`<div class="form-field"><label for="comment-name">Enter your name</label><input type="text" name="name" id="comment-name" placeholder="Adam Smith" maxlength="80" required></div>`)
	p.raw(`<div class="form-field"><label for="comment-email">Email address</label><input type="email" name="email" id="comment-email" placeholder="example@gmail.com" maxlength="254" required></div>`)
	p.raw(`<div class="form-field"><label for="comment-message">Message</label><textarea name="message" id="comment-message" rows="6" placeholder="Write your message here..." maxlength="4000" required></textarea></div>`)
	p.raw(`<button type="submit" class="button">Send your message</button></form></section>`)
}

func sidebar(p *page, data blog.DetailsPage) {
	p.raw(`<aside class="sidebar">`)

	p.raw(`<div class="sidebar-widget"><form method="get" action="/blog/" role="search"><input type="search" name="q" id="sidebar-search" placeholder="Type to search..." required></form></div>`)

	if len(data.Categories) > 0 {
		p.raw(`<div class="sidebar-widget"><h4>Blog Categories</h4><ul class="category-list">`)
		for _, c := range data.Categories {
			p.raw(`<li><a`)
			p.href("href", "/blog/?category="+url.QueryEscape(c.Name))
			p.raw(`>`)
			p.text(c.Name)
			p.raw(` (`, strconv.Itoa(c.Count), `)</a></li>`)
		}
		p.raw(`</ul></div>`)
	}

	if len(data.Recent) > 0 {
		p.raw(`<div class="sidebar-widget"><h4>Recent Posts</h4><ul class="recent-list">`)
		for _, r := range data.Recent {
			p.raw(`<li class="recent-post"><a`)
			p.href("href", r.Link)
			p.raw(`>`)
			p.img(r.Cover.URL, r.Cover.Alt, 0, 0, "")
			p.raw(`</a><div><a`)
			p.href("href", r.Link)
			p.raw(`>`)
			p.text(r.Title)
			p.raw(`</a><div class="recent-date">`)
			p.text(r.Date)
			p.raw(`</div></div></li>`)
		}
		p.raw(`</ul></div>`)
	}

	p.raw(`<div class="sidebar-widget"><h4>Tags</h4><ul class="tag-list">`)
	for _, t := range Tags {
		p.raw(`<li><a`)
		p.href("href", "/blog/?q="+url.QueryEscape(t))
		p.raw(`>`)
		p.text(t)
		p.raw(`</a></li>`)
	}
	p.raw(`</ul></div>`)

	p.raw(`<div class="sidebar-widget"><h4>Subscribe</h4><p>Subscribe to our newsletter and get the latest news updates lifetime</p><form method="post" action="/newsletter/">`)
	p.csrf(data.CSRF)
	p.raw(`<input type="hidden" name="slug"`)
	p.attr("value", data.Post.Slug)
	p.raw(`><div class="form-field"><input type="email" name="email" id="sidebar-newsletter" placeholder="Enter your email address" required></div><button type="submit" class="button">Subscribe Now</button></form></div>`)

	p.raw(`</aside>`)
}
