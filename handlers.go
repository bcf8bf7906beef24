package blog

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hidental/blog/strapi"
)

// recentCount is how many other articles the details sidebar lists.
const recentCount = 3

func handleRootRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/blog/")
}

func (a *App) handleBlog(c echo.Context) error {
	page := BlogPage{
		Query:    strings.TrimSpace(c.QueryParam("q")),
		Category: strings.TrimSpace(c.QueryParam("category")),
	}
	articles := FilterArticles(a.Cache.Articles(c.Request().Context()), page.Query, page.Category)
	page.Cards = NewPostCards(articles)
	meta := PageMeta{
		Title:       "Blog | " + a.Config.Name,
		Description: a.Config.Description,
		URL:         BuildURL(a.Config.URL, "blog"),
		OGType:      "website",
	}
	return Render(c, a.Views.Blog(page, meta))
}

func (a *App) handleDetails(c echo.Context) error {
	ctx := c.Request().Context()
	sel := strapi.Latest()
	if slug := strings.TrimSpace(c.QueryParam("slug")); slug != "" {
		sel = strapi.BySlug(slug)
	}

	post := NewPost(a.Cache.Article(ctx, sel), a.renderer)
	articles := a.Cache.Articles(ctx)

	page := DetailsPage{
		Post:       post,
		Recent:     RecentCards(articles, post.Slug, recentCount),
		Categories: CategoryCounts(articles),
		Notice:     noticeFrom(c),
		CSRF:       CsrfToken(c),
	}
	page.Prev, page.Next = Neighbors(articles, post.Slug)
	if post.Found {
		a.recordRead(c, post.Slug)
	}
	if post.Slug != "" {
		comments, err := a.Store.ListApprovedComments(post.Slug)
		if err != nil {
			c.Logger().Errorf("list comments %q: %v", post.Slug, err)
		}
		page.Comments = comments
	}

	meta := PageMeta{
		Title:       post.Title + " | " + a.Config.Name,
		Description: post.Description,
		URL:         a.detailsURL(post.Slug),
		OGType:      "article",
		Image:       post.Cover.URL,
	}
	return Render(c, a.Views.Details(page, meta))
}

func (a *App) recordRead(c echo.Context, slug string) {
	if a.analyticsStore == nil {
		return
	}
	if _, err := a.analyticsStore.RecordRead(slug, c.RealIP(), c.Request().UserAgent(), time.Now()); err != nil {
		c.Logger().Errorf("record read %q: %v", slug, err)
	}
}

// noticeFrom picks the flash notice a comment or subscribe redirect left in
// the query string.
func noticeFrom(c echo.Context) string {
	if v := c.QueryParam("comment"); v != "" {
		return "comment-" + v
	}
	if v := c.QueryParam("newsletter"); v != "" {
		return "newsletter-" + v
	}
	return ""
}

func (a *App) detailsURL(slug string) string {
	return strings.TrimRight(a.Config.URL, "/") + DetailsLink(slug)
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.renderSitemap(c, a.Cache.Articles(c.Request().Context()))
}

func (a *App) handleFeed(c echo.Context) error {
	return a.renderRSS(c, a.Cache.Articles(c.Request().Context()))
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nDisallow: /admin/\n\nSitemap: %s\n",
		strings.TrimRight(a.Config.URL, "/")+"/sitemap.xml")
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
