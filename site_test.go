package blog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hidental/blog"
	"github.com/hidental/blog/strapi"
	"github.com/hidental/blog/views"
)

type fixtureSource struct {
	articles []strapi.Article
}

func (f fixtureSource) Article(ctx context.Context, sel strapi.Selector) (*strapi.Article, error) {
	for i, a := range f.articles {
		if sel.IsLatest() || a.Slug == sel.Slug {
			return &f.articles[i], nil
		}
	}
	return nil, nil
}

func (f fixtureSource) Articles(ctx context.Context) ([]strapi.Article, error) {
	return f.articles, nil
}

func published(s string) *time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return &t
}

var fixtures = fixtureSource{articles: []strapi.Article{
	{
		ID: "1", Title: "Caring for implants", Slug: "implants", Description: "Day-to-day care",
		PublishedAt: published("2024-06-12T09:00:00Z"), Category: "Surgery",
		Blocks: []strapi.Block{strapi.RichTextBlock{BodyHTML: `<p id="intro">Brush twice a day.</p>`}},
	},
	{ID: "2", Title: "Flossing 101", Slug: "flossing", Description: "Why it matters", Category: "Care"},
	{ID: "3", Title: "Whitening myths", Slug: "whitening", Category: "Care"},
}}

func newTestApp(t *testing.T, src blog.ArticleSource, mods ...func(*blog.SiteConfig)) *blog.App {
	t.Helper()
	cfg := blog.SiteConfig{
		Name:          "HiDental",
		URL:           "https://blog.example",
		Description:   "Clinic news",
		DatabasePath:  filepath.Join(t.TempDir(), "site.db"),
		AdminPassword: "letmein",
		SessionSecret: "0123456789abcdef0123456789abcdef",
	}
	for _, mod := range mods {
		mod(&cfg)
	}
	app := blog.New(cfg, views.Funcs(cfg), blog.WithArticleSource(src), blog.WithStaticDir(t.TempDir()))
	if err := app.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app
}

const browserUA = "Mozilla/5.0 (X11; Linux x86_64) Gecko/20100101 Firefox/128.0"

// browser replays cookies between requests.
type browser struct {
	t       *testing.T
	app     *blog.App
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, app *blog.App) *browser {
	return &browser{t: t, app: app, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set("User-Agent", browserUA)
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.app.Echo.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, target, nil))
}

// post submits form with the CSRF token from the cookie jar.
func (b *browser) post(target string, form url.Values) *httptest.ResponseRecorder {
	if c, ok := b.cookies["_csrf"]; ok {
		form.Set("_csrf", c.Value)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func parse(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestRootRedirectsToBlog(t *testing.T) {
	rec := newBrowser(t, newTestApp(t, fixtures)).get("/")
	if rec.Code != http.StatusMovedPermanently || rec.Header().Get("Location") != "/blog/" {
		t.Fatalf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestBlogListsCards(t *testing.T) {
	rec := newBrowser(t, newTestApp(t, fixtures)).get("/blog/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	doc := parse(t, rec)
	cards := doc.Find("li.blog-card")
	if cards.Length() != 3 {
		t.Fatalf("expected 3 cards, got %d", cards.Length())
	}
	first := cards.First()
	if href, _ := first.Find("h3 a").Attr("href"); href != "/blog-details/?slug=implants" {
		t.Errorf("link = %q", href)
	}
	if got := first.Find(".blog-card-date").Text(); got != "June 12, 2024" {
		t.Errorf("date = %q", got)
	}
	if got := cards.Eq(1).Find(".blog-card-date").Text(); got != "N/A" {
		t.Errorf("undated card = %q", got)
	}
	if src, _ := first.Find("img").Attr("src"); src != blog.PlaceholderCover {
		t.Errorf("cover = %q", src)
	}
}

func TestBlogSearchAndCategory(t *testing.T) {
	b := newBrowser(t, newTestApp(t, fixtures))

	if n := parse(t, b.get("/blog/?q=floss")).Find("li.blog-card").Length(); n != 1 {
		t.Errorf("search: expected 1 card, got %d", n)
	}
	if n := parse(t, b.get("/blog/?category=care")).Find("li.blog-card").Length(); n != 2 {
		t.Errorf("category: expected 2 cards, got %d", n)
	}
	doc := parse(t, b.get("/blog/?q=nothing-matches"))
	if !strings.Contains(doc.Find(".blog-empty").Text(), "No articles found.") {
		t.Error("expected the empty message")
	}
}

func TestBlogEmptyWhenCMSFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()
	client := strapi.NewClient(strapi.NewConfig(srv.URL, ""), strapi.WithLogger(discard{}))

	rec := newBrowser(t, newTestApp(t, client)).get("/blog/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(parse(t, rec).Find(".blog-empty").Text(), "No articles found.") {
		t.Error("expected the empty message")
	}
}

type discard struct{}

func (discard) Errorf(string, ...interface{}) {}

func TestDetailsRendersArticle(t *testing.T) {
	rec := newBrowser(t, newTestApp(t, fixtures)).get("/blog-details/?slug=implants")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	doc := parse(t, rec)
	if got := doc.Find("h2.post-title").Text(); got != "Caring for implants" {
		t.Errorf("title = %q", got)
	}
	if got := doc.Find(".post-body #intro").Text(); got != "Brush twice a day." {
		t.Errorf("body = %q", got)
	}
	if doc.Find(".post-fallback").Length() != 0 {
		t.Error("fallback list must not render when blocks exist")
	}
	if got := doc.Find(".post-meta .category").Text(); got != "Surgery" {
		t.Errorf("category = %q", got)
	}
	recent := doc.Find(".recent-post")
	if recent.Length() != 2 {
		t.Errorf("expected the other 2 articles in the sidebar, got %d", recent.Length())
	}
	if strings.Contains(recent.Text(), "Caring for implants") {
		t.Error("sidebar should not list the current article")
	}
	if doc.Find(".post-nav-next").Length() != 1 || doc.Find(".post-nav-prev").Length() != 0 {
		t.Error("expected only a next-post link on the first article")
	}
	if !strings.Contains(doc.Find(`script[type="application/ld+json"]`).Text(), `"BlogPosting"`) {
		t.Error("expected BlogPosting JSON-LD")
	}
	if doc.Find(`form[action="/blog-details/comments/"]`).Length() != 1 {
		t.Error("expected a comment form")
	}
}

func TestDetailsWithoutSlugShowsLatest(t *testing.T) {
	doc := parse(t, newBrowser(t, newTestApp(t, fixtures)).get("/blog-details/"))
	if got := doc.Find("h2.post-title").Text(); got != "Caring for implants" {
		t.Errorf("title = %q", got)
	}
}

func TestDetailsFallbackBodyWithoutBlocks(t *testing.T) {
	doc := parse(t, newBrowser(t, newTestApp(t, fixtures)).get("/blog-details/?slug=flossing"))
	if !strings.Contains(doc.Find(".post-fallback").Text(), "1. AI-Powered Customer Support") {
		t.Error("expected the static fallback list")
	}
	if got := doc.Find(".post-meta .date").Text(); got != blog.PlaceholderDate {
		t.Errorf("date = %q", got)
	}
}

func TestDetailsPlaceholdersWhenCMSFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	client := strapi.NewClient(strapi.NewConfig(srv.URL, ""), strapi.WithLogger(discard{}))

	rec := newBrowser(t, newTestApp(t, client)).get("/blog-details/?slug=anything")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	doc := parse(t, rec)
	if got := doc.Find("h2.post-title").Text(); got != blog.PlaceholderTitle {
		t.Errorf("title = %q", got)
	}
	if got := doc.Find(".post-description").Text(); got != blog.PlaceholderDescription {
		t.Errorf("description = %q", got)
	}
	if src, _ := doc.Find("img.post-cover").Attr("src"); src != blog.PlaceholderCover {
		t.Errorf("cover = %q", src)
	}
	if doc.Find(".post-fallback").Length() != 1 {
		t.Error("expected the fallback body")
	}
	if doc.Find(`form[action="/blog-details/comments/"]`).Length() != 0 {
		t.Error("comments need a real article")
	}
}

func TestCommentIsHeldForModeration(t *testing.T) {
	app := newTestApp(t, fixtures)
	b := newBrowser(t, app)
	b.get("/blog-details/?slug=implants")

	rec := b.post("/blog-details/comments/", url.Values{
		"slug":    {"implants"},
		"name":    {"Ricky Smith"},
		"email":   {"ricky@example.com"},
		"message": {"Very helpful, thanks."},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/blog-details/?comment=pending&slug=implants" {
		t.Errorf("location = %q", loc)
	}

	doc := parse(t, b.get("/blog-details/?slug=implants&comment=pending"))
	if !strings.Contains(doc.Find(".notice-ok").Text(), "awaiting moderation") {
		t.Error("expected the pending notice")
	}
	if doc.Find(".comment").Length() != 0 {
		t.Error("unapproved comments must not render")
	}

	pending, err := app.Store.ListPendingComments()
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending = %v, %v", pending, err)
	}
	if err := app.Store.ApproveComment(pending[0].ID); err != nil {
		t.Fatal(err)
	}
	doc = parse(t, b.get("/blog-details/?slug=implants"))
	if got := doc.Find(".comment-author").Text(); got != "Ricky Smith" {
		t.Errorf("author = %q", got)
	}
	if !strings.Contains(doc.Find(".comments h3").Text(), "1 comment on this post") {
		t.Errorf("header = %q", doc.Find(".comments h3").Text())
	}
}

func TestInvalidCommentRedirects(t *testing.T) {
	app := newTestApp(t, fixtures)
	b := newBrowser(t, app)
	b.get("/blog-details/?slug=implants")

	rec := b.post("/blog-details/comments/", url.Values{
		"slug": {"implants"}, "name": {"  "}, "email": {"not-an-email"}, "message": {"hi"},
	})
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "comment=invalid") {
		t.Fatalf("location = %q", loc)
	}
	if pending, _ := app.Store.ListPendingComments(); len(pending) != 0 {
		t.Fatalf("invalid comment was stored: %+v", pending)
	}
}

func TestPostWithoutCSRFIsForbidden(t *testing.T) {
	b := newBrowser(t, newTestApp(t, fixtures))
	req := httptest.NewRequest(http.MethodPost, "/blog-details/comments/", strings.NewReader("slug=implants"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if rec := b.do(req); rec.Code != http.StatusForbidden {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestSubscribeTwice(t *testing.T) {
	app := newTestApp(t, fixtures)
	b := newBrowser(t, app)
	b.get("/blog-details/")

	for i := 0; i < 2; i++ {
		rec := b.post("/newsletter/", url.Values{"email": {"reader@example.com"}, "slug": {"implants"}})
		if loc := rec.Header().Get("Location"); !strings.Contains(loc, "newsletter=subscribed") {
			t.Fatalf("attempt %d: location = %q", i, loc)
		}
	}
	if n, _ := app.Store.CountSubscribers(); n != 1 {
		t.Fatalf("expected 1 subscriber, got %d", n)
	}
}

func TestAdminModeration(t *testing.T) {
	app := newTestApp(t, fixtures)
	c, err := app.Store.SaveComment(blog.Comment{Slug: "implants", Name: "Joshua", Email: "j@example.com", Message: "Spam?"})
	if err != nil {
		t.Fatal(err)
	}
	b := newBrowser(t, app)

	doc := parse(t, b.get("/admin/"))
	if doc.Find(`input[name="password"]`).Length() != 1 {
		t.Fatal("expected the login form")
	}
	doc = parse(t, b.post("/admin/login/", url.Values{"password": {"wrong"}}))
	if !strings.Contains(doc.Find(".notice-error").Text(), "Wrong password") {
		t.Error("expected a login error")
	}
	if rec := b.post("/admin/login/", url.Values{"password": {"letmein"}}); rec.Code != http.StatusSeeOther {
		t.Fatalf("login status %d", rec.Code)
	}

	doc = parse(t, b.get("/admin/"))
	if doc.Find(`tr[data-comment-id="`+c.ID+`"]`).Length() != 1 {
		t.Fatal("expected the pending comment on the dashboard")
	}
	if rec := b.post("/admin/comments/"+c.ID+"/approve/", url.Values{}); rec.Code != http.StatusOK {
		t.Fatalf("approve status %d", rec.Code)
	}
	approved, _ := app.Store.ListApprovedComments("implants")
	if len(approved) != 1 {
		t.Fatalf("expected the comment to be approved, got %d", len(approved))
	}
	if rec := b.post("/admin/comments/missing/approve/", url.Values{}); rec.Code != http.StatusNotFound {
		t.Errorf("approve missing: status %d", rec.Code)
	}
	if rec := b.post("/admin/cache/flush/", url.Values{}); rec.Code != http.StatusOK {
		t.Errorf("flush status %d", rec.Code)
	}
}

func TestAdminShowsMostRead(t *testing.T) {
	app := newTestApp(t, fixtures, func(cfg *blog.SiteConfig) {
		cfg.AnalyticsEnabled = true
		cfg.AnalyticsDatabasePath = filepath.Join(t.TempDir(), "analytics.db")
	})
	b := newBrowser(t, app)
	b.get("/blog-details/?slug=flossing")
	b.get("/blog-details/?slug=flossing")
	b.get("/blog-details/?slug=implants")

	// crawlers are not counted
	req := httptest.NewRequest(http.MethodGet, "/blog-details/?slug=whitening", nil)
	req.Header.Set("User-Agent", "Googlebot/2.1")
	app.Echo.ServeHTTP(httptest.NewRecorder(), req)

	b.get("/admin/")
	if rec := b.post("/admin/login/", url.Values{"password": {"letmein"}}); rec.Code != http.StatusSeeOther {
		t.Fatalf("login status %d", rec.Code)
	}
	rows := parse(t, b.get("/admin/")).Find("table.top-articles tbody tr")
	if rows.Length() != 2 {
		t.Fatalf("expected 2 read articles, got %d", rows.Length())
	}
	// one visitor per day, so both count once; ties sort by slug
	if got := rows.First().Find("a").Text(); got != "flossing" {
		t.Errorf("first row = %q", got)
	}
	if got := rows.First().Find("td").Last().Text(); got != "1" {
		t.Errorf("reads = %q", got)
	}
}

func TestAdminHidesMostReadWithoutAnalytics(t *testing.T) {
	b := newBrowser(t, newTestApp(t, fixtures))
	b.get("/admin/")
	b.post("/admin/login/", url.Values{"password": {"letmein"}})
	if parse(t, b.get("/admin/")).Find("table.top-articles").Length() != 0 {
		t.Error("most read table shown with analytics off")
	}
}

func TestAdminActionsNeedSession(t *testing.T) {
	b := newBrowser(t, newTestApp(t, fixtures))
	b.get("/admin/")
	rec := b.post("/admin/cache/flush/", url.Values{})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/" {
		t.Fatalf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestFeedsAndRobots(t *testing.T) {
	b := newBrowser(t, newTestApp(t, fixtures))

	sitemap := b.get("/sitemap.xml").Body.String()
	if !strings.Contains(sitemap, "<loc>https://blog.example/blog-details/?slug=flossing</loc>") {
		t.Errorf("sitemap missing details URL:\n%s", sitemap)
	}
	if !strings.Contains(sitemap, "<lastmod>2024-06-12</lastmod>") {
		t.Errorf("sitemap missing lastmod:\n%s", sitemap)
	}

	feed := b.get("/feed.xml")
	if ct := feed.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Errorf("feed content type = %q", ct)
	}
	if n := strings.Count(feed.Body.String(), "<item>"); n != 3 {
		t.Errorf("expected 3 feed items, got %d", n)
	}

	robots := b.get("/robots.txt").Body.String()
	if !strings.Contains(robots, "Sitemap: https://blog.example/sitemap.xml") {
		t.Errorf("robots = %q", robots)
	}
}

func TestTrailingSlashRedirect(t *testing.T) {
	rec := newBrowser(t, newTestApp(t, fixtures)).get("/blog")
	if rec.Code != http.StatusMovedPermanently || rec.Header().Get("Location") != "/blog/" {
		t.Fatalf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestEmbeddedStylesheet(t *testing.T) {
	rec := newBrowser(t, newTestApp(t, fixtures)).get("/public/site.css")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), ".blog-card") {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	rec := newBrowser(t, newTestApp(t, fixtures)).get("/nope/")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(parse(t, rec).Find("h1").Text(), "Page not found") {
		t.Error("expected the styled 404 page")
	}
}
