package blog

import (
	"time"

	"github.com/hidental/blog/analytics"
	"github.com/hidental/blog/blocks"
)

// Post is an article as shown on the details page, fallbacks applied.
type Post struct {
	Title       string
	Description string
	Slug        string
	Date        string
	Published   time.Time // zero when the CMS has no date
	Category    string
	Cover       Image
	Body        []blocks.Node // empty when the article has no blocks
	WordCount   int
	Found       bool // false when the CMS returned nothing and placeholders are shown
}

// PostCard is an article as shown in lists.
type PostCard struct {
	Title       string
	Description string
	Slug        string
	Link        string
	Date        string
	Category    string
	Cover       Image
}

// Image is a resolved image ready for an <img> tag.
type Image struct {
	URL    string
	Alt    string
	Width  int
	Height int
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// Comment is a reader comment on an article, held for moderation.
type Comment struct {
	ID        string
	Slug      string
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
	Approved  bool
}

// Subscriber is a newsletter sign-up.
type Subscriber struct {
	Email     string
	CreatedAt time.Time
}

// BlogPage bundles the list template data.
type BlogPage struct {
	Cards    []PostCard
	Query    string
	Category string
}

// DetailsPage bundles everything the details template needs.
type DetailsPage struct {
	Post       Post
	Recent     []PostCard
	Prev, Next *PostCard
	Categories []CategoryCount
	Comments   []Comment
	Notice     string // e.g. "comment-pending" or "newsletter-subscribed", from the redirect
	CSRF       string
}

// AdminPage bundles the moderation dashboard data.
type AdminPage struct {
	Pending     []Comment
	Subscribers int
	Message     string
	CSRF        string
	CMSURL      string
	TopArticles []analytics.ArticleReads // nil when analytics is off
}
