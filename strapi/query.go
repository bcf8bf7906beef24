package strapi

import (
	"net/url"
	"strings"
)

// Selector picks a single article: by slug, or the most recently created one.
type Selector struct {
	Slug string
}

// BySlug selects the article whose slug equals slug.
func BySlug(slug string) Selector {
	return Selector{Slug: slug}
}

// Latest selects the most recently created article.
func Latest() Selector {
	return Selector{}
}

// IsLatest reports whether the selector asks for the newest article.
func (s Selector) IsLatest() bool {
	return s.Slug == ""
}

// Query returns the articles query string for the selector, populate first.
func (s Selector) Query() string {
	if s.IsLatest() {
		return listQuery + "&sort=createdAt:desc&pagination[limit]=1"
	}
	return listQuery + "&filters[slug][$eq]=" + encodeComponent(s.Slug)
}

// String is used as the cache key.
func (s Selector) String() string {
	return s.Query()
}

const (
	articlesPath = "/api/articles"
	listQuery    = "populate=*"
)

// componentUnescaper restores the characters encodeURIComponent leaves alone
// but url.QueryEscape encodes, and writes spaces as %20 rather than '+'.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent percent-encodes v for use as a query value the way
// encodeURIComponent does.
func encodeComponent(v string) string {
	return componentUnescaper.Replace(url.QueryEscape(v))
}
