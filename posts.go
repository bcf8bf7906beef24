package blog

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/jaytaylor/html2text"

	"github.com/hidental/blog/blocks"
	"github.com/hidental/blog/strapi"
)

// Placeholders shown when the CMS has no value.
const (
	PlaceholderTitle       = "Blog Details"
	PlaceholderDescription = "The rapid advancements in AI have paved the way for startups..."
	PlaceholderCover       = "/assets/img_placeholder/th-1/blog-main-1.jpg"
	PlaceholderDate        = "June 12, 2024"
	DefaultCategory        = "Business"
	CardCategory           = "General"
	UnknownDate            = "N/A"

	DateLayout = "January 2, 2006"
)

// NewPost builds the details view of a. A nil article yields a page of
// placeholders with Found false.
func NewPost(a *strapi.Article, r blocks.Renderer) Post {
	p := Post{
		Title:       PlaceholderTitle,
		Description: PlaceholderDescription,
		Date:        PlaceholderDate,
		Category:    DefaultCategory,
		Cover: Image{
			URL:    PlaceholderCover,
			Width:  blocks.DefaultMediaWidth,
			Height: blocks.DefaultMediaHeight,
		},
		Body: []blocks.Node{},
	}
	if a == nil {
		p.Cover.Alt = p.Title
		return p
	}
	p.Found = true
	p.Slug = a.Slug
	if a.Title != "" {
		p.Title = a.Title
	}
	if a.Description != "" {
		p.Description = a.Description
	}
	if d := a.Date(); d != nil {
		p.Date = FormatDate(*d)
		p.Published = d.UTC()
	}
	if a.Category != "" {
		p.Category = a.Category
	}
	if a.Cover != nil && a.Cover.URL != "" {
		p.Cover.URL = a.Cover.URL
	}
	p.Cover.Alt = p.Title
	p.Body = r.Render(a.Blocks)
	p.WordCount = WordCount(a.Blocks, r)
	return p
}

// NewPostCard builds the list view of a. Only the cover, category and date
// have fallbacks.
func NewPostCard(a strapi.Article) PostCard {
	c := PostCard{
		Title:       a.Title,
		Description: a.Description,
		Slug:        a.Slug,
		Link:        DetailsLink(a.Slug),
		Category:    CardCategory,
		Date:        UnknownDate,
		Cover: Image{
			URL:    PlaceholderCover,
			Alt:    a.Title,
			Width:  blocks.DefaultMediaWidth,
			Height: blocks.DefaultMediaHeight,
		},
	}
	if a.Category != "" {
		c.Category = a.Category
	}
	if a.PublishedAt != nil {
		c.Date = FormatDate(*a.PublishedAt)
	}
	if a.Cover != nil {
		c.Cover.URL = a.Cover.Variant("large").URL
		if a.Cover.AltText != "" {
			c.Cover.Alt = a.Cover.AltText
		}
		if a.Cover.Width > 0 {
			c.Cover.Width = a.Cover.Width
		}
		if a.Cover.Height > 0 {
			c.Cover.Height = a.Cover.Height
		}
	}
	return c
}

// NewPostCards converts a list of articles.
func NewPostCards(articles []strapi.Article) []PostCard {
	cards := make([]PostCard, 0, len(articles))
	for _, a := range articles {
		cards = append(cards, NewPostCard(a))
	}
	return cards
}

// RecentCards returns up to n cards, skipping the article with slug exclude.
func RecentCards(articles []strapi.Article, exclude string, n int) []PostCard {
	var out []PostCard
	for _, a := range articles {
		if len(out) >= n {
			break
		}
		if exclude != "" && a.Slug == exclude {
			continue
		}
		out = append(out, NewPostCard(a))
	}
	return out
}

// DetailsLink is the details page URL for slug.
func DetailsLink(slug string) string {
	if slug == "" {
		return "/blog-details/"
	}
	return "/blog-details/?slug=" + url.QueryEscape(slug)
}

// FormatDate formats t for display in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// PlainText returns the readable text of the rich-text blocks, read in r's
// rich-text format.
func PlainText(bs []strapi.Block, r blocks.Renderer) string {
	var parts []string
	for _, b := range bs {
		rt, ok := b.(strapi.RichTextBlock)
		if !ok || strings.TrimSpace(rt.BodyHTML) == "" {
			continue
		}
		text, err := html2text.FromString(r.BodyHTML(rt), html2text.Options{OmitLinks: true, TextOnly: true})
		if err != nil {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n")
}

// WordCount counts the words of the rich-text blocks.
func WordCount(bs []strapi.Block, r blocks.Renderer) int {
	return len(strings.Fields(PlainText(bs, r)))
}

// CategoryCount is a category and how many articles carry it.
type CategoryCount struct {
	Name  string
	Count int
}

// CategoryCounts tallies the articles per category, by name.
func CategoryCounts(articles []strapi.Article) []CategoryCount {
	counts := map[string]int{}
	for _, a := range articles {
		if a.Category != "" {
			counts[a.Category]++
		}
	}
	out := make([]CategoryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, CategoryCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FilterArticles keeps the articles in category (exact, case-insensitive)
// whose title, description or category contains q. Empty arguments match
// everything.
func FilterArticles(articles []strapi.Article, q, category string) []strapi.Article {
	q = strings.ToLower(strings.TrimSpace(q))
	category = strings.TrimSpace(category)
	if q == "" && category == "" {
		return articles
	}
	out := []strapi.Article{}
	for _, a := range articles {
		if category != "" && !strings.EqualFold(a.Category, category) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(a.Title+"\n"+a.Description+"\n"+a.Category), q) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Neighbors returns the cards either side of slug in list order.
func Neighbors(articles []strapi.Article, slug string) (prev, next *PostCard) {
	if slug == "" {
		return nil, nil
	}
	for i, a := range articles {
		if a.Slug != slug {
			continue
		}
		if i > 0 {
			c := NewPostCard(articles[i-1])
			prev = &c
		}
		if i+1 < len(articles) {
			c := NewPostCard(articles[i+1])
			next = &c
		}
		return prev, next
	}
	return nil, nil
}
