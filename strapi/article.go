// Package strapi fetches articles from a Strapi CMS and normalizes its
// response shapes into Article records.
//
// Both the flat item shape ({id, title, ...}) and the v4 nested shape
// ({id, attributes: {title, ...}}) are accepted, as are relations and media
// wrapped in {data: {id, attributes}}.
package strapi

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Article is one normalized CMS article.
type Article struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Slug        string     `json:"slug"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	Category    string     `json:"category,omitempty"`
	Cover       *ImageRef  `json:"cover,omitempty"`
	Blocks      []Block    `json:"blocks"`
}

// Date returns PublishedAt, falling back to CreatedAt. Nil when neither is set.
func (a Article) Date() *time.Time {
	if a.PublishedAt != nil {
		return a.PublishedAt
	}
	return a.CreatedAt
}

type rawArticle struct {
	ID          json.RawMessage   `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Slug        string            `json:"slug"`
	PublishedAt string            `json:"publishedAt"`
	CreatedAt   string            `json:"createdAt"`
	Cover       json.RawMessage   `json:"cover"`
	Category    json.RawMessage   `json:"category"`
	Blocks      []json.RawMessage `json:"blocks"`
	Attributes  json.RawMessage   `json:"attributes"`
}

// Normalize converts one item of a response's data array into an Article.
// Relative media URLs are resolved against base and missing fields are left
// empty. ok is false when raw is not an article object.
func Normalize(raw json.RawMessage, base string) (a Article, ok bool) {
	var ra rawArticle
	if isNull(raw) || json.Unmarshal(raw, &ra) != nil {
		return Article{}, false
	}
	if !isNull(ra.Attributes) {
		id := ra.ID
		ra = rawArticle{}
		if err := json.Unmarshal(unwrapEntity(raw), &ra); err != nil {
			return Article{}, false
		}
		ra.ID = id
	}

	a = Article{
		ID:          scalarString(ra.ID),
		Title:       ra.Title,
		Description: ra.Description,
		Slug:        ra.Slug,
		PublishedAt: parseTime(ra.PublishedAt),
		CreatedAt:   parseTime(ra.CreatedAt),
		Category:    decodeCategory(ra.Category),
		Cover:       decodeImage(ra.Cover, base),
		Blocks:      make([]Block, 0, len(ra.Blocks)),
	}
	for _, b := range ra.Blocks {
		a.Blocks = append(a.Blocks, DecodeBlock(b, base))
	}
	return a, true
}

func decodeCategory(raw json.RawMessage) string {
	raw = unwrapEntity(raw)
	if raw == nil {
		return ""
	}
	var c struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return ""
	}
	return c.Name
}

// unwrapEntity strips the v4 {data: ...} and {attributes: ...} envelopes. It
// returns nil for null, a null data field, an empty data array, or a value
// that is not an object.
func unwrapEntity(raw json.RawMessage) json.RawMessage {
	if isNull(raw) {
		return nil
	}
	var env struct {
		Data       json.RawMessage `json:"data"`
		Attributes json.RawMessage `json:"attributes"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}
	if env.Data != nil {
		data := bytes.TrimSpace(env.Data)
		if len(data) > 0 && data[0] == '[' {
			var items []json.RawMessage
			if err := json.Unmarshal(data, &items); err != nil || len(items) == 0 {
				return nil
			}
			data = items[0]
		}
		return unwrapEntity(data)
	}
	if !isNull(env.Attributes) {
		return env.Attributes
	}
	return raw
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// scalarString renders a JSON number or string id as a plain string.
func scalarString(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
