package blog

import (
	"encoding/xml"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/hidental/blog/blocks"
	"github.com/hidental/blog/strapi"
)

// feedSummaryLen caps the description derived from the article body.
const feedSummaryLen = 280

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Category    string `xml:"category,omitempty"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

func (a *App) renderRSS(c echo.Context, articles []strapi.Article) error {
	items := make([]rssItem, 0, len(articles))
	for _, art := range articles {
		if art.Slug == "" {
			continue
		}
		link := a.detailsURL(art.Slug)
		item := rssItem{
			Title:       art.Title,
			Link:        link,
			Description: feedSummary(art, a.renderer),
			Category:    art.Category,
			GUID:        link,
		}
		if d := art.Date(); d != nil {
			item.PubDate = d.UTC().Format(time.RFC1123Z)
		}
		items = append(items, item)
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        BuildURL(a.Config.URL, "blog"),
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}

// feedSummary is the article description, or the start of its body text.
func feedSummary(art strapi.Article, r blocks.Renderer) string {
	if art.Description != "" {
		return art.Description
	}
	text := PlainText(art.Blocks, r)
	if utf8.RuneCountInString(text) <= feedSummaryLen {
		return text
	}
	return string([]rune(text)[:feedSummaryLen]) + "…"
}
