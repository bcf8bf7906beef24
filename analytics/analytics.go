// Package analytics counts article reads without storing personal data.
//
// A read is keyed by article slug, UTC day and a visitor hash. The hash is a
// salted SHA-256 of IP, User-Agent and the day, so visitors cannot be linked
// across days and raw addresses never reach the database.
package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// ArticleReads is the number of distinct daily readers of one article.
type ArticleReads struct {
	Slug  string
	Reads int
}

// VisitorID derives the per-day anonymous visitor hash.
func VisitorID(salt, ip, userAgent string, day time.Time) string {
	h := sha256.New()
	h.Write([]byte(salt + "|" + day.UTC().Format(dayLayout) + "|" + ip + "|" + userAgent))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

var botMarkers = []string{
	"bot", "crawler", "spider", "crawl", "slurp", "scrape",
	"googlebot", "bingbot", "yandex", "baidu", "duckduckbot",
	"facebookexternalhit", "twitterbot", "linkedinbot",
	"ahrefsbot", "semrushbot", "mj12bot", "dotbot",
	"curl/", "wget/", "python-requests", "go-http-client",
}

// IsBot checks if the User-Agent is likely a bot, crawler or script.
func IsBot(ua string) bool {
	if strings.TrimSpace(ua) == "" {
		return true
	}
	ua = strings.ToLower(ua)
	for _, m := range botMarkers {
		if strings.Contains(ua, m) {
			return true
		}
	}
	return false
}
