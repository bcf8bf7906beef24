package blog

import (
	"context"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/singleflight"

	"github.com/hidental/blog/strapi"
)

// ArticleSource is where articles come from; *strapi.Client implements it.
type ArticleSource interface {
	Article(ctx context.Context, sel strapi.Selector) (*strapi.Article, error)
	Articles(ctx context.Context) ([]strapi.Article, error)
}

const listKey = "\x00list"

// fetchTimeout bounds a shared upstream fetch once it no longer follows the
// caller's context.
const fetchTimeout = 10 * time.Second

type cacheEntry struct {
	article  *strapi.Article
	articles []strapi.Article
	fetched  time.Time
}

// ArticleCache is an in-memory TTL cache in front of an ArticleSource. It is
// also where fetch errors stop: they are logged and turned into a nil article
// or an empty list, and never cached.
type ArticleCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	gen     uint64
	ttl     time.Duration
	source  ArticleSource
	group   singleflight.Group
	logger  strapi.Logger
}

// NewArticleCache creates a cache over src. A ttl <= 0 disables caching but
// still coalesces concurrent fetches.
func NewArticleCache(src ArticleSource, ttl time.Duration, logger strapi.Logger) *ArticleCache {
	if logger == nil {
		logger = log.New("cache")
	}
	return &ArticleCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		source:  src,
		logger:  logger,
	}
}

// Invalidate drops every entry. Loads already in flight will not store
// their results.
func (c *ArticleCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.gen++
	c.mu.Unlock()
}

func (c *ArticleCache) lookup(key string) (cacheEntry, uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if ok && c.ttl > 0 && time.Since(e.fetched) < c.ttl {
		return e, c.gen, true
	}
	return cacheEntry{}, c.gen, false
}

// store writes e unless the cache was invalidated after gen was read.
func (c *ArticleCache) store(key string, gen uint64, e cacheEntry) bool {
	if c.ttl <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.entries[key] = e
	return true
}

// load runs fetch once per key across concurrent callers. The fetch is
// detached from any single caller's context, so one client going away does
// not fail the others; each caller still stops waiting when its own ctx ends.
func (c *ArticleCache) load(ctx context.Context, key string, fetch func(context.Context) (cacheEntry, error)) (cacheEntry, error) {
	ch := c.group.DoChan(key, func() (interface{}, error) {
		// re-check: another caller may have filled it while we queued
		e, gen, ok := c.lookup(key)
		if ok {
			return e, nil
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		e, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		e.fetched = time.Now()
		c.store(key, gen, e)
		return e, nil
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return cacheEntry{}, r.Err
		}
		return r.Val.(cacheEntry), nil
	case <-ctx.Done():
		return cacheEntry{}, ctx.Err()
	}
}

// Article returns the article matching sel, or nil when there is none or the
// CMS could not be read.
func (c *ArticleCache) Article(ctx context.Context, sel strapi.Selector) *strapi.Article {
	key := sel.String()
	if e, _, ok := c.lookup(key); ok {
		return e.article
	}
	e, err := c.load(ctx, key, func(fctx context.Context) (cacheEntry, error) {
		a, err := c.source.Article(fctx, sel)
		return cacheEntry{article: a}, err
	})
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Errorf("fetch article %q: %v", sel.Slug, err)
		}
		return nil
	}
	return e.article
}

// Articles returns every article, or an empty list when the CMS could not
// be read.
func (c *ArticleCache) Articles(ctx context.Context) []strapi.Article {
	if e, _, ok := c.lookup(listKey); ok {
		return e.articles
	}
	e, err := c.load(ctx, listKey, func(fctx context.Context) (cacheEntry, error) {
		articles, err := c.source.Articles(fctx)
		if articles == nil {
			articles = []strapi.Article{}
		}
		return cacheEntry{articles: articles}, err
	})
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Errorf("fetch articles: %v", err)
		}
		return []strapi.Article{}
	}
	return e.articles
}
