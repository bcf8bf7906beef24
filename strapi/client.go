package strapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/gommon/log"
)

// Logger is the subset of echo.Logger the client writes to.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// Client reads articles from the CMS REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client (10s timeout).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets where non-2xx responses are logged.
func WithLogger(l Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient returns a Client for cfg.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	c := &Client{
		cfg:        NewConfig(cfg.BaseURL, cfg.APIToken),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log.New("strapi"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the normalized configuration the client was built with.
func (c *Client) Config() Config {
	return c.cfg
}

// Article fetches the article matching sel. It returns (nil, nil) when the
// CMS has no matching article.
func (c *Client) Article(ctx context.Context, sel Selector) (*Article, error) {
	items, err := c.get(ctx, sel.Query())
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	a, ok := Normalize(items[0], c.cfg.BaseURL)
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// Articles fetches every article. Items that are not article objects are
// dropped.
func (c *Client) Articles(ctx context.Context) ([]Article, error) {
	items, err := c.get(ctx, listQuery)
	if err != nil {
		return nil, err
	}
	articles := make([]Article, 0, len(items))
	for _, item := range items {
		if a, ok := Normalize(item, c.cfg.BaseURL); ok {
			articles = append(articles, a)
		}
	}
	return articles, nil
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) get(ctx context.Context, query string) ([]json.RawMessage, error) {
	u := c.cfg.BaseURL + articlesPath + "?" + query
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("strapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Authenticated() {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: u, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Errorf("strapi fetch error: %d %s", resp.StatusCode, truncate(string(body), 2048))
		return nil, &HTTPError{URL: u, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &ParseError{URL: u, Err: err}
	}
	if isNull(env.Data) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(env.Data, &items); err != nil {
		// single-type style responses put one object in data
		items = []json.RawMessage{env.Data}
	}
	return items, nil
}
