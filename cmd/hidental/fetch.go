package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/hidental/blog/strapi"
)

// newClient logs to stderr so stdout stays valid JSON.
func newClient() *strapi.Client {
	logger := log.New("strapi")
	logger.SetOutput(os.Stderr)
	return strapi.NewClient(strapi.ConfigFromEnv(), strapi.WithLogger(logger))
}

// runFetch prints one article. Unlike the site, the CLI reports CMS errors
// instead of degrading to an empty result.
func runFetch(w io.Writer, slug string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sel := strapi.Latest()
	if slug != "" {
		sel = strapi.BySlug(slug)
	}
	a, err := newClient().Article(ctx, sel)
	if err != nil {
		return err
	}
	if a == nil {
		if slug == "" {
			return fmt.Errorf("no articles")
		}
		return fmt.Errorf("no article with slug %q", slug)
	}
	return writeJSON(w, a)
}

func runList(w io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	articles, err := newClient().Articles(ctx)
	if err != nil {
		return err
	}
	return writeJSON(w, articles)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
