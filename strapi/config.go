package strapi

import (
	"os"
	"strings"
)

// DefaultBaseURL is used when no base URL variable is set.
const DefaultBaseURL = "https://cms.hidental.com"

// Environment variables consulted for the CMS base URL and API token, in
// precedence order. The lowercase names are legacy deployments.
var (
	BaseURLEnv  = []string{"NEXT_PUBLIC_STRAPI_URL", "strapi_url", "STRAPI_URL"}
	APITokenEnv = []string{"STRAPI_API_TOKEN", "strapi_api"}
)

// Config holds the CMS connection settings. Build it once at startup and pass
// it to NewClient.
type Config struct {
	BaseURL  string // no trailing slash
	APIToken string // empty means unauthenticated requests
}

// NewConfig returns a Config with the base URL normalized. An empty baseURL
// falls back to DefaultBaseURL.
func NewConfig(baseURL, apiToken string) Config {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Config{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIToken: strings.TrimSpace(apiToken),
	}
}

// ConfigFromEnv reads the CMS settings from the process environment.
func ConfigFromEnv() Config {
	return ConfigFromLookup(os.Getenv)
}

// ConfigFromLookup builds a Config using lookup in place of os.Getenv.
func ConfigFromLookup(lookup func(string) string) Config {
	return NewConfig(firstEnv(lookup, BaseURLEnv), firstEnv(lookup, APITokenEnv))
}

func firstEnv(lookup func(string) string, keys []string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(lookup(k)); v != "" {
			return v
		}
	}
	return ""
}

// Authenticated reports whether requests carry a bearer token.
func (c Config) Authenticated() bool {
	return c.APIToken != ""
}
