package strapi

import (
	"encoding/json"
	"strings"
)

// ImageRef is a CMS media file. URL is always absolute once normalized.
type ImageRef struct {
	URL     string              `json:"url"`
	Width   int                 `json:"width,omitempty"`
	Height  int                 `json:"height,omitempty"`
	AltText string              `json:"altText,omitempty"`
	Formats map[string]ImageRef `json:"formats,omitempty"`
}

// Variant returns the named size variant ("large", "medium", ...) or the
// image itself when the CMS did not generate one.
func (img ImageRef) Variant(name string) ImageRef {
	if v, ok := img.Formats[name]; ok && v.URL != "" {
		return v
	}
	return img
}

// ResolveURL makes u absolute. URLs starting with "http" are returned as is;
// anything else is treated as relative to base. A path without a leading slash
// gets one, rather than being glued onto the host as plain {base}{u}.
func ResolveURL(base, u string) string {
	u = strings.TrimSpace(u)
	if u == "" || strings.HasPrefix(u, "http") {
		return u
	}
	base = strings.TrimRight(base, "/")
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return base + u
}

type rawImage struct {
	URL             string                     `json:"url"`
	Width           int                        `json:"width"`
	Height          int                        `json:"height"`
	AlternativeText string                     `json:"alternativeText"`
	Formats         map[string]json.RawMessage `json:"formats"`
}

// decodeImage reads a media field in either shape (bare object or
// {data: {attributes}}) and returns nil when it is absent or has no URL.
func decodeImage(raw json.RawMessage, base string) *ImageRef {
	raw = unwrapEntity(raw)
	if raw == nil {
		return nil
	}
	var ri rawImage
	if err := json.Unmarshal(raw, &ri); err != nil || strings.TrimSpace(ri.URL) == "" {
		return nil
	}
	img := &ImageRef{
		URL:     ResolveURL(base, ri.URL),
		Width:   ri.Width,
		Height:  ri.Height,
		AltText: ri.AlternativeText,
	}
	for name, f := range ri.Formats {
		v := decodeImage(f, base)
		if v == nil {
			continue
		}
		if img.Formats == nil {
			img.Formats = make(map[string]ImageRef)
		}
		img.Formats[name] = *v
	}
	return img
}
