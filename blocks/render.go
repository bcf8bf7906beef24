// Package blocks renders an article's dynamic zone as templ components.
package blocks

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/hidental/blog/markdown"
	"github.com/hidental/blog/strapi"
)

// Defaults applied to media blocks when the CMS omits them.
const (
	DefaultMediaWidth  = 856
	DefaultMediaHeight = 540
	DefaultMediaAlt    = "blog-inner-image"
)

// MissingMediaPolicy decides what happens to a media block whose file
// payload is absent.
type MissingMediaPolicy int

const (
	// SkipMissingMedia drops the block without output.
	SkipMissingMedia MissingMediaPolicy = iota
	// DiagnoseMissingMedia renders the same diagnostic as an unknown block.
	DiagnoseMissingMedia
)

// ParseMissingMediaPolicy maps "skip" and "diagnose" to a policy. Anything
// else yields SkipMissingMedia.
func ParseMissingMediaPolicy(s string) MissingMediaPolicy {
	if s == "diagnose" {
		return DiagnoseMissingMedia
	}
	return SkipMissingMedia
}

// RichTextFormat is how a rich-text body is stored in the CMS.
type RichTextFormat int

const (
	// HTMLRichText bodies are injected as they are.
	HTMLRichText RichTextFormat = iota
	// MarkdownRichText bodies are converted from Markdown.
	MarkdownRichText
	// AutoRichText treats a body starting with a tag as HTML and anything
	// else as Markdown.
	AutoRichText
)

// ParseRichTextFormat maps "html", "markdown" and "auto". Anything else
// yields HTMLRichText.
func ParseRichTextFormat(s string) RichTextFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return MarkdownRichText
	case "auto":
		return AutoRichText
	}
	return HTMLRichText
}

// Node is one rendered block. Key is the block's index in the input and is
// unique within a Render call.
type Node struct {
	Key       int
	Kind      string
	Component templ.Component
}

// Renderer turns blocks into nodes. BaseURL resolves /uploads/ paths found
// in Markdown bodies.
type Renderer struct {
	MissingMedia MissingMediaPolicy
	RichText     RichTextFormat
	BaseURL      string
}

// BodyHTML returns the HTML for a rich-text block in the configured format.
func (r Renderer) BodyHTML(b strapi.RichTextBlock) string {
	switch r.RichText {
	case MarkdownRichText:
		return markdown.Converter{BaseURL: r.BaseURL}.ToHTML(b.BodyHTML)
	case AutoRichText:
		if strings.HasPrefix(strings.TrimSpace(b.BodyHTML), "<") {
			return b.BodyHTML
		}
		return markdown.Converter{BaseURL: r.BaseURL}.ToHTML(b.BodyHTML)
	}
	return b.BodyHTML
}

// Render returns one node per renderable block, in input order. A nil or
// empty input yields an empty slice.
func (r Renderer) Render(blocks []strapi.Block) []Node {
	nodes := make([]Node, 0, len(blocks))
	for i, b := range blocks {
		var cmp templ.Component
		switch b := b.(type) {
		case strapi.RichTextBlock:
			cmp = RichText(r.BodyHTML(b))
		case strapi.MediaBlock:
			if b.Image == nil {
				if r.MissingMedia == SkipMissingMedia {
					continue
				}
				cmp = Diagnostic(b.Kind(), b.Raw)
				break
			}
			cmp = Media(*b.Image)
		case strapi.UnknownBlock:
			cmp = Diagnostic(b.Kind(), b.Raw)
		default:
			continue
		}
		nodes = append(nodes, Node{Key: i, Kind: b.Kind(), Component: cmp})
	}
	return nodes
}

// Render uses the default Renderer.
func Render(blocks []strapi.Block) []Node {
	return Renderer{}.Render(blocks)
}

// Join renders nodes one after another.
func Join(nodes []Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, n := range nodes {
			if err := n.Component.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// RichText injects body unescaped.
func RichText(body string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<div class="prose post-block">`)
		buf.WriteString(body)
		buf.WriteString(`</div>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Media renders an inline image with size and alt defaults.
func Media(img strapi.ImageRef) templ.Component {
	width, height, alt := img.Width, img.Height, img.AltText
	if width <= 0 {
		width = DefaultMediaWidth
	}
	if height <= 0 {
		height = DefaultMediaHeight
	}
	if alt == "" {
		alt = DefaultMediaAlt
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<div class="post-block post-media"><img src="`)
		buf.WriteString(templ.EscapeString(string(templ.URL(img.URL))))
		buf.WriteString(`" alt="`)
		buf.WriteString(templ.EscapeString(alt))
		buf.WriteString(`" width="`)
		buf.WriteString(strconv.Itoa(width))
		buf.WriteString(`" height="`)
		buf.WriteString(strconv.Itoa(height))
		buf.WriteString(`" loading="lazy"></div>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Diagnostic shows an unrenderable block's kind and its raw payload, so
// unmapped content types are visible on the page instead of dropped.
func Diagnostic(kind string, raw json.RawMessage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<div class="block-unsupported" data-block-kind="`)
		buf.WriteString(templ.EscapeString(kind))
		buf.WriteString(`"><p>Unsupported block type: <span class="block-kind">`)
		buf.WriteString(templ.EscapeString(kind))
		buf.WriteString(`</span></p><pre>`)
		buf.WriteString(templ.EscapeString(prettyJSON(raw)))
		buf.WriteString(`</pre></div>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func prettyJSON(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "null"
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return string(raw)
	}
	return out.String()
}
