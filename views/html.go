package views

import (
	"bytes"
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// page accumulates one response body.
type page struct {
	bytes.Buffer
}

func (p *page) raw(parts ...string) {
	for _, s := range parts {
		p.WriteString(s)
	}
}

func (p *page) text(s string) {
	p.WriteString(templ.EscapeString(s))
}

// attr writes ` name="value"` with value escaped.
func (p *page) attr(name, value string) {
	p.raw(" ", name, `="`)
	p.text(value)
	p.WriteByte('"')
}

// href writes a sanitized URL attribute.
func (p *page) href(name, u string) {
	p.attr(name, string(templ.URL(u)))
}

func (p *page) num(name string, n int) {
	p.raw(" ", name, `="`, strconv.Itoa(n), `"`)
}

func (p *page) img(src, alt string, width, height int, class string) {
	p.raw("<img")
	p.href("src", src)
	p.attr("alt", alt)
	if width > 0 {
		p.num("width", width)
	}
	if height > 0 {
		p.num("height", height)
	}
	if class != "" {
		p.attr("class", class)
	}
	p.raw(` loading="lazy">`)
}

func (p *page) csrf(token string) {
	p.raw(`<input type="hidden" name="_csrf"`)
	p.attr("value", token)
	p.raw(">")
}

func (p *page) render(ctx context.Context, c templ.Component) error {
	return c.Render(ctx, &p.Buffer)
}

// component buffers fn's output and writes it in one go.
func component(fn func(ctx context.Context, p *page) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var p page
		if err := fn(ctx, &p); err != nil {
			return err
		}
		_, err := w.Write(p.Bytes())
		return err
	})
}
