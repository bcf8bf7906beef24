// Package markdown converts the Markdown that Strapi's rich-text editor
// stores into HTML.
//
// It covers what that editor emits: headings, paragraphs, bullet and
// numbered lists, block quotes, fenced code, pipe tables, rules, and inline
// emphasis, code, links and images. Input text is always escaped; only the
// markup generated here is raw.
package markdown

import (
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	reBold             = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnderscore   = regexp.MustCompile(`__(.+?)__`)
	reItalic           = regexp.MustCompile(`\*([^*]+)\*`)
	reItalicUnderscore = regexp.MustCompile(`\b_([^_]+)_\b`)
	reStrike           = regexp.MustCompile(`~~(.+?)~~`)
	reInlineCode       = regexp.MustCompile("`([^`]+)`")
	reImg              = regexp.MustCompile(`!\[(.*?)\]\((\S*?)(?:\s+&#34;(.*?)&#34;)?\)`)
	reLink             = regexp.MustCompile(`\[(.*?)\]\((\S*?)\)`)
	reOrdered          = regexp.MustCompile(`^\d+[.)]\s`)
	reHeading          = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*$`)
)

// Converter turns Markdown into HTML. Relative image and link targets are
// resolved against BaseURL when it is set.
type Converter struct {
	BaseURL string
}

// ToHTML converts md with a zero Converter.
func ToHTML(md string) string {
	return Converter{}.ToHTML(md)
}

// block is the open block-level element, if any.
type block int

const (
	none block = iota
	para
	bullets
	numbers
	quote
	table
	code
)

type state struct {
	c     Converter
	out   strings.Builder
	open  block
	tbody bool
	brk   bool // previous paragraph line ended in two spaces
}

func (s *state) close() {
	switch s.open {
	case para:
		s.out.WriteString("</p>")
	case bullets:
		s.out.WriteString("</ul>")
	case numbers:
		s.out.WriteString("</ol>")
	case quote:
		s.out.WriteString("</p></blockquote>")
	case table:
		if s.tbody {
			s.out.WriteString("</tbody>")
		}
		s.out.WriteString("</table>")
		s.tbody = false
	case code:
		s.out.WriteString("</code></pre>")
	}
	s.open = none
	s.brk = false
}

// enter closes the current block unless it is already b, and reports
// whether b was newly opened.
func (s *state) enter(b block) bool {
	if s.open == b {
		return false
	}
	s.close()
	s.open = b
	return true
}

// ToHTML converts md.
func (c Converter) ToHTML(md string) string {
	s := &state{c: c}
	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			if s.open == code {
				s.close()
				continue
			}
			s.close()
			s.open = code
			if lang := strings.TrimSpace(trimmed[3:]); lang != "" {
				s.out.WriteString(`<pre><code class="language-` + html.EscapeString(lang) + `">`)
			} else {
				s.out.WriteString("<pre><code>")
			}
			continue
		}
		if s.open == code {
			s.out.WriteString(html.EscapeString(line))
			s.out.WriteByte('\n')
			continue
		}

		if trimmed == "" {
			s.close()
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			s.close()
			level := strconv.Itoa(len(m[1]))
			s.out.WriteString("<h" + level + ">" + s.inline(m[2]) + "</h" + level + ">")
			continue
		}

		switch {
		case isRule(trimmed):
			s.close()
			s.out.WriteString("<hr>")
		case strings.HasPrefix(trimmed, "|"):
			s.tableRow(trimmed)
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "+ "):
			if s.enter(bullets) {
				s.out.WriteString("<ul>")
			}
			s.out.WriteString("<li>" + s.inline(trimmed[2:]) + "</li>")
		case reOrdered.MatchString(trimmed):
			if s.enter(numbers) {
				s.out.WriteString("<ol>")
			}
			s.out.WriteString("<li>" + s.inline(reOrdered.ReplaceAllString(trimmed, "")) + "</li>")
		case strings.HasPrefix(trimmed, ">"):
			text := strings.TrimSpace(strings.TrimPrefix(trimmed, ">"))
			if s.enter(quote) {
				s.out.WriteString("<blockquote><p>")
			} else {
				s.out.WriteByte(' ')
			}
			s.out.WriteString(s.inline(text))
		default:
			if s.enter(para) {
				s.out.WriteString("<p>")
			} else if s.brk {
				s.out.WriteString("<br>")
			} else {
				s.out.WriteByte(' ')
			}
			s.out.WriteString(s.inline(trimmed))
			s.brk = strings.HasSuffix(line, "  ")
		}
	}
	s.close()
	return s.out.String()
}

func isRule(line string) bool {
	if len(line) < 3 {
		return false
	}
	ch := line[0]
	if ch != '-' && ch != '*' && ch != '_' {
		return false
	}
	for i := 0; i < len(line); i++ {
		if line[i] != ch && line[i] != ' ' {
			return false
		}
	}
	return true
}

func (s *state) tableRow(line string) {
	cells := splitCells(line)
	if s.enter(table) {
		s.out.WriteString("<table><thead><tr>")
		for _, cell := range cells {
			s.out.WriteString("<th>" + s.inline(cell) + "</th>")
		}
		s.out.WriteString("</tr></thead>")
		return
	}
	if !s.tbody {
		s.out.WriteString("<tbody>")
		s.tbody = true
		if isSeparator(cells) {
			return
		}
	}
	s.out.WriteString("<tr>")
	for _, cell := range cells {
		s.out.WriteString("<td>" + s.inline(cell) + "</td>")
	}
	s.out.WriteString("</tr>")
}

func splitCells(line string) []string {
	parts := strings.Split(strings.Trim(strings.TrimSpace(line), "|"), "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func isSeparator(cells []string) bool {
	for _, cell := range cells {
		if strings.Trim(cell, "-: ") != "" {
			return false
		}
	}
	return true
}

// inline escapes s and applies inline formatting.
func (s *state) inline(text string) string {
	escaped := html.EscapeString(text)

	// Code spans are parked behind placeholders so emphasis cannot reach them.
	var spans []string
	escaped = reInlineCode.ReplaceAllStringFunc(escaped, func(m string) string {
		spans = append(spans, "<code>"+reInlineCode.FindStringSubmatch(m)[1]+"</code>")
		return "\x00" + strconv.Itoa(len(spans)-1) + "\x00"
	})

	escaped = reImg.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reImg.FindStringSubmatch(m)
		src := s.c.safeURL(match[2])
		if src == "" {
			return match[1]
		}
		img := `<img src="` + src + `" alt="` + match[1] + `"`
		if match[3] != "" {
			img += ` title="` + match[3] + `"`
		}
		return img + ` loading="lazy">`
	})
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := s.c.safeURL(match[2])
		if href == "" {
			return match[1]
		}
		attrs := ""
		if strings.HasPrefix(href, "http") && !s.c.sameSite(href) {
			attrs = ` rel="noopener noreferrer" target="_blank"`
		}
		return `<a href="` + href + `"` + attrs + `>` + match[1] + `</a>`
	})

	escaped = outsideTags(escaped, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reBoldUnderscore.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reStrike.ReplaceAllString(seg, "<del>$1</del>")
		seg = reItalic.ReplaceAllString(seg, "<em>$1</em>")
		seg = reItalicUnderscore.ReplaceAllString(seg, "<em>$1</em>")
		return seg
	})

	for i, span := range spans {
		escaped = strings.Replace(escaped, "\x00"+strconv.Itoa(i)+"\x00", span, 1)
	}
	return escaped
}

// outsideTags applies fn to the text between HTML tags only, so formatting
// never rewrites attribute values.
func outsideTags(s string, fn func(string) string) string {
	var b strings.Builder
	for len(s) > 0 {
		lt := strings.IndexByte(s, '<')
		if lt < 0 {
			b.WriteString(fn(s))
			break
		}
		b.WriteString(fn(s[:lt]))
		gt := strings.IndexByte(s[lt:], '>')
		if gt < 0 {
			b.WriteString(s[lt:])
			break
		}
		b.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return b.String()
}

// safeURL returns an escaped attribute value for raw, or "" when the scheme
// is not allowed. raw arrives HTML-escaped.
func (c Converter) safeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	if strings.HasPrefix(val, "/") && !strings.HasPrefix(val, "//") {
		if c.BaseURL != "" && strings.HasPrefix(val, "/uploads/") {
			val = strings.TrimRight(c.BaseURL, "/") + val
		}
		return html.EscapeString(val)
	}
	if isRelative(val) {
		return html.EscapeString(val)
	}
	u, err := url.Parse(val)
	if err != nil || u.Scheme == "" {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	}
	return ""
}

// isRelative reports whether val is a path like "other-post/" or "?page=2":
// no colon before the first '/', '?' or '#', and not protocol-relative.
func isRelative(val string) bool {
	if strings.HasPrefix(val, "//") || strings.HasPrefix(val, `\`) {
		return false
	}
	head := val
	if i := strings.IndexAny(val, "/?#"); i >= 0 {
		head = val[:i]
	}
	return !strings.ContainsAny(head, ":\\")
}

func (c Converter) sameSite(href string) bool {
	if c.BaseURL == "" {
		return false
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return false
	}
	u, err := url.Parse(html.UnescapeString(href))
	return err == nil && u.Host == base.Host
}
