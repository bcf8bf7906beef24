package strapi

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Dynamic zone component names.
const (
	KindRichText = "shared.rich-text"
	KindMedia    = "shared.media"
)

// Block is one entry of an article's dynamic zone. The set of implementations
// is closed: RichTextBlock, MediaBlock and UnknownBlock.
type Block interface {
	Kind() string
	block()
}

// RichTextBlock carries CMS-authored HTML. It is rendered verbatim, so the
// CMS authors are the trust boundary; sanitize on ingestion if that changes.
type RichTextBlock struct {
	BodyHTML string
}

// MediaBlock is a single image. Image is nil when the CMS sent the block
// without its media payload; Raw keeps the original block for diagnostics.
type MediaBlock struct {
	Image *ImageRef
	Raw   json.RawMessage
}

// UnknownBlock is any component this site has no renderer for.
type UnknownBlock struct {
	Name string
	Raw  json.RawMessage
}

func (RichTextBlock) Kind() string  { return KindRichText }
func (MediaBlock) Kind() string     { return KindMedia }
func (b UnknownBlock) Kind() string { return b.Name }

func (RichTextBlock) block() {}
func (MediaBlock) block()    {}
func (UnknownBlock) block()  {}

func (b RichTextBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind     string `json:"kind"`
		BodyHTML string `json:"bodyHtml"`
	}{b.Kind(), b.BodyHTML})
}

func (b MediaBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  string    `json:"kind"`
		Image *ImageRef `json:"image"`
	}{b.Kind(), b.Image})
}

func (b UnknownBlock) MarshalJSON() ([]byte, error) {
	raw := b.Raw
	if isNull(raw) {
		raw = json.RawMessage("null")
	}
	return json.Marshal(struct {
		Kind string          `json:"kind"`
		Raw  json.RawMessage `json:"rawPayload"`
	}{b.Kind(), raw})
}

// DecodeBlock converts one dynamic zone entry. It never fails: anything that
// cannot be read as a known component becomes an UnknownBlock.
func DecodeBlock(raw json.RawMessage, base string) Block {
	var head struct {
		Component string `json:"__component"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return UnknownBlock{Raw: raw}
	}
	name := strings.TrimSpace(head.Component)
	switch name {
	case KindRichText:
		var rt struct {
			Body string `json:"body"`
		}
		if err := json.Unmarshal(raw, &rt); err != nil {
			// v5 "blocks" editor output is structured JSON, not HTML.
			return UnknownBlock{Name: name, Raw: raw}
		}
		return RichTextBlock{BodyHTML: rt.Body}
	case KindMedia:
		var m struct {
			File json.RawMessage `json:"file"`
		}
		if err := json.Unmarshal(raw, &m); err != nil || !objectOrNull(m.File) {
			return UnknownBlock{Name: name, Raw: raw}
		}
		return MediaBlock{Image: decodeImage(m.File, base), Raw: raw}
	default:
		return UnknownBlock{Name: name, Raw: raw}
	}
}

// objectOrNull reports whether raw is absent, null or a JSON object.
func objectOrNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || raw[0] == '{' || isNull(raw)
}
