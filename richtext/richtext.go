// Package richtext renders structured rich-text blocks, as delivered by the
// CMS, to HTML. The result is available as a templ component.
package richtext

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/a-h/templ"
)

// Block types understood by Render. Unknown types are skipped.
const (
	TypeParagraph    = "paragraph"
	TypePreformatted = "preformatted"
	TypeListItem     = "list-item"
	TypeOListItem    = "o-list-item"
	TypeImage        = "image"
)

// Span types understood by Render.
const (
	SpanStrong    = "strong"
	SpanEm        = "em"
	SpanHyperlink = "hyperlink"
)

// Block is one rich-text node. Text offsets in Spans count UTF-16 code units.
type Block struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Spans []Span `json:"spans"`
	URL   string `json:"url,omitempty"`
	Alt   string `json:"alt,omitempty"`
}

// Span marks a formatted range of a block's text.
type Span struct {
	Start int       `json:"start"`
	End   int       `json:"end"`
	Type  string    `json:"type"`
	Data  *SpanData `json:"data,omitempty"`
}

// SpanData carries hyperlink targets.
type SpanData struct {
	LinkType string `json:"link_type"`
	URL      string `json:"url"`
	Target   string `json:"target"`
}

// Component returns a templ.Component that renders blocks as HTML.
func Component(blocks []Block) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, blocks)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Render writes the HTML representation of blocks to buf. Consecutive list
// items are grouped into a single list.
func Render(buf *bytes.Buffer, blocks []Block) {
	inList := false
	inOrderedList := false

	flushList := func() {
		if inList {
			buf.WriteString("</ul>")
			inList = false
		}
	}
	flushOrderedList := func() {
		if inOrderedList {
			buf.WriteString("</ol>")
			inOrderedList = false
		}
	}

	for _, b := range blocks {
		switch {
		case b.Type == TypeListItem:
			flushOrderedList()
			if !inList {
				buf.WriteString("<ul>")
				inList = true
			}
			buf.WriteString("<li>")
			buf.WriteString(FormatSpans(b.Text, b.Spans))
			buf.WriteString("</li>")
		case b.Type == TypeOListItem:
			flushList()
			if !inOrderedList {
				buf.WriteString("<ol>")
				inOrderedList = true
			}
			buf.WriteString("<li>")
			buf.WriteString(FormatSpans(b.Text, b.Spans))
			buf.WriteString("</li>")
		case b.Type == TypeParagraph:
			flushList()
			flushOrderedList()
			buf.WriteString("<p>")
			buf.WriteString(FormatSpans(b.Text, b.Spans))
			buf.WriteString("</p>")
		case b.Type == TypePreformatted:
			flushList()
			flushOrderedList()
			buf.WriteString("<pre>")
			buf.WriteString(html.EscapeString(b.Text))
			buf.WriteString("</pre>")
		case headingLevel(b.Type) > 0:
			flushList()
			flushOrderedList()
			tag := "h" + string(rune('0'+headingLevel(b.Type)))
			buf.WriteString("<" + tag + ">")
			buf.WriteString(FormatSpans(b.Text, b.Spans))
			buf.WriteString("</" + tag + ">")
		case b.Type == TypeImage:
			flushList()
			flushOrderedList()
			src := SafeURL(b.URL)
			if src == "" {
				continue
			}
			buf.WriteString(`<img loading="lazy" decoding="async" src="` + src + `" alt="` + html.EscapeString(b.Alt) + `"/>`)
		}
	}
	flushList()
	flushOrderedList()
}

// Text returns the plain text of blocks joined by newlines.
func Text(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func headingLevel(t string) int {
	if len(t) == len("heading1") && strings.HasPrefix(t, "heading") {
		if n := int(t[7] - '0'); n >= 1 && n <= 6 {
			return n
		}
	}
	return 0
}

// FormatSpans escapes text and wraps the span ranges in their inline tags.
// Overlapping spans are closed and reopened so the output stays well formed.
func FormatSpans(text string, spans []Span) string {
	units := utf16.Encode([]rune(text))
	valid := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Start < 0 || s.End > len(units) || s.Start >= s.End || openTag(s) == "" {
			continue
		}
		valid = append(valid, s)
	}
	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].Start != valid[j].Start {
			return valid[i].Start < valid[j].Start
		}
		return valid[i].End > valid[j].End
	})

	var b strings.Builder
	var open []Span
	closeAt := func(pos int) {
		for {
			idx := -1
			for j := len(open) - 1; j >= 0; j-- {
				if open[j].End <= pos {
					idx = j
					break
				}
			}
			if idx < 0 {
				return
			}
			reopen := append([]Span(nil), open[idx+1:]...)
			for k := len(open) - 1; k >= idx; k-- {
				b.WriteString(closeTag(open[k]))
			}
			open = open[:idx]
			for _, s := range reopen {
				if s.End > pos {
					b.WriteString(openTag(s))
					open = append(open, s)
				}
			}
		}
	}

	next := 0
	for i := 0; i <= len(units); {
		closeAt(i)
		for next < len(valid) && valid[next].Start <= i {
			b.WriteString(openTag(valid[next]))
			open = append(open, valid[next])
			next++
		}
		if i == len(units) {
			break
		}
		width := 1
		r := rune(units[i])
		if utf16.IsSurrogate(r) && i+1 < len(units) {
			r = utf16.DecodeRune(r, rune(units[i+1]))
			width = 2
		}
		if r == '\n' {
			b.WriteString("<br/>")
		} else {
			b.WriteString(html.EscapeString(string(r)))
		}
		i += width
	}
	return b.String()
}

func openTag(s Span) string {
	switch s.Type {
	case SpanStrong:
		return "<strong>"
	case SpanEm:
		return "<em>"
	case SpanHyperlink:
		if s.Data == nil {
			return ""
		}
		href := SafeURL(s.Data.URL)
		if href == "" {
			return ""
		}
		attrs := ""
		if s.Data.Target == "_blank" {
			attrs = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>`
	}
	return ""
}

func closeTag(s Span) string {
	switch s.Type {
	case SpanStrong:
		return "</strong>"
	case SpanEm:
		return "</em>"
	case SpanHyperlink:
		return "</a>"
	}
	return ""
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
