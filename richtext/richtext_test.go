package richtext

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestFormatSpans(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		spans    []Span
		expected string
	}{
		{"plain", "hello", nil, "hello"},
		{"escapes", "<b>&</b>", nil, "&lt;b&gt;&amp;&lt;/b&gt;"},
		{"strong", "hello world", []Span{{Start: 0, End: 5, Type: SpanStrong}}, "<strong>hello</strong> world"},
		{"em at end", "hello world", []Span{{Start: 6, End: 11, Type: SpanEm}}, "hello <em>world</em>"},
		{"nested", "abcdef", []Span{{Start: 2, End: 4, Type: SpanEm}, {Start: 0, End: 6, Type: SpanStrong}}, "<strong>ab<em>cd</em>ef</strong>"},
		{"overlap", "abcdef", []Span{{Start: 0, End: 4, Type: SpanStrong}, {Start: 2, End: 6, Type: SpanEm}}, "<strong>ab<em>cd</em></strong><em>ef</em>"},
		{"newline", "a\nb", nil, "a<br/>b"},
		{"out of range ignored", "abc", []Span{{Start: 1, End: 10, Type: SpanStrong}}, "abc"},
		{"unknown type ignored", "abc", []Span{{Start: 0, End: 1, Type: "label"}}, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatSpans(tt.text, tt.spans)
			if got != tt.expected {
				t.Errorf("FormatSpans(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestFormatSpansCountsUTF16Units(t *testing.T) {
	// The rocket is a surrogate pair: two UTF-16 units.
	got := FormatSpans("🚀 go", []Span{{Start: 3, End: 5, Type: SpanStrong}})
	if got != "🚀 <strong>go</strong>" {
		t.Errorf("got %q", got)
	}
}

func TestFormatSpansHyperlink(t *testing.T) {
	link := Span{Start: 0, End: 4, Type: SpanHyperlink, Data: &SpanData{LinkType: "Web", URL: "https://example.com/?a=1&b=2", Target: "_blank"}}
	got := FormatSpans("docs here", []Span{link})
	want := `<a href="https://example.com/?a=1&amp;b=2" target="_blank" rel="noopener noreferrer">docs</a> here`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	evil := Span{Start: 0, End: 4, Type: SpanHyperlink, Data: &SpanData{URL: "javascript:alert(1)"}}
	if got := FormatSpans("docs", []Span{evil}); got != "docs" {
		t.Errorf("unsafe link should render as text, got %q", got)
	}
}

func TestRenderGroupsListItems(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, []Block{
		{Type: "heading2", Text: "Title"},
		{Type: TypeListItem, Text: "one"},
		{Type: TypeListItem, Text: "two"},
		{Type: TypeOListItem, Text: "first"},
		{Type: TypeParagraph, Text: "after"},
	})
	want := "<h2>Title</h2><ul><li>one</li><li>two</li></ul><ol><li>first</li></ol><p>after</p>"
	if buf.String() != want {
		t.Errorf("Render = %q, want %q", buf.String(), want)
	}
}

func TestRenderPreformattedAndImage(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, []Block{
		{Type: TypePreformatted, Text: "if a < b {}"},
		{Type: TypeImage, URL: "https://images.example.com/a.png", Alt: `a "quoted" alt`},
		{Type: TypeImage, URL: "data:text/html,hi"},
		{Type: "embed", Text: "ignored"},
	})
	out := buf.String()
	if !strings.Contains(out, "<pre>if a &lt; b {}</pre>") {
		t.Errorf("missing escaped preformatted block: %q", out)
	}
	if !strings.Contains(out, `src="https://images.example.com/a.png" alt="a &#34;quoted&#34; alt"`) {
		t.Errorf("missing image: %q", out)
	}
	if strings.Count(out, "<img") != 1 {
		t.Errorf("unsafe image should be dropped: %q", out)
	}
	if strings.Contains(out, "ignored") {
		t.Errorf("unknown block type should be skipped: %q", out)
	}
}

func TestHeadingLevel(t *testing.T) {
	tests := map[string]int{"heading1": 1, "heading6": 6, "heading7": 0, "heading": 0, "paragraph": 0}
	for in, want := range tests {
		if got := headingLevel(in); got != want {
			t.Errorf("headingLevel(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	err := Component([]Block{{Type: TypeParagraph, Text: "hi"}}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if buf.String() != "<p>hi</p>" {
		t.Errorf("got %q", buf.String())
	}
}

func TestText(t *testing.T) {
	got := Text([]Block{{Text: "a"}, {Type: TypeImage}, {Text: "b"}})
	if got != "a\nb" {
		t.Errorf("Text = %q", got)
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/relative", "/relative"},
		{"#anchor", "#anchor"},
		{"https://example.com", "https://example.com"},
		{"mailto:a@b.c", "mailto:a@b.c"},
		{"javascript:alert(1)", ""},
		{"example.com", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.input); got != tt.expected {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
