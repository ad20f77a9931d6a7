package markdown

import (
	"strings"
	"testing"
)

func TestFormatInlineBold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"text **bold** more", "text <strong>bold</strong> more"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input)
		if got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineItalic(t *testing.T) {
	got := FormatInline("*italic*")
	if got != "<em>italic</em>" {
		t.Errorf("FormatInline(*italic*) = %q", got)
	}
}

func TestFormatInlineCode(t *testing.T) {
	got := FormatInline("use `go test` here")
	if got != "use <code>go test</code> here" {
		t.Errorf("FormatInline = %q", got)
	}
}

func TestFormatInlineLink(t *testing.T) {
	got := FormatInline("[home](/)")
	if got != `<a href="/">home</a>` {
		t.Errorf("FormatInline = %q", got)
	}
}

func TestFormatInlineImage(t *testing.T) {
	got := FormatInline("![alt text](/image/abc)")
	if got != `<img src="/image/abc" alt="alt text"/>` {
		t.Errorf("FormatInline = %q", got)
	}
}

func TestFormatInlineEscapesHTML(t *testing.T) {
	got := FormatInline("<script>alert(1)</script>")
	if strings.Contains(got, "<script>") {
		t.Errorf("raw html not escaped: %q", got)
	}
}

func TestRenderHeadings(t *testing.T) {
	var b strings.Builder
	Render(&b, "# Title\n\n## Sub\n\n### Deep")
	got := b.String()
	for _, want := range []string{"<h1>Title</h1>", "<h2>Sub</h2>", "<h3>Deep</h3>"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

func TestRenderParagraphJoinsLines(t *testing.T) {
	var b strings.Builder
	Render(&b, "first line\nsecond line")
	got := b.String()
	if got != "<p>first line second line</p>" {
		t.Errorf("Render = %q", got)
	}
}

func TestRenderLists(t *testing.T) {
	var b strings.Builder
	Render(&b, "- one\n- two\n\n1. first\n2. second")
	got := b.String()
	if !strings.Contains(got, "<ul><li>one</li><li>two</li></ul>") {
		t.Errorf("unordered list wrong: %q", got)
	}
	if !strings.Contains(got, "<ol><li>first</li><li>second</li></ol>") {
		t.Errorf("ordered list wrong: %q", got)
	}
}

func TestRenderCodeBlock(t *testing.T) {
	var b strings.Builder
	Render(&b, "```\nfmt.Println(\"<hi>\")\n```")
	got := b.String()
	if !strings.Contains(got, "<pre><code>") {
		t.Fatalf("missing code block: %q", got)
	}
	if strings.Contains(got, "<hi>") {
		t.Errorf("code content not escaped: %q", got)
	}
}

func TestRenderBlockquote(t *testing.T) {
	var b strings.Builder
	Render(&b, "> quoted")
	got := b.String()
	if got != "<blockquote><p>quoted</p></blockquote>" {
		t.Errorf("Render = %q", got)
	}
}

func TestRenderUnterminatedCodeBlock(t *testing.T) {
	var b strings.Builder
	Render(&b, "```\nno closing fence")
	got := b.String()
	if !strings.HasSuffix(got, "</code></pre>") {
		t.Errorf("unterminated block not closed: %q", got)
	}
}
