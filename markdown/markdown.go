// Package markdown converts stored post markdown to HTML at render time.
// The transform is pure and stateless; posts always keep their raw text.
package markdown

import (
	"context"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic     = regexp.MustCompile(`\*([^*]+)\*`)
	reInlineCode = regexp.MustCompile("`([^`]+)`")
	reImage      = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)
	reLink       = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	reOrdered    = regexp.MustCompile(`^\d+\.\s`)
)

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		Render(&b, md)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Render writes the HTML representation of md to b.
func Render(b *strings.Builder, md string) {
	inPara := false
	inList := false
	inOrdered := false
	inQuote := false
	inCode := false

	flushPara := func() {
		if inPara {
			b.WriteString("</p>")
			inPara = false
		}
	}
	flushList := func() {
		if inList {
			b.WriteString("</ul>")
			inList = false
		}
		if inOrdered {
			b.WriteString("</ol>")
			inOrdered = false
		}
	}
	flushQuote := func() {
		if inQuote {
			b.WriteString("</blockquote>")
			inQuote = false
		}
	}
	flushBlocks := func() {
		flushPara()
		flushList()
		flushQuote()
	}

	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, "\r")

		if strings.HasPrefix(line, "```") {
			if inCode {
				b.WriteString("</code></pre>")
				inCode = false
			} else {
				flushBlocks()
				b.WriteString("<pre><code>")
				inCode = true
			}
			continue
		}
		if inCode {
			b.WriteString(html.EscapeString(line))
			b.WriteString("\n")
			continue
		}

		if strings.TrimSpace(line) == "" {
			flushBlocks()
			continue
		}

		switch {
		case strings.HasPrefix(line, "---"):
			flushBlocks()
			b.WriteString("<hr/>")
		case strings.HasPrefix(line, "### "):
			flushBlocks()
			b.WriteString("<h3>" + FormatInline(strings.TrimSpace(line[4:])) + "</h3>")
		case strings.HasPrefix(line, "## "):
			flushBlocks()
			b.WriteString("<h2>" + FormatInline(strings.TrimSpace(line[3:])) + "</h2>")
		case strings.HasPrefix(line, "# "):
			flushBlocks()
			b.WriteString("<h1>" + FormatInline(strings.TrimSpace(line[2:])) + "</h1>")
		case strings.HasPrefix(line, "> "):
			flushPara()
			flushList()
			if !inQuote {
				b.WriteString("<blockquote>")
				inQuote = true
			}
			b.WriteString("<p>" + FormatInline(strings.TrimSpace(line[2:])) + "</p>")
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			flushPara()
			flushQuote()
			if inOrdered {
				b.WriteString("</ol>")
				inOrdered = false
			}
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			b.WriteString("<li>" + FormatInline(strings.TrimSpace(line[2:])) + "</li>")
		case reOrdered.MatchString(line):
			flushPara()
			flushQuote()
			if inList {
				b.WriteString("</ul>")
				inList = false
			}
			if !inOrdered {
				b.WriteString("<ol>")
				inOrdered = true
			}
			item := reOrdered.ReplaceAllString(line, "")
			b.WriteString("<li>" + FormatInline(strings.TrimSpace(item)) + "</li>")
		default:
			flushList()
			flushQuote()
			if !inPara {
				b.WriteString("<p>")
				inPara = true
			} else {
				b.WriteString(" ")
			}
			b.WriteString(FormatInline(line))
		}
	}
	if inCode {
		b.WriteString("</code></pre>")
	}
	flushBlocks()
}

// FormatInline applies inline markdown (code, images, links, bold, italic)
// to a single line. Text is escaped before markup is substituted.
func FormatInline(s string) string {
	s = html.EscapeString(s)
	s = reInlineCode.ReplaceAllString(s, "<code>$1</code>")
	s = reImage.ReplaceAllString(s, `<img src="$2" alt="$1"/>`)
	s = reLink.ReplaceAllString(s, `<a href="$2">$1</a>`)
	s = reBold.ReplaceAllString(s, "<strong>$1</strong>")
	s = reItalic.ReplaceAllString(s, "<em>$1</em>")
	return s
}
