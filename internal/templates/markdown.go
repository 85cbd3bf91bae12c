package templates

import (
	"bytes"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// highlightStyle is the chroma style used for fenced code blocks.
const highlightStyle = "github"

// markdownConverter converts Markdown payload fields to HTML fragments
// for the "markdown" template function (free-form notes, terms, remarks).
type markdownConverter struct {
	md goldmark.Markdown
}

// newMarkdownConverter creates a converter with GFM extensions and
// chroma-backed syntax highlighting.
func newMarkdownConverter() *markdownConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // Tables, strikethrough, autolinks, task lists
			highlighting.NewHighlighting(
				highlighting.WithStyle(highlightStyle),
				highlighting.WithFormatOptions(
					// Inline styles: the fragment must survive PDF
					// rendering without a stylesheet.
					chromahtml.WithClasses(false),
					chromahtml.TabWidth(2),
				),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(), // Treat newlines as <br>
			html.WithXHTML(),     // Self-closing tags
		),
	)
	return &markdownConverter{md: md}
}

// toHTML converts Markdown content to an HTML fragment.
// Unlike a standalone document converter it emits no <html> wrapper:
// the fragment lands inside an already-structured template.
func (c *markdownConverter) toHTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
