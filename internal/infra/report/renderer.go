package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/russross/blackfriday/v2"
	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
	"github.com/tharunkumardeveloper/truthlensai/internal/domain/port"
)

const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

type MarkdownRenderer struct{}

func (MarkdownRenderer) Extension() string   { return ".md" }
func (MarkdownRenderer) ContentType() string { return "text/markdown; charset=utf-8" }

func (MarkdownRenderer) Render(w io.Writer, r entity.Report) error {
	_, err := io.WriteString(w, Markdown(r))
	return err
}

// Markdown lays the report out as a single markdown document.
func Markdown(r entity.Report) string {
	return layout(r, func(s string) string { return s })
}

// layout writes every report string through esc so callers can neutralise
// user-supplied text such as display names.
func layout(r entity.Report, esc func(string) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", esc(r.Title))
	if r.Subtitle != "" {
		fmt.Fprintf(&b, "## %s\n\n", esc(r.Subtitle))
	}
	for _, s := range r.Sections {
		fmt.Fprintf(&b, "### %s\n\n", esc(s.Heading))
		for _, line := range s.Lines {
			if s.Bullets {
				fmt.Fprintf(&b, "- %s\n", esc(line))
			} else {
				fmt.Fprintf(&b, "%s  \n", esc(line))
			}
		}
		b.WriteString("\n")
	}
	if len(r.Footer) > 0 {
		b.WriteString("---\n\n")
		for _, line := range r.Footer {
			fmt.Fprintf(&b, "%s  \n", esc(line))
		}
	}
	return b.String()
}

type HTMLRenderer struct{}

func (HTMLRenderer) Extension() string   { return ".html" }
func (HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

// htmlFlags drop raw HTML blocks and defang non-http link targets on top of
// the usual typographic rendering.
const htmlFlags = blackfriday.CommonHTMLFlags | blackfriday.SkipHTML | blackfriday.Safelink

func (HTMLRenderer) Render(w io.Writer, r entity.Report) error {
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{Flags: htmlFlags})
	body := blackfriday.Run([]byte(layout(r, html.EscapeString)), blackfriday.WithRenderer(renderer))

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(r.FileBase))
	buf.WriteString("</head>\n<body>\n")
	buf.Write(body)
	buf.WriteString("</body>\n</html>\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// ForFormats resolves format names to renderers, in order and without duplicates.
func ForFormats(formats []string) ([]port.ReportRenderer, error) {
	seen := make(map[string]bool)
	renderers := make([]port.ReportRenderer, 0, len(formats))
	for _, f := range formats {
		name := strings.ToLower(strings.TrimSpace(f))
		if name == "md" {
			name = FormatMarkdown
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		switch name {
		case FormatMarkdown:
			renderers = append(renderers, MarkdownRenderer{})
		case FormatHTML:
			renderers = append(renderers, HTMLRenderer{})
		default:
			return nil, fmt.Errorf("unknown report format %q", f)
		}
	}
	if len(renderers) == 0 {
		return nil, fmt.Errorf("no report formats configured")
	}
	return renderers, nil
}
