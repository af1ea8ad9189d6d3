package renderer

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Terminal renders markdown for a terminal of the given width. style is a
// glamour standard style name ("dark", "light", "notty"...) or "auto".
func Terminal(markdown string, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("cannot create terminal renderer: %w", err)
	}
	return r.Render(markdown)
}

var gfm = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts markdown, tables included, to an HTML fragment.
func HTML(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := gfm.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("cannot convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}
