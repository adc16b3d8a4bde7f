// Package render turns bot replies, which may contain basic markdown, into
// sanitized HTML for the web view and ANSI text for the terminal.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// HTML renders markdown to HTML that is safe to insert into the page.
type HTML struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewHTML returns an HTML renderer with GitHub-flavoured extensions.
func NewHTML() *HTML {
	return &HTML{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// Render converts text. Raw HTML in the input is stripped by the sanitizer.
func (h *HTML) Render(text string) (string, error) {
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return strings.TrimSpace(h.policy.Sanitize(buf.String())), nil
}

// Terminal renders markdown for an ANSI terminal.
type Terminal struct {
	mu sync.Mutex
	r  *glamour.TermRenderer
}

// NewTerminal returns a terminal renderer wrapping at width columns.
func NewTerminal(width int) (*Terminal, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("create terminal renderer: %w", err)
	}
	return &Terminal{r: r}, nil
}

// Render converts text, falling back to the raw text if rendering fails.
func (t *Terminal) Render(text string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out, err := t.r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
