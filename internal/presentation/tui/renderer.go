package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// Renderer turns wizard prompts into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a function that renders markdown using glamour.
// Falls back to plain text if the terminal renderer cannot be created.
func NewRenderer() Renderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return PlainRenderer
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// PlainRenderer returns the markdown untouched, for pipes and tests.
func PlainRenderer(markdown string) (string, error) {
	return markdown, nil
}

// PromptMarkdown formats a prompt with its buttons as a numbered list.
func PromptMarkdown(p *domain.Prompt) string {
	var sb strings.Builder
	sb.WriteString(p.Text)
	sb.WriteString("\n")
	if len(p.Buttons) > 0 {
		sb.WriteString("\n")
		for i, b := range p.Buttons {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, b.Label)
		}
	}
	return sb.String()
}
