package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptMarkdown(t *testing.T) {
	md := PromptMarkdown(&domain.Prompt{
		Text:    "Personal or Business?",
		Buttons: []domain.Button{{Label: "Personal", Value: "personal"}, {Label: "Business", Value: "business"}},
	})
	assert.Equal(t, "Personal or Business?\n\n1. Personal\n2. Business\n", md)

	assert.Equal(t, "Contact?\n", PromptMarkdown(&domain.Prompt{Text: "Contact?"}))
}

func TestNewRenderer(t *testing.T) {
	out, err := NewRenderer()("**Hello**")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_____")
}
