package dsl

import (
	"testing"

	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/aretw0/leadwizard/pkg/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	// 1. Build the flow using DSL
	b := New()

	b.Add("start").
		Text("Personal or Business?").
		SaveTo("coverage_category").
		Button("Personal", "personal", "ask_type").
		Button("Business", "business", "collect_contact")

	b.Add("ask_type").
		Text("What type?").
		SaveTo("quote_type").
		Button("Auto", "auto", "collect_contact")

	b.Add("collect_contact").
		Text("How can we reach you?")

	// 2. Compile to Store
	store, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 3, store.Len())

	// 3. Verify specific nodes
	start, ok := store.Get("start")
	require.True(t, ok)
	assert.Equal(t, "start", start.ID)
	assert.Equal(t, "Personal or Business?", start.Text)
	assert.Equal(t, "coverage_category", start.AnswerKey)
	require.Len(t, start.Options, 2)
	assert.Equal(t, domain.Option{Label: "Business", Value: "business", NextNode: "collect_contact"}, start.Options[1])

	contact, ok := store.Get("collect_contact")
	require.True(t, ok)
	assert.True(t, contact.ExpectsFreeText())
	assert.Empty(t, flow.Lint(store, "start"))
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := New()
	first := b.Add("start").Text("Hi")
	second := b.Add("start")
	assert.Same(t, first, second)

	second.Button("Go", "go", "start").FreeText()
	assert.Empty(t, first.Build().Options)
}

func TestBuilder_BrokenReference(t *testing.T) {
	b := New()
	b.Add("start").Text("Hi").Button("Go", "go", "nowhere")

	_, err := b.Build()
	assert.ErrorIs(t, err, domain.ErrFlowLoad)
	assert.ErrorContains(t, err, "broken reference")
}

func TestBuilder_DefinitionRoundTrip(t *testing.T) {
	b := New()
	b.Add("start").Text("Hi").SaveTo("greeting")

	data, err := b.Definition()
	require.NoError(t, err)

	store, err := flow.Load(data)
	require.NoError(t, err)
	node, _ := store.Get("start")
	assert.Equal(t, "greeting", node.AnswerKey)
}
