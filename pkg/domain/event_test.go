package domain_test

import (
	"testing"

	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name    string
		message string
		marker  string
		want    domain.Event
	}{
		{"Selection", "__CLICKED__:personal", "", domain.Selection{Value: "personal"}},
		{"Selection Trims Value", "__CLICKED__: auto ", "", domain.Selection{Value: "auto"}},
		{"Empty Selection", "__CLICKED__:", "", domain.Selection{Value: ""}},
		{"Free Text", "I need a quote", "", domain.FreeText{Text: "I need a quote"}},
		{"Marker Without Colon", "__CLICKED__personal", "", domain.FreeText{Text: "__CLICKED__personal"}},
		{"Custom Marker", "BTN:home", "BTN", domain.Selection{Value: "home"}},
		{"Default Marker Ignored With Custom", "__CLICKED__:home", "BTN", domain.FreeText{Text: "__CLICKED__:home"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ParseEvent(tt.message, tt.marker))
		})
	}
}

func TestSelectionMessage_RoundTrip(t *testing.T) {
	msg := domain.SelectionMessage("", "business")
	assert.Equal(t, "__CLICKED__:business", msg)
	assert.Equal(t, domain.Selection{Value: "business"}, domain.ParseEvent(msg, ""))
}

func TestAnswerKeyFromField(t *testing.T) {
	key, ok := domain.AnswerKeyFromField(domain.AnswerField("zip_code"))
	assert.True(t, ok)
	assert.Equal(t, "zip_code", key)

	_, ok = domain.AnswerKeyFromField(domain.FieldCurrentNode)
	assert.False(t, ok)

	_, ok = domain.AnswerKeyFromField("answers:")
	assert.False(t, ok)
}

func TestFlowNode_Prompt(t *testing.T) {
	node := domain.FlowNode{
		ID:   "start",
		Text: "Personal or Business?",
		Options: []domain.Option{
			{Label: "Personal", Value: "personal", NextNode: "ask_type"},
			{Label: "Business", Value: "business", NextNode: "ask_business"},
		},
	}

	p := node.Prompt()
	assert.Equal(t, "start", p.NodeID)
	assert.Equal(t, []domain.Button{
		{Label: "Personal", Value: "personal"},
		{Label: "Business", Value: "business"},
	}, p.Buttons)

	opt, ok := node.Match("business")
	assert.True(t, ok)
	assert.Equal(t, "ask_business", opt.NextNode)

	_, ok = node.Match("bogus")
	assert.False(t, ok)
	assert.False(t, node.ExpectsFreeText())
	assert.Nil(t, domain.FlowNode{ID: "x"}.Prompt().Buttons)
}
