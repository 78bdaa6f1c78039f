package wizard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/leadwizard/pkg/adapters/memory"
	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/aretw0/leadwizard/pkg/flow"
	"github.com/aretw0/leadwizard/pkg/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quoteFlow = `{
  "start": {
    "text": "Personal or Business?",
    "buttons": [
      {"label": "Personal", "value": "personal", "next_node": "ask_type"},
      {"label": "Business", "value": "business", "next_node": "ask_type"}
    ],
    "save_as": "coverage_category"
  },
  "ask_type": {
    "text": "What type?",
    "buttons": [
      {"label": "Auto", "value": "auto", "next_node": "collect_contact"},
      {"label": "Home", "value": "home", "next_node": "collect_contact"}
    ],
    "save_as": "quote_type"
  },
  "collect_contact": {"text": "Leave your name, email and phone.", "save_as": "contact"}
}`

func newEngine(t *testing.T, opts ...wizard.Option) (*wizard.Engine, *memory.SessionStore) {
	t.Helper()
	f, err := flow.Load([]byte(quoteFlow))
	require.NoError(t, err)

	sessions := memory.NewSessionStore()
	engine, err := wizard.New(f, sessions, opts...)
	require.NoError(t, err)
	return engine, sessions
}

func currentNode(t *testing.T, s *memory.SessionStore, sid string) (string, bool) {
	t.Helper()
	v, found, err := s.GetField(context.Background(), sid, domain.FieldCurrentNode)
	require.NoError(t, err)
	return v, found
}

func TestEngine_FirstContactThenSelection(t *testing.T) {
	engine, sessions := newEngine(t)
	ctx := context.Background()

	res := engine.Handle(ctx, "s1", domain.FreeText{Text: "hi"})
	require.NotNil(t, res.Prompt)
	assert.Equal(t, "start", res.Prompt.NodeID)
	assert.Equal(t, "Personal or Business?", res.Prompt.Text)
	assert.Equal(t, []domain.Button{
		{Label: "Personal", Value: "personal"},
		{Label: "Business", Value: "business"},
	}, res.Prompt.Buttons)
	assert.False(t, res.AnswerSaved)

	_, found := currentNode(t, sessions, "s1")
	assert.False(t, found, "free text at start must not create a session record")

	res = engine.Handle(ctx, "s1", domain.Selection{Value: "personal"})
	require.NotNil(t, res.Prompt)
	assert.Equal(t, "ask_type", res.Prompt.NodeID)
	assert.Equal(t, "ask_type", res.NodeID)
	assert.True(t, res.AnswerSaved)
	assert.False(t, res.Degraded)

	node, _ := currentNode(t, sessions, "s1")
	assert.Equal(t, "ask_type", node)

	answers, err := sessions.GetAllAnswers(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"coverage_category": "personal"}, answers)
}

func TestEngine_UnknownSelectionRoutesToFallback(t *testing.T) {
	var unknown []*domain.NodeEvent
	engine, sessions := newEngine(t, wizard.WithLifecycleHooks(domain.LifecycleHooks{
		OnUnknownTransition: func(_ context.Context, ev *domain.NodeEvent) { unknown = append(unknown, ev) },
	}))
	ctx := context.Background()

	res := engine.Handle(ctx, "s1", domain.Selection{Value: "bogus"})
	require.NotNil(t, res.Prompt)
	assert.Equal(t, "collect_contact", res.Prompt.NodeID)
	assert.False(t, res.Degraded)

	node, _ := currentNode(t, sessions, "s1")
	assert.Equal(t, "collect_contact", node)

	require.Len(t, unknown, 1)
	assert.Equal(t, "start", unknown[0].NodeID)
	assert.Equal(t, "bogus", unknown[0].Value)

	// The raw value is still recorded under the node's answer key.
	answers, _ := sessions.GetAllAnswers(ctx, "s1")
	assert.Equal(t, "bogus", answers["coverage_category"])

	// Repeating the bogus selection keeps the session on the fallback node.
	res = engine.Handle(ctx, "s1", domain.Selection{Value: "bogus"})
	assert.Equal(t, "collect_contact", res.NodeID)
	node, _ = currentNode(t, sessions, "s1")
	assert.Equal(t, "collect_contact", node)
}

func TestEngine_FreeTextMidFlowSavesAnswer(t *testing.T) {
	engine, sessions := newEngine(t)
	ctx := context.Background()

	engine.Handle(ctx, "s1", domain.Selection{Value: "business"})

	res := engine.Handle(ctx, "s1", domain.FreeText{Text: "boats"})
	assert.Nil(t, res.Prompt, "free text mid-flow yields no scripted prompt")
	assert.Equal(t, "ask_type", res.NodeID)
	assert.True(t, res.AnswerSaved)
	assert.False(t, res.Completed)

	node, _ := currentNode(t, sessions, "s1")
	assert.Equal(t, "ask_type", node, "free text never transitions")

	answers, _ := sessions.GetAllAnswers(ctx, "s1")
	assert.Equal(t, "boats", answers["quote_type"])
}

func TestEngine_FreeTextAtFallbackCompletes(t *testing.T) {
	engine, sessions := newEngine(t)
	ctx := context.Background()

	engine.Handle(ctx, "s1", domain.Selection{Value: "personal"})
	engine.Handle(ctx, "s1", domain.Selection{Value: "auto"})

	res := engine.Handle(ctx, "s1", domain.FreeText{Text: "Ada, ada@example.com"})
	assert.Nil(t, res.Prompt)
	assert.True(t, res.Completed)
	assert.Equal(t, "collect_contact", res.NodeID)

	answers, _ := sessions.GetAllAnswers(ctx, "s1")
	assert.Equal(t, map[string]string{
		"coverage_category": "personal",
		"quote_type":        "auto",
		"contact":           "Ada, ada@example.com",
	}, answers)
}

func TestEngine_UnknownCurrentNodeRestarts(t *testing.T) {
	engine, sessions := newEngine(t)
	ctx := context.Background()

	require.NoError(t, sessions.SetField(ctx, "s1", domain.FieldCurrentNode, "removed_node"))

	res := engine.Handle(ctx, "s1", domain.FreeText{Text: "hello again"})
	require.NotNil(t, res.Prompt)
	assert.Equal(t, "start", res.Prompt.NodeID)
}

func TestEngine_Deterministic(t *testing.T) {
	engine, _ := newEngine(t)
	ctx := context.Background()

	a := engine.Handle(ctx, "a", domain.Selection{Value: "personal"})
	b := engine.Handle(ctx, "b", domain.Selection{Value: "personal"})
	assert.Equal(t, a, b)
}

// A repeated selection is applied to the node the session has moved on to, not
// ignored: "personal" matches nothing on ask_type, so it is saved as quote_type
// and the session falls through to the fallback node.
func TestEngine_RepeatedSelectionOnSameSession(t *testing.T) {
	engine, sessions := newEngine(t)
	ctx := context.Background()

	first := engine.Handle(ctx, "s1", domain.Selection{Value: "personal"})
	second := engine.Handle(ctx, "s1", domain.Selection{Value: "personal"})

	assert.Equal(t, "ask_type", first.NodeID)
	assert.Equal(t, "collect_contact", second.NodeID)

	answers, err := sessions.GetAllAnswers(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"coverage_category": "personal",
		"quote_type":        "personal",
	}, answers)
}

func TestEngine_Hooks(t *testing.T) {
	var entered []string
	var saved []string
	engine, _ := newEngine(t, wizard.WithLifecycleHooks(domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, ev *domain.NodeEvent) {
			entered = append(entered, ev.From+"->"+ev.NodeID)
			assert.Equal(t, domain.EventNodeEnter, ev.Type)
			assert.Equal(t, "s1", ev.SessionID)
		},
		OnAnswerSaved: func(_ context.Context, ev *domain.AnswerEvent) {
			saved = append(saved, ev.Key)
		},
	}))
	ctx := context.Background()

	engine.Handle(ctx, "s1", domain.Selection{Value: "personal"})
	engine.Handle(ctx, "s1", domain.Selection{Value: "home"})

	assert.Equal(t, []string{"start->ask_type", "ask_type->collect_contact"}, entered)
	assert.Equal(t, []string{"coverage_category", "quote_type"}, saved)
}

func TestEngine_CustomNodes(t *testing.T) {
	f, err := flow.Load([]byte(`{
	  "welcome": {"text": "Hi", "buttons": [{"label": "Go", "value": "go", "next_node": "bye"}]},
	  "bye": {"text": "Bye"}
	}`))
	require.NoError(t, err)

	_, err = wizard.New(f, memory.NewSessionStore())
	assert.ErrorIs(t, err, domain.ErrFlowLoad, "default start node is missing")

	engine, err := wizard.New(f, memory.NewSessionStore(),
		wizard.WithStartNode("welcome"), wizard.WithFallbackNode("bye"))
	require.NoError(t, err)
	assert.Equal(t, "welcome", engine.StartNode())
	assert.Equal(t, "bye", engine.FallbackNode())

	res := engine.Handle(context.Background(), "s", domain.Selection{Value: "nope"})
	assert.Equal(t, "bye", res.NodeID)
}

func TestNew_MissingFallback(t *testing.T) {
	f, err := flow.Load([]byte(`{"start": {"text": "Hi"}}`))
	require.NoError(t, err)

	_, err = wizard.New(f, memory.NewSessionStore())
	assert.ErrorIs(t, err, domain.ErrFlowLoad)
}

// brokenStore fails every call.
type brokenStore struct{}

var errDown = errors.New("connection refused")

func (brokenStore) GetField(context.Context, string, string) (string, bool, error) {
	return "", false, errDown
}

func (brokenStore) SetField(context.Context, string, string, string) error {
	return errDown
}

func (brokenStore) GetAllAnswers(context.Context, string) (map[string]string, error) {
	return nil, errDown
}

func TestEngine_DegradesWhenStoreIsDown(t *testing.T) {
	f, err := flow.Load([]byte(quoteFlow))
	require.NoError(t, err)

	var ops []string
	engine, err := wizard.New(f, brokenStore{}, wizard.WithLifecycleHooks(domain.LifecycleHooks{
		OnStoreError: func(_ context.Context, ev *domain.StoreErrorEvent) {
			ops = append(ops, ev.Op)
			assert.ErrorIs(t, ev.Err, errDown)
		},
	}))
	require.NoError(t, err)

	res := engine.Handle(context.Background(), "s1", domain.FreeText{Text: "hi"})
	require.NotNil(t, res.Prompt)
	assert.Equal(t, "start", res.Prompt.NodeID)
	assert.True(t, res.Degraded)

	res = engine.Handle(context.Background(), "s1", domain.Selection{Value: "personal"})
	require.NotNil(t, res.Prompt)
	assert.Equal(t, "ask_type", res.Prompt.NodeID, "the transition is still computed")
	assert.False(t, res.AnswerSaved)
	assert.True(t, res.Degraded)

	assert.Equal(t, []string{"get", "get", "set", "set"}, ops)
}
