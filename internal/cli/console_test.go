package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/leadwizard/pkg/adapters/memory"
	"github.com/aretw0/leadwizard/pkg/chat"
	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/aretw0/leadwizard/pkg/flow"
	"github.com/aretw0/leadwizard/pkg/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const consoleFlow = `{
  "start": {"text": "Personal or Business?", "save_as": "coverage_category", "buttons": [
    {"label": "Personal", "value": "personal", "next_node": "ask_type"},
    {"label": "Business", "value": "business", "next_node": "ask_type"}
  ]},
  "ask_type": {"text": "Which policy?", "save_as": "quote_type", "buttons": [
    {"label": "Auto", "value": "auto", "next_node": "collect_contact"}
  ]},
  "collect_contact": {"text": "Please share your name and phone."}
}`

func newConsoleService(t *testing.T) (*chat.Service, *memory.SessionStore, *memory.LeadStore) {
	t.Helper()
	f, err := flow.Load([]byte(consoleFlow))
	require.NoError(t, err)
	sessions := memory.NewSessionStore()
	leads := memory.NewLeadStore()
	engine, err := wizard.New(f, sessions)
	require.NoError(t, err)
	return chat.New(engine, sessions, chat.WithLeadRepository(leads)), sessions, leads
}

func TestConsole_Walkthrough(t *testing.T) {
	svc, sessions, leads := newConsoleService(t)
	var out bytes.Buffer

	c := NewConsole(svc, ConsoleOptions{
		In:        strings.NewReader("2\n1\nAda, 601-555-0100\n/quit\n"),
		Out:       &out,
		SessionID: "console-1",
	})
	require.NoError(t, c.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Personal or Business?\n\n1. Personal\n2. Business\n")
	assert.Contains(t, text, "Which policy?\n\n1. Auto\n")
	assert.Contains(t, text, "Please share your name and phone.")
	assert.Contains(t, text, "Wizard complete.")
	assert.Contains(t, text, "Lead #1 captured.")
	assert.Contains(t, text, "Session console-1 closed.")

	answers, err := sessions.GetAllAnswers(context.Background(), "console-1")
	require.NoError(t, err)
	assert.Equal(t, "business", answers["coverage_category"])
	assert.Equal(t, "auto", answers["quote_type"])

	saved := leads.All()
	require.Len(t, saved, 1)
	assert.Equal(t, "business", saved[0].CoverageCategory)
	assert.Equal(t, "Ada, 601-555-0100", saved[0].RawMessage)
}

func TestConsole_Translate(t *testing.T) {
	svc, _, _ := newConsoleService(t)
	var out bytes.Buffer
	c := NewConsole(svc, ConsoleOptions{In: strings.NewReader(""), Out: &out})
	require.NoError(t, c.Run(context.Background()), "EOF ends the session cleanly")
	assert.NotEmpty(t, c.SessionID())

	assert.Equal(t, "__CLICKED__:personal", c.translate("1"))
	assert.Equal(t, "__CLICKED__:business", c.translate("2"))
	assert.Equal(t, "3", c.translate("3"), "out of range numbers are typed text")
	assert.Equal(t, "0", c.translate("0"))
	assert.Equal(t, "auto please", c.translate("auto please"))
}

func TestConsole_RejectedInputAndRestart(t *testing.T) {
	svc, sessions, _ := newConsoleService(t)
	var out bytes.Buffer
	c := NewConsole(svc, ConsoleOptions{
		In:        strings.NewReader(strings.Repeat("x", chat.DefaultMaxInputSize+1) + "\n1\n/restart\n"),
		Out:       &out,
		SessionID: "s-restart",
	})
	require.NoError(t, c.Run(context.Background()))

	assert.Contains(t, out.String(), "Message rejected")
	assert.NotEqual(t, "s-restart", c.SessionID(), "restart issues a new session")
	assert.Equal(t, 2, strings.Count(out.String(), "Personal or Business?"))

	_, found, err := sessions.GetField(context.Background(), "s-restart", domain.FieldCurrentNode)
	require.NoError(t, err)
	assert.False(t, found, "restart drops the old session from the store")
}

func TestConsole_CancelledContext(t *testing.T) {
	svc, _, _ := newConsoleService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	c := NewConsole(svc, ConsoleOptions{In: strings.NewReader("1\n"), Out: &out, Quiet: true})
	assert.NoError(t, c.Run(ctx))
	assert.NotContains(t, out.String(), "Which policy?")
}
