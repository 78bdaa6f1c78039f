/*
Package leadwizard is the backend of an insurance lead capture chat widget.

A visitor talks to the widget; every turn is a chat message. Button clicks arrive as
"__CLICKED__:<value>" and move the visitor through a scripted wizard, a decision tree
loaded from a JSON or YAML file. Typed messages are saved as answers and answered by an
LLM. Once the visitor reaches the contact step (or volunteers contact details), the
collected answers become a Lead: the ZIP code is checked against the service area, the
lead is stored and a webhook notifies the sales automation.

# Architecture

The repository follows a hexagonal layout:

  - pkg/domain: flow nodes, events, leads, sentinel errors and lifecycle hooks.
  - pkg/flow: the immutable flow store and its loader.
  - pkg/wizard: the transition function.
  - pkg/chat: one chat turn, from raw message to reply.
  - pkg/ports: the interfaces adapters implement, plus reusable contract suites.
  - pkg/adapters: Redis and in-memory sessions, Postgres, SQLite and in-memory leads,
    the LLM client, ZIP lookup, notifications, and the HTTP and MCP transports.
  - pkg/persistence/middleware: answer encryption and PII masking around any session store.
  - pkg/dsl: a Go builder for flows.
  - cmd/leadwizard: the CLI (serve, chat, validate, graph, mcp, version).

# Usage

	flowStore, err := flow.LoadFile("flows/premium.json")
	if err != nil {
		log.Fatal(err)
	}

	sessions := memory.NewSessionStore(memory.WithTTL(24 * time.Hour))
	engine, err := wizard.New(flowStore, sessions)
	if err != nil {
		log.Fatal(err)
	}

	svc := chat.New(engine, sessions, chat.WithLeadRepository(memory.NewLeadStore()))
	resp, err := svc.Handle(ctx, chat.Request{SessionID: "demo", Message: "hi"})
*/
package leadwizard
