package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/aretw0/leadwizard/pkg/flow"
	"github.com/aretw0/leadwizard/pkg/ports"
)

// Result is the outcome of handling one event.
type Result struct {
	// Prompt is the node the caller should render. Nil means the engine has
	// nothing scripted to say and the caller should produce its own reply.
	Prompt *domain.Prompt

	// NodeID is the node the session is positioned on after the event.
	NodeID string

	AnswerSaved bool

	// Completed is set when free text arrives on the fallback node.
	Completed bool

	// Degraded is set when a session store round-trip failed during the event.
	Degraded bool
}

// Engine advances a session through the flow, one event at a time.
// It holds no per-session state; everything lives in the SessionStore.
type Engine struct {
	flow     *flow.Store
	sessions ports.SessionStore
	start    string
	fallback string
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithStartNode sets the entry node (default: "start").
func WithStartNode(nodeID string) Option {
	return func(e *Engine) {
		e.start = nodeID
	}
}

// WithFallbackNode sets the node unknown selections are routed to (default: "collect_contact").
func WithFallbackNode(nodeID string) Option {
	return func(e *Engine) {
		e.fallback = nodeID
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// New creates an Engine bound to a loaded flow and a session store.
func New(f *flow.Store, sessions ports.SessionStore, opts ...Option) (*Engine, error) {
	if f == nil {
		return nil, fmt.Errorf("flow store is required: %w", domain.ErrFlowLoad)
	}
	if sessions == nil {
		return nil, errors.New("session store is required")
	}

	e := &Engine{
		flow:     f,
		sessions: sessions,
		start:    domain.DefaultStartNode,
		fallback: domain.DefaultFallbackNode,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if !f.Has(e.start) {
		return nil, fmt.Errorf("start node %q not found: %w", e.start, domain.ErrFlowLoad)
	}
	if !f.Has(e.fallback) {
		return nil, fmt.Errorf("fallback node %q not found: %w", e.fallback, domain.ErrFlowLoad)
	}

	return e, nil
}

// StartNode returns the configured entry node id.
func (e *Engine) StartNode() string { return e.start }

// FallbackNode returns the configured fallback node id.
func (e *Engine) FallbackNode() string { return e.fallback }

// Handle applies one event to the session and returns what to show next.
// Store failures are logged and reported through hooks; Handle never fails.
func (e *Engine) Handle(ctx context.Context, sessionID string, event domain.Event) Result {
	logger := e.logger.With("session_id", sessionID)

	var res Result
	current := e.current(ctx, sessionID, logger, &res)
	res.NodeID = current.ID

	switch ev := event.(type) {
	case domain.Selection:
		e.handleSelection(ctx, sessionID, logger, current, ev.Value, &res)
	case domain.FreeText:
		e.handleFreeText(ctx, sessionID, logger, current, ev.Text, &res)
	default:
		logger.Warn("ignoring unsupported event", "type", fmt.Sprintf("%T", event))
		res.Prompt = current.Prompt()
	}

	return res
}

// current resolves the session position, treating absent or unknown ids as the start node.
func (e *Engine) current(ctx context.Context, sessionID string, logger *slog.Logger, res *Result) domain.FlowNode {
	start, _ := e.flow.Get(e.start)

	id, found, err := e.sessions.GetField(ctx, sessionID, domain.FieldCurrentNode)
	if err != nil {
		e.storeFailed(ctx, sessionID, logger, "get", err, res)
		return start
	}
	if !found || id == "" {
		return start
	}

	node, ok := e.flow.Get(id)
	if !ok {
		logger.Warn("session points to unknown node, restarting", "node_id", id)
		return start
	}
	return node
}

func (e *Engine) handleSelection(ctx context.Context, sessionID string, logger *slog.Logger, node domain.FlowNode, value string, res *Result) {
	if node.AnswerKey != "" {
		e.saveAnswer(ctx, sessionID, logger, node, value, res)
	}

	nextID := e.fallback
	if opt, ok := node.Match(value); ok {
		nextID = opt.NextNode
	} else {
		logger.Warn("selection matched no option, routing to fallback",
			"node_id", node.ID, "value", value, "fallback", e.fallback, "err", domain.ErrUnknownTransition)
		if e.hooks.OnUnknownTransition != nil {
			e.hooks.OnUnknownTransition(ctx, &domain.NodeEvent{
				EventBase: e.base(domain.EventUnknownTransition, sessionID),
				NodeID:    node.ID,
				Value:     value,
			})
		}
	}

	next, ok := e.flow.Get(nextID)
	if !ok {
		// Unreachable for a validated flow; stay put rather than strand the session.
		logger.Error("transition target missing from flow", "node_id", nextID)
		next = node
	}

	if err := e.sessions.SetField(ctx, sessionID, domain.FieldCurrentNode, next.ID); err != nil {
		e.storeFailed(ctx, sessionID, logger, "set", err, res)
	}

	logger.Debug("transition", "from", node.ID, "node_id", next.ID)
	if e.hooks.OnNodeEnter != nil {
		e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
			EventBase: e.base(domain.EventNodeEnter, sessionID),
			NodeID:    next.ID,
			From:      node.ID,
			Value:     value,
		})
	}

	res.NodeID = next.ID
	res.Prompt = next.Prompt()
}

func (e *Engine) handleFreeText(ctx context.Context, sessionID string, logger *slog.Logger, node domain.FlowNode, text string, res *Result) {
	if node.ID == e.start {
		res.Prompt = node.Prompt()
		return
	}

	if node.AnswerKey != "" {
		e.saveAnswer(ctx, sessionID, logger, node, text, res)
	}

	if node.ID == e.fallback {
		res.Completed = true
	}
}

func (e *Engine) saveAnswer(ctx context.Context, sessionID string, logger *slog.Logger, node domain.FlowNode, value string, res *Result) {
	if err := e.sessions.SetField(ctx, sessionID, domain.AnswerField(node.AnswerKey), value); err != nil {
		e.storeFailed(ctx, sessionID, logger, "set", err, res)
		return
	}

	res.AnswerSaved = true
	logger.Debug("answer saved", "node_id", node.ID, "key", node.AnswerKey)
	if e.hooks.OnAnswerSaved != nil {
		e.hooks.OnAnswerSaved(ctx, &domain.AnswerEvent{
			EventBase: e.base(domain.EventAnswerSaved, sessionID),
			NodeID:    node.ID,
			Key:       node.AnswerKey,
		})
	}
}

func (e *Engine) storeFailed(ctx context.Context, sessionID string, logger *slog.Logger, op string, err error, res *Result) {
	res.Degraded = true
	logger.Error("session store failure", "op", op, "err", err)
	if e.hooks.OnStoreError != nil {
		e.hooks.OnStoreError(ctx, &domain.StoreErrorEvent{
			EventBase: e.base(domain.EventStoreError, sessionID),
			Op:        op,
			Err:       err,
		})
	}
}

func (e *Engine) base(t domain.EventType, sessionID string) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		SessionID: sessionID,
	}
}
