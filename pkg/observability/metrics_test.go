package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/aretw0/leadwizard/pkg/adapters/memory"
	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/aretw0/leadwizard/pkg/flow"
	"github.com/aretw0/leadwizard/pkg/observability"
	"github.com/aretw0/leadwizard/pkg/wizard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	f, err := flow.Load([]byte(`{
	  "start": {"text": "Pick", "save_as": "choice", "buttons": [
	    {"label": "A", "value": "a", "next_node": "collect_contact"}
	  ]},
	  "collect_contact": {"text": "Contact?"}
	}`))
	require.NoError(t, err)

	engine, err := wizard.New(f, memory.NewSessionStore(), wizard.WithLifecycleHooks(m.Hooks()))
	require.NoError(t, err)

	ctx := context.Background()
	engine.Handle(ctx, "s1", domain.Selection{Value: "a"})
	engine.Handle(ctx, "s2", domain.Selection{Value: "zzz"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.NodeEnter.WithLabelValues("collect_contact")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnswersSaved.WithLabelValues("choice")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnknownTransitions.WithLabelValues("start")))

	hooks := m.Hooks()
	hooks.OnStoreError(ctx, &domain.StoreErrorEvent{Op: "get", Err: errors.New("down")})
	hooks.OnLeadCaptured(ctx, &domain.LeadEvent{Outcome: domain.LeadSaved})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreErrors.WithLabelValues("get")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Leads.WithLabelValues(domain.LeadSaved)))

	err = testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP leadwizard_unknown_transitions_total Selections that matched no option and were routed to the fallback node
# TYPE leadwizard_unknown_transitions_total counter
leadwizard_unknown_transitions_total{node="start"} 1
`), "leadwizard_unknown_transitions_total")
	assert.NoError(t, err)
}

func TestNewMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	second, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	second.Leads.WithLabelValues("saved").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(first.Leads.WithLabelValues("saved")))
}

func TestChain(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnNodeEnter: func(context.Context, *domain.NodeEvent) { calls = append(calls, "a") },
	}
	b := domain.LifecycleHooks{
		OnNodeEnter:    func(context.Context, *domain.NodeEvent) { calls = append(calls, "b") },
		OnLeadCaptured: func(context.Context, *domain.LeadEvent) { calls = append(calls, "lead") },
	}

	merged := observability.Chain(a, domain.LifecycleHooks{}, b)
	merged.OnNodeEnter(context.Background(), &domain.NodeEvent{})
	merged.OnLeadCaptured(context.Background(), &domain.LeadEvent{})

	assert.Equal(t, []string{"a", "b", "lead"}, calls)
	assert.Nil(t, merged.OnStoreError)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := observability.LogHooks(slog.New(slog.NewTextHandler(&buf, nil)))

	hooks.OnUnknownTransition(context.Background(), &domain.NodeEvent{
		EventBase: domain.EventBase{SessionID: "s9"},
		NodeID:    "start",
		Value:     "bogus",
	})

	out := buf.String()
	assert.Contains(t, out, "unknown_transition")
	assert.Contains(t, out, "session_id=s9")
	assert.Contains(t, out, "value=bogus")
}
