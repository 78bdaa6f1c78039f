package observability

import (
	"context"
	"errors"

	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the wizard.
type Metrics struct {
	NodeEnter          *prometheus.CounterVec
	AnswersSaved       *prometheus.CounterVec
	UnknownTransitions *prometheus.CounterVec
	StoreErrors        *prometheus.CounterVec
	Leads              *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A collector already registered by an earlier call is reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		NodeEnter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadwizard_node_enter_total",
				Help: "Total number of transitions onto a node",
			},
			[]string{"node"},
		),
		AnswersSaved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadwizard_answers_saved_total",
				Help: "Total number of answers written to sessions",
			},
			[]string{"key"},
		),
		UnknownTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadwizard_unknown_transitions_total",
				Help: "Selections that matched no option and were routed to the fallback node",
			},
			[]string{"node"},
		),
		StoreErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadwizard_session_store_errors_total",
				Help: "Failed session store operations",
			},
			[]string{"op"},
		),
		Leads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadwizard_leads_total",
				Help: "Lead capture attempts by outcome",
			},
			[]string{"outcome"},
		),
	}

	var err error
	m.NodeEnter, err = register(reg, m.NodeEnter)
	if err != nil {
		return nil, err
	}
	m.AnswersSaved, err = register(reg, m.AnswersSaved)
	if err != nil {
		return nil, err
	}
	m.UnknownTransitions, err = register(reg, m.UnknownTransitions)
	if err != nil {
		return nil, err
	}
	m.StoreErrors, err = register(reg, m.StoreErrors)
	if err != nil {
		return nil, err
	}
	m.Leads, err = register(reg, m.Leads)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

// Hooks returns lifecycle hooks that record every event.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeEnter.WithLabelValues(e.NodeID).Inc()
		},
		OnAnswerSaved: func(_ context.Context, e *domain.AnswerEvent) {
			m.AnswersSaved.WithLabelValues(e.Key).Inc()
		},
		OnUnknownTransition: func(_ context.Context, e *domain.NodeEvent) {
			m.UnknownTransitions.WithLabelValues(e.NodeID).Inc()
		},
		OnStoreError: func(_ context.Context, e *domain.StoreErrorEvent) {
			m.StoreErrors.WithLabelValues(e.Op).Inc()
		},
		OnLeadCaptured: func(_ context.Context, e *domain.LeadEvent) {
			m.Leads.WithLabelValues(e.Outcome).Inc()
		},
	}
}
