package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/leadwizard/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one structured line per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.InfoContext(ctx, "node_enter",
				"session_id", e.SessionID,
				"node_id", e.NodeID,
				"from", e.From,
			)
		},
		OnAnswerSaved: func(ctx context.Context, e *domain.AnswerEvent) {
			logger.DebugContext(ctx, "answer_saved",
				"session_id", e.SessionID,
				"node_id", e.NodeID,
				"key", e.Key,
			)
		},
		OnUnknownTransition: func(ctx context.Context, e *domain.NodeEvent) {
			logger.WarnContext(ctx, "unknown_transition",
				"session_id", e.SessionID,
				"node_id", e.NodeID,
				"value", e.Value,
			)
		},
		OnStoreError: func(ctx context.Context, e *domain.StoreErrorEvent) {
			logger.ErrorContext(ctx, "store_error",
				"session_id", e.SessionID,
				"op", e.Op,
				"err", e.Err,
			)
		},
		OnLeadCaptured: func(ctx context.Context, e *domain.LeadEvent) {
			logger.InfoContext(ctx, "lead_captured",
				"session_id", e.SessionID,
				"lead_id", e.LeadID,
				"outcome", e.Outcome,
			)
		},
	}
}

// Chain merges hook sets. Each callback runs the non-nil callbacks of every set, in order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks

	for _, h := range sets {
		out.OnNodeEnter = chain(out.OnNodeEnter, h.OnNodeEnter)
		out.OnAnswerSaved = chain(out.OnAnswerSaved, h.OnAnswerSaved)
		out.OnUnknownTransition = chain(out.OnUnknownTransition, h.OnUnknownTransition)
		out.OnStoreError = chain(out.OnStoreError, h.OnStoreError)
		out.OnLeadCaptured = chain(out.OnLeadCaptured, h.OnLeadCaptured)
	}
	return out
}

func chain[E any](first, next func(context.Context, E)) func(context.Context, E) {
	switch {
	case next == nil:
		return first
	case first == nil:
		return next
	}
	return func(ctx context.Context, e E) {
		first(ctx, e)
		next(ctx, e)
	}
}
