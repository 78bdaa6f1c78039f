package domain

import (
	"context"
	"time"
)

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventNodeEnter         EventType = "node_enter"
	EventAnswerSaved       EventType = "answer_saved"
	EventUnknownTransition EventType = "unknown_transition"
	EventStoreError        EventType = "store_error"
	EventLeadCaptured      EventType = "lead_captured"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// NodeEvent is emitted when a session moves onto a node, or when a selection
// could not be matched on it.
type NodeEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	From   string `json:"from,omitempty"`
	Value  string `json:"value,omitempty"`
}

// AnswerEvent is emitted after an answer was written to the session.
type AnswerEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	Key    string `json:"key"`
}

// StoreErrorEvent reports a failed session store round-trip.
type StoreErrorEvent struct {
	EventBase
	Op  string `json:"op"`
	Err error  `json:"-"`
}

// Lead capture outcomes.
const (
	LeadSaved      = "saved"
	LeadFailed     = "failed"
	LeadOutOfArea  = "out_of_area"
	LeadNotified   = "notified"
	LeadNotifyFail = "notify_failed"
)

// LeadEvent reports the outcome of a lead capture attempt.
type LeadEvent struct {
	EventBase
	LeadID  int64  `json:"lead_id,omitempty"`
	Outcome string `json:"outcome"`
}

// LifecycleHooks defines callbacks for wizard observability.
// Nil callbacks are skipped.
type LifecycleHooks struct {
	OnNodeEnter         func(context.Context, *NodeEvent)
	OnAnswerSaved       func(context.Context, *AnswerEvent)
	OnUnknownTransition func(context.Context, *NodeEvent)
	OnStoreError        func(context.Context, *StoreErrorEvent)
	OnLeadCaptured      func(context.Context, *LeadEvent)
}
