package domain

import "errors"

// ErrFlowLoad is returned when the flow definition is missing or malformed.
var ErrFlowLoad = errors.New("flow load failed")

// ErrUnknownTransition marks a selection that matches no option of the current node.
// The engine recovers from it by moving to the fallback node.
var ErrUnknownTransition = errors.New("unknown transition")

// ErrSessionStoreUnavailable wraps any failure reaching the session store.
var ErrSessionStoreUnavailable = errors.New("session store unavailable")

// ErrLeadNotFound is returned when a lead id does not exist in the repository.
var ErrLeadNotFound = errors.New("lead not found")

// ErrInvalidInput is returned when a chat message is rejected before reaching the wizard.
var ErrInvalidInput = errors.New("invalid input")

// ErrSessionDeleteUnsupported is returned when the session store cannot drop sessions.
var ErrSessionDeleteUnsupported = errors.New("session store does not support delete")
