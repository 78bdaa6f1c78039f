// Package wizard implements the transition function of the lead wizard.
//
// The Engine reads the session position from a ports.SessionStore, applies one
// domain.Event (a button Selection or FreeText) against the flow.Store, and
// writes the new position back. It never fails a request: store errors are
// logged, reported through domain.LifecycleHooks and surfaced as Result.Degraded.
package wizard
