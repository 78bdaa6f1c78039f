/*
Package observability turns wizard lifecycle events into Prometheus metrics and
structured log lines.

Metrics registers its collectors on a caller-supplied prometheus.Registerer and
exposes them as domain.LifecycleHooks. LogHooks does the same for a *slog.Logger,
and Chain merges several hook sets so both can be attached to the engine at once.
*/
package observability
