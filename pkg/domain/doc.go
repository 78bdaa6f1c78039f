/*
Package domain contains the core types of the lead wizard.

It defines the flow graph (FlowNode, Option), the presentation payload handed back to
callers (Prompt), the inbound event union (Selection or FreeText), the session wire
fields, the captured Lead, and the lifecycle hooks used for observability. The package
is kept free of I/O so every adapter can depend on it.

# Key Entities

  - FlowNode: one step of the scripted wizard, with a prompt and optional options.
  - Event: what the caller sent, already classified at the boundary.
  - Prompt: what the caller should render next.
  - Lead: the insurance lead assembled from session answers and request fields.
*/
package domain
