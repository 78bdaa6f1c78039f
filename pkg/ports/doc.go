/*
Package ports defines the driven ports (interfaces) of the lead wizard.

These interfaces decouple the wizard and the chat service from concrete drivers, so
the same core runs against Redis or memory sessions, Postgres, SQLite or memory
leads, and any reply generator.

# Key Interfaces

  - SessionStore: per-session field storage (current node and answers).
  - LeadRepository: persistence of captured leads.
  - Notifier: side effects fired after a lead is saved (webhook, alerts).
  - ReplyGenerator: free-text replies (LLM).
  - ZipChecker: service-area eligibility of a ZIP code.

The Run*Contract helpers are reusable suites every adapter runs in its own tests.
*/
package ports
