package domain

// Defaults shared by the engine, the adapters and the CLI.
const (
	// DefaultStartNode is the entry node of every new session.
	DefaultStartNode = "start"

	// DefaultFallbackNode receives unmatched selections and marks flow completion.
	DefaultFallbackNode = "collect_contact"

	// DefaultSelectionMarker prefixes button clicks sent by the widget ("__CLICKED__:value").
	DefaultSelectionMarker = "__CLICKED__"
)
