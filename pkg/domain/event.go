package domain

import "strings"

// Event is an inbound chat turn, classified once at the boundary.
// It is either a Selection or a FreeText.
type Event interface {
	isEvent()
}

// Selection is a button click carrying the chosen option value.
type Selection struct {
	Value string
}

// FreeText is a typed message.
type FreeText struct {
	Text string
}

func (Selection) isEvent() {}
func (FreeText) isEvent()  {}

// ParseEvent classifies a raw message. A message of the form "<marker>:<value>" is a
// Selection; anything else is FreeText. An empty marker falls back to DefaultSelectionMarker.
func ParseEvent(message, marker string) Event {
	if marker == "" {
		marker = DefaultSelectionMarker
	}
	prefix := marker + ":"
	if strings.HasPrefix(message, prefix) {
		return Selection{Value: strings.TrimSpace(strings.TrimPrefix(message, prefix))}
	}
	return FreeText{Text: message}
}

// SelectionMessage renders a selection back into its wire form.
func SelectionMessage(marker, value string) string {
	if marker == "" {
		marker = DefaultSelectionMarker
	}
	return marker + ":" + value
}
