package domain

// Option is a selectable button on a FlowNode.
type Option struct {
	Label    string `json:"label" yaml:"label"`
	Value    string `json:"value" yaml:"value"`
	NextNode string `json:"next_node" yaml:"next_node"`
}

// FlowNode represents one step in the wizard graph.
// Nodes are created once when the flow is loaded and never mutated afterwards.
type FlowNode struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`

	// Options are kept in declaration order; the first matching value wins.
	Options []Option `json:"buttons,omitempty" yaml:"buttons,omitempty"`

	// AnswerKey names the session slot the user's response is saved under.
	// Empty for purely informational nodes.
	AnswerKey string `json:"save_as,omitempty" yaml:"save_as,omitempty"`
}

// ExpectsFreeText reports whether the node has no options and waits for typed input.
func (n FlowNode) ExpectsFreeText() bool {
	return len(n.Options) == 0
}

// Match returns the first option whose value equals the selected value.
func (n FlowNode) Match(value string) (Option, bool) {
	for _, opt := range n.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return Option{}, false
}

// Prompt returns the presentation payload of the node.
func (n FlowNode) Prompt() *Prompt {
	p := &Prompt{
		NodeID: n.ID,
		Text:   n.Text,
	}
	if len(n.Options) > 0 {
		p.Buttons = make([]Button, len(n.Options))
		for i, opt := range n.Options {
			p.Buttons[i] = Button{Label: opt.Label, Value: opt.Value}
		}
	}
	return p
}

// Button is the caller-facing view of an Option. Transition targets are not exposed.
type Button struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Prompt is what the host should render for the current wizard position.
type Prompt struct {
	NodeID  string   `json:"node_id"`
	Text    string   `json:"text"`
	Buttons []Button `json:"buttons,omitempty"`
}
