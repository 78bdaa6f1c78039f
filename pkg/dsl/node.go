package dsl

import "github.com/aretw0/leadwizard/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.FlowNode
	builder *Builder
}

// Text sets the message shown when the node is entered.
func (n *NodeBuilder) Text(content string) *NodeBuilder {
	n.node.Text = content
	return n
}

// SaveTo specifies the answer key the user's response is saved under.
func (n *NodeBuilder) SaveTo(key string) *NodeBuilder {
	n.node.AnswerKey = key
	return n
}

// Button adds an option that moves the session to target when clicked.
func (n *NodeBuilder) Button(label, value, target string) *NodeBuilder {
	n.node.Options = append(n.node.Options, domain.Option{
		Label:    label,
		Value:    value,
		NextNode: target,
	})
	return n
}

// FreeText removes every option so the node waits for typed input.
func (n *NodeBuilder) FreeText() *NodeBuilder {
	n.node.Options = nil
	return n
}

// Build returns the underlying domain.FlowNode.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.FlowNode {
	return n.node
}
