package dsl

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/aretw0/leadwizard/pkg/flow"
)

// Builder manages the flow construction.
type Builder struct {
	nodes map[string]*NodeBuilder
	order []string
}

// New creates a new flow builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node in the flow.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.FlowNode{
			ID: id,
		},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Definition renders the flow in the JSON definition format read by flow.Load.
func (b *Builder) Definition() ([]byte, error) {
	def := make(map[string]domain.FlowNode, len(b.nodes))
	for _, id := range b.order {
		def[id] = b.nodes[id].node
	}
	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode flow: %w", err)
	}
	return data, nil
}

// Build compiles the flow into a validated flow.Store.
func (b *Builder) Build() (*flow.Store, error) {
	data, err := b.Definition()
	if err != nil {
		return nil, err
	}
	store, err := flow.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to build flow: %w", err)
	}
	return store, nil
}
