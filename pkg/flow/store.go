package flow

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/leadwizard/pkg/domain"
	"gopkg.in/yaml.v3"
)

const memorySource = "<memory>"

// Store is an immutable mapping from node id to FlowNode.
type Store struct {
	nodes map[string]domain.FlowNode
	ids   []string
}

// nodeDefinition is the on-disk shape of a node.
type nodeDefinition struct {
	Text    string          `json:"text"`
	Buttons []domain.Option `json:"buttons,omitempty"`
	SaveAs  string          `json:"save_as,omitempty"`
}

// Load parses a JSON flow definition.
func Load(definition []byte) (*Store, error) {
	return load(memorySource, definition)
}

// LoadYAML parses a YAML flow definition with the same shape as the JSON one.
func LoadYAML(definition []byte) (*Store, error) {
	return loadYAML(memorySource, definition)
}

// LoadFile reads a flow definition from disk. Files ending in .yaml or .yml are
// parsed as YAML, everything else as JSON.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Reason: "cannot read file", Err: err}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAML(path, data)
	default:
		return load(path, data)
	}
}

func loadYAML(source string, data []byte) (*Store, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, &LoadError{Source: source, Reason: "definition is empty"}
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Source: source, Reason: "malformed YAML", Err: err}
	}

	// Re-encode as JSON so both formats share one validation path.
	converted, err := json.Marshal(raw)
	if err != nil {
		return nil, &LoadError{Source: source, Reason: "cannot convert YAML", Err: err}
	}
	return load(source, converted)
}

func load(source string, data []byte) (*Store, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, &LoadError{Source: source, Reason: "definition is empty"}
	}

	if !json.Valid(data) {
		return nil, &LoadError{Source: source, Reason: "malformed JSON"}
	}

	if err := validateSchema(data); err != nil {
		return nil, &LoadError{Source: source, Reason: "schema violation", Err: err}
	}

	var defs map[string]nodeDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, &LoadError{Source: source, Reason: "cannot decode nodes", Err: err}
	}

	store := &Store{
		nodes: make(map[string]domain.FlowNode, len(defs)),
		ids:   make([]string, 0, len(defs)),
	}
	for id, def := range defs {
		store.nodes[id] = domain.FlowNode{
			ID:        id,
			Text:      def.Text,
			Options:   def.Buttons,
			AnswerKey: def.SaveAs,
		}
		store.ids = append(store.ids, id)
	}
	sort.Strings(store.ids)

	if err := store.checkReferences(); err != nil {
		return nil, &LoadError{Source: source, Reason: "broken reference", Err: err}
	}

	return store, nil
}

// checkReferences ensures every option points to an existing node.
func (s *Store) checkReferences() error {
	var errs []error
	for _, id := range s.ids {
		for _, opt := range s.nodes[id].Options {
			if _, ok := s.nodes[opt.NextNode]; !ok {
				errs = append(errs, fmt.Errorf("node %q option %q points to missing node %q", id, opt.Value, opt.NextNode))
			}
		}
	}
	return errors.Join(errs...)
}

// Get returns the node with the given id.
func (s *Store) Get(id string) (domain.FlowNode, bool) {
	node, ok := s.nodes[id]
	return node, ok
}

// Has reports whether a node exists.
func (s *Store) Has(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

// Nodes returns every node sorted by id.
func (s *Store) Nodes() []domain.FlowNode {
	out := make([]domain.FlowNode, len(s.ids))
	for i, id := range s.ids {
		out[i] = s.nodes[id]
	}
	return out
}

// Len returns the number of nodes.
func (s *Store) Len() int {
	return len(s.ids)
}

// MarshalJSON renders the store back into the definition format.
func (s *Store) MarshalJSON() ([]byte, error) {
	out := make(map[string]nodeDefinition, len(s.nodes))
	for id, n := range s.nodes {
		out[id] = nodeDefinition{Text: n.Text, Buttons: n.Options, SaveAs: n.AnswerKey}
	}
	return json.Marshal(out)
}
