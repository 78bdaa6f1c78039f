package flow

import "fmt"

// Lint reports non-fatal problems in a loaded flow: nodes unreachable from startID
// and duplicate option values inside a single node (only the first would ever match).
func Lint(store *Store, startID string) []string {
	var warnings []string

	if !store.Has(startID) {
		return []string{fmt.Sprintf("start node %q is not defined", startID)}
	}

	reachable := map[string]bool{startID: true}
	queue := []string{startID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		node, _ := store.Get(id)
		for _, opt := range node.Options {
			if !reachable[opt.NextNode] {
				reachable[opt.NextNode] = true
				queue = append(queue, opt.NextNode)
			}
		}
	}

	for _, node := range store.Nodes() {
		if !reachable[node.ID] {
			warnings = append(warnings, fmt.Sprintf("node %q is unreachable from %q", node.ID, startID))
		}

		seen := make(map[string]bool, len(node.Options))
		for _, opt := range node.Options {
			if seen[opt.Value] {
				warnings = append(warnings, fmt.Sprintf("node %q has duplicate option value %q", node.ID, opt.Value))
			}
			seen[opt.Value] = true
		}
	}

	return warnings
}
