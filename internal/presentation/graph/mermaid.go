package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/leadwizard/pkg/domain"
)

// GraphOverlay contains session state to visualize on the graph.
type GraphOverlay struct {
	AnsweredNodes []string
	CurrentNode   string
}

// Options tells the generator which nodes play special roles.
type Options struct {
	StartNode    string
	FallbackNode string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a list of nodes.
// It applies semantic styling:
// - Start: ((Circle))
// - Fallback: [(Database)] (where contact details are collected)
// - Free text: [/Parallelogram/]
// - Buttons: {Rhombus}
// Option labels are written on the edges. Overlay styles (Answered/Current) are
// applied if provided.
func GenerateMermaid(nodes []domain.FlowNode, opts Options, overlay *GraphOverlay) string {
	if opts.StartNode == "" {
		opts.StartNode = domain.DefaultStartNode
	}
	if opts.FallbackNode == "" {
		opts.FallbackNode = domain.DefaultFallbackNode
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "{", "}"
		switch {
		case node.ID == opts.StartNode:
			opener, closer = "((", "))"
		case node.ID == opts.FallbackNode:
			opener, closer = "[(", ")]"
		case node.ExpectsFreeText():
			opener, closer = "[/", "/]"
		}

		label := node.ID
		if node.AnswerKey != "" {
			label = fmt.Sprintf("%s <br/> 💾 %s", node.ID, node.AnswerKey)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)

		for _, opt := range node.Options {
			text := strings.ReplaceAll(opt.Label, "\"", "'")
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", safeID, text, sanitizeMermaidID(opt.NextNode))
		}
	}

	// Unmatched selections land on the fallback node.
	if len(nodes) > 0 {
		fmt.Fprintf(&sb, "    %s -. \"other\" .-> %s\n", sanitizeMermaidID(opts.StartNode), sanitizeMermaidID(opts.FallbackNode))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef answered fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.AnsweredNodes {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s answered;\n", safeID)
			}
		}

		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

// OverlayFromAnswers marks every node whose answer key has a saved answer.
func OverlayFromAnswers(nodes []domain.FlowNode, currentNode string, answers map[string]string) *GraphOverlay {
	overlay := &GraphOverlay{CurrentNode: currentNode}
	for _, node := range nodes {
		if node.AnswerKey == "" {
			continue
		}
		if _, ok := answers[node.AnswerKey]; ok {
			overlay.AnsweredNodes = append(overlay.AnsweredNodes, node.ID)
		}
	}
	return overlay
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
