// Package oncotree provides an in-memory index of OncoTree cancer-type codes
// with tissue-level ancestry lookups.
package oncotree

import "fmt"

// Node is a single cancer-type code in the taxonomy.
type Node struct {
	Code   string // OncoTree code (e.g. "LUAD")
	Name   string // Display name (e.g. "Lung Adenocarcinoma")
	Level  int    // Depth below the root, root is 0
	Tissue bool   // Tissue-level classification

	index    int
	parent   int   // index into Tree.nodes, -1 for the root
	children []int // indices into Tree.nodes, in input order
}

// IsRoot returns true if the node has no parent.
func (n *Node) IsRoot() bool {
	return n.parent < 0
}

// StructuralError reports a taxonomy that violates a tree invariant, or a
// lookup against a code that is required to exist.
type StructuralError struct {
	Code    string
	Message string
}

func (e *StructuralError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("oncotree: %s", e.Message)
	}
	return fmt.Sprintf("oncotree: %s (code %q)", e.Message, e.Code)
}
