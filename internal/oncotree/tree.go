package oncotree

// Tree owns every node of the taxonomy and indexes them by code.
// A Tree is never modified after Build and is safe for concurrent reads.
type Tree struct {
	nodes  []*Node
	byCode map[string]int
	tissue []int
}

// Build constructs a tree from the nested node description rooted at spec.
//
// Tissue classification uses the explicit Tissue flag when any node in the
// description sets one; otherwise the direct children of the root are the
// tissue-level nodes. The root is never a tissue node and its own flag is
// ignored. Every non-root node must have a tissue ancestor
// (itself included), and codes must be unique.
func Build(spec Spec) (*Tree, error) {
	t := &Tree{byCode: make(map[string]int)}
	explicit := false
	for _, c := range spec.Children {
		explicit = explicit || hasTissueFlag(c)
	}

	if err := t.add(spec, -1, 0, explicit); err != nil {
		return nil, err
	}

	for _, n := range t.nodes {
		if n.Tissue {
			t.tissue = append(t.tissue, n.index)
		}
	}

	for _, n := range t.nodes {
		if n.IsRoot() {
			continue
		}
		if _, ok := t.TissueAncestorOf(n); !ok {
			return nil, &StructuralError{Code: n.Code, Message: "node has no tissue ancestor"}
		}
	}

	return t, nil
}

func hasTissueFlag(s Spec) bool {
	if s.Tissue != nil {
		return true
	}
	for _, c := range s.Children {
		if hasTissueFlag(c) {
			return true
		}
	}
	return false
}

func (t *Tree) add(s Spec, parent, level int, explicit bool) error {
	if s.Code == "" {
		return &StructuralError{Message: "node without code"}
	}
	if _, dup := t.byCode[s.Code]; dup {
		return &StructuralError{Code: s.Code, Message: "duplicate code"}
	}

	n := &Node{
		Code:   s.Code,
		Name:   s.Name,
		Level:  level,
		index:  len(t.nodes),
		parent: parent,
	}
	switch {
	case parent < 0:
		n.Tissue = false
	case explicit:
		n.Tissue = s.Tissue != nil && *s.Tissue
	default:
		n.Tissue = level == 1
	}

	t.nodes = append(t.nodes, n)
	t.byCode[n.Code] = n.index
	if parent >= 0 {
		p := t.nodes[parent]
		p.children = append(p.children, n.index)
	}

	for _, c := range s.Children {
		if err := t.add(c, n.index, level+1, explicit); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of nodes, root included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Root returns the root node, or nil for an empty tree.
func (t *Tree) Root() *Node {
	if len(t.nodes) == 0 {
		return nil
	}
	return t.nodes[0]
}

// FindNode returns the node with exactly the given code.
func (t *Tree) FindNode(code string) (*Node, bool) {
	i, ok := t.byCode[code]
	if !ok {
		return nil, false
	}
	return t.nodes[i], true
}

// Parent returns the parent of n, or false for the root.
func (t *Tree) Parent(n *Node) (*Node, bool) {
	if !t.owns(n) || n.parent < 0 {
		return nil, false
	}
	return t.nodes[n.parent], true
}

// Children returns the children of n in input order.
func (t *Tree) Children(n *Node) []*Node {
	if !t.owns(n) {
		return nil
	}
	out := make([]*Node, len(n.children))
	for i, c := range n.children {
		out[i] = t.nodes[c]
	}
	return out
}

// TissueAncestorOf walks parent links from n (inclusive) to the nearest
// tissue-level node. The walk is bounded by the node count.
func (t *Tree) TissueAncestorOf(n *Node) (*Node, bool) {
	if !t.owns(n) {
		return nil, false
	}
	cur := n.index
	for steps := 0; cur >= 0 && steps <= len(t.nodes); steps++ {
		node := t.nodes[cur]
		if node.Tissue {
			return node, true
		}
		cur = node.parent
	}
	return nil, false
}

// TissueNodes returns all tissue-level nodes in pre-order.
func (t *Tree) TissueNodes() []*Node {
	out := make([]*Node, len(t.tissue))
	for i, idx := range t.tissue {
		out[i] = t.nodes[idx]
	}
	return out
}

// owns reports whether n was built by this tree.
func (t *Tree) owns(n *Node) bool {
	return n != nil && n.index >= 0 && n.index < len(t.nodes) && t.nodes[n.index] == n
}
