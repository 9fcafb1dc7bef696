package render

// Node is one retained-mode tree node: the resolved, walkable equivalent of a
// DOM element (spec.md §4.3). Unlike a Component, every bound property has
// already been resolved against the data model for the node's context path.
type Node struct {
	ID       string
	Type     string
	Props    map[string]any
	Children []*Node

	// ContextPath is the data-model path this node (and any BoundValue on it)
	// was resolved against. For a node produced by template expansion this is
	// the list item's own path, not the template's declaring component's path.
	ContextPath string

	// Diagnostic is non-empty when this node is a placeholder standing in for
	// a component the renderer could not build — an unknown type, a dangling
	// child reference, or a malformed template binding (spec.md §4.3's
	// "render a diagnostic placeholder rather than fail the whole tree" rule).
	Diagnostic string

	// Hidden is set on a Button node whose single child resolves to empty
	// text: per spec.md §4.3/§8.1 invariant 6, such a button is hidden and
	// emits no action on activation, so Props["action"] is left unset too.
	Hidden bool
}

// IsDiagnostic reports whether this node is a placeholder rather than a
// resolved component.
func (n *Node) IsDiagnostic() bool {
	return n.Diagnostic != ""
}
