package render

import (
	"encoding/json"

	"github.com/a2ui-go/a2ui/internal/datamodel"
	"github.com/a2ui-go/a2ui/internal/schema"
)

// ResolvedAction is an Action with its context BoundValues already resolved
// against a node's context path (spec.md §3.1, §6).
type ResolvedAction struct {
	Name    string
	Context map[string]any
}

// Tree holds one surface's component map and renders it against a data
// model Store (spec.md §4.3). A Tree is not safe for concurrent use from
// multiple goroutines without external synchronization; callers typically
// serialize rendering behind the same dispatcher goroutine that owns the
// surface (see internal/session).
type Tree struct {
	catalog    *Catalog
	store      *datamodel.Store
	components map[string]schema.Component
	root       string
}

// NewTree creates a Tree bound to catalog and store. Both must outlive the
// Tree.
func NewTree(catalog *Catalog, store *datamodel.Store) *Tree {
	return &Tree{
		catalog:    catalog,
		store:      store,
		components: make(map[string]schema.Component),
	}
}

// Merge applies a SurfaceUpdate's component list: each component with an ID
// already present is replaced, new ones are added (spec.md §4.3 — surface
// updates are cumulative, not a full replace).
func (t *Tree) Merge(components []schema.Component) {
	for _, c := range components {
		t.components[c.ID] = c
	}
}

// SetRoot sets the component ID to render from, per a BeginRendering message.
func (t *Tree) SetRoot(componentID string) {
	t.root = componentID
}

// Root returns the current render root, or "" if BeginRendering has not
// arrived yet.
func (t *Tree) Root() string {
	return t.root
}

// Snapshot builds the retained Node tree from the current root. It returns
// nil if no root has been set yet (spec.md §4.3: rendering is inert until
// BeginRendering names one).
func (t *Tree) Snapshot() *Node {
	if t.root == "" {
		return nil
	}
	return t.buildNode(t.root, "/")
}

func (t *Tree) buildNode(componentID, contextPath string) *Node {
	comp, ok := t.components[componentID]
	if !ok {
		return &Node{ID: componentID, Diagnostic: "unknown component id: " + componentID, ContextPath: contextPath}
	}
	if !t.catalog.Known(comp.Type) {
		return &Node{ID: comp.ID, Type: comp.Type, Diagnostic: "unregistered component type: " + comp.Type, ContextPath: contextPath}
	}

	node := &Node{
		ID:          comp.ID,
		Type:        comp.Type,
		Props:       make(map[string]any),
		ContextPath: contextPath,
	}

	for key, raw := range comp.Properties {
		if key == "children" {
			continue // handled below, not a plain prop
		}
		if comp.Type == schema.TypeButton && key == "action" {
			continue // resolved by buildButton below, once emptiness is known
		}
		node.Props[key] = t.resolveProperty(raw, contextPath)
	}

	if children, ok := comp.ChildrenProp("children"); ok {
		node.Children = t.buildChildren(children, contextPath)
	}

	if comp.Type == schema.TypeButton {
		t.buildButton(node, comp, contextPath)
	}

	return node
}

// buildButton resolves a Button's single child component and applies the
// spec's hidden-when-empty invariant (spec.md §4.3, §8.1 invariant 6): a
// button whose child renders to empty text is marked Hidden and its action
// is withheld from Props entirely, so an activation has nothing to emit.
func (t *Tree) buildButton(node *Node, comp schema.Component, contextPath string) {
	childID, _ := comp.StringProp("child")
	if childID == "" {
		return
	}
	child := t.buildNode(childID, contextPath)
	node.Children = []*Node{child}

	if child.Type == schema.TypeText {
		if text, ok := child.Props["text"].(string); ok && text == "" {
			node.Hidden = true
		}
	}

	if node.Hidden {
		return
	}
	if raw, ok := comp.Properties["action"]; ok {
		node.Props["action"] = t.resolveProperty(raw, contextPath)
	}
}

func (t *Tree) buildChildren(children schema.Children, contextPath string) []*Node {
	if children.IsTemplate() {
		return t.buildTemplateChildren(children.Template, contextPath)
	}
	nodes := make([]*Node, 0, len(children.ExplicitList))
	for _, id := range children.ExplicitList {
		nodes = append(nodes, t.buildNode(id, contextPath))
	}
	return nodes
}

func (t *Tree) buildTemplateChildren(tmpl *schema.Template, contextPath string) []*Node {
	var listPath string
	if datamodel.IsAbsolute(tmpl.DataBinding) {
		listPath = datamodel.Normalize(tmpl.DataBinding)
	} else {
		listPath = datamodel.Join(contextPath, tmpl.DataBinding)
	}

	entries := t.store.GetEntries(listPath)
	if len(entries) == 0 {
		return nil
	}
	nodes := make([]*Node, 0, len(entries))
	for _, entry := range entries {
		nodes = append(nodes, t.buildNode(tmpl.ComponentID, entry.Path))
	}
	return nodes
}

// boundValueProbe mirrors schema.BoundValue's wire shape for generic
// per-property resolution (a property's raw JSON doesn't carry its own
// static type — the renderer has to sniff it, same as the validator does).
type boundValueProbe struct {
	LiteralString *string  `json:"literalString"`
	LiteralNumber *float64 `json:"literalNumber"`
	LiteralBool   *bool    `json:"literalBoolean"`
	Path          *string  `json:"path"`
}

type actionProbe struct {
	Name    string                `json:"name"`
	Context []schema.ActionParam `json:"context"`
}

// resolveProperty resolves one raw component property for display: a
// BoundValue resolves through the store, an Action resolves its context
// params, anything else decodes as a plain JSON value (spec.md §4.1, §6).
func (t *Tree) resolveProperty(raw json.RawMessage, contextPath string) any {
	var bv boundValueProbe
	if json.Unmarshal(raw, &bv) == nil && isBoundValueShape(bv) {
		return t.store.Resolve(schema.BoundValue{
			LiteralString: bv.LiteralString,
			LiteralNumber: bv.LiteralNumber,
			LiteralBool:   bv.LiteralBool,
			Path:          bv.Path,
		}, contextPath)
	}

	var act actionProbe
	if json.Unmarshal(raw, &act) == nil && act.Name != "" {
		resolved := &ResolvedAction{Name: act.Name, Context: make(map[string]any, len(act.Context))}
		for _, p := range act.Context {
			resolved.Context[p.Key] = t.store.Resolve(p.Value, contextPath)
		}
		return resolved
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err == nil {
		return generic
	}
	return nil
}

func isBoundValueShape(bv boundValueProbe) bool {
	set := 0
	if bv.LiteralString != nil {
		set++
	}
	if bv.LiteralNumber != nil {
		set++
	}
	if bv.LiteralBool != nil {
		set++
	}
	if bv.Path != nil {
		set++
	}
	return set == 1
}
