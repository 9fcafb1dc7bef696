package schema

import "encoding/json"

// ComponentType names the single key of a Component's type-discriminated
// mapping (spec.md §3.1). New types beyond the minimum catalog may be
// registered by host code (§6.5); the schema layer never closes this set.
type ComponentType = string

// Minimum component catalog (spec.md §4.3).
const (
	TypeText       ComponentType = "Text"
	TypeButton     ComponentType = "Button"
	TypeColumn     ComponentType = "Column"
	TypeRow        ComponentType = "Row"
	TypeCard       ComponentType = "Card"
	TypeList       ComponentType = "List"
	TypeIcon       ComponentType = "Icon"
	TypeDivider    ComponentType = "Divider"
	TypeCheckBox   ComponentType = "CheckBox"
	TypeTextField  ComponentType = "TextField"
	TypeColorSwatch ComponentType = "ColorSwatch"
)

// Component is an addressable UI node (spec.md §3.1). Type is the single key
// of the wire's `component` mapping; Properties holds that key's value,
// decoded into a generic map because each type's property schema differs and
// the renderer's catalog is what knows how to interpret them (§9 "dynamic
// dispatch over component types").
type Component struct {
	ID         string                     `json:"id"`
	Type       ComponentType              `json:"-"`
	Properties map[string]json.RawMessage `json:"-"`
}

// StringProp decodes a plain string property.
func (c Component) StringProp(key string) (string, bool) {
	raw, ok := c.Properties[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// BoundValueProp decodes a BoundValue-shaped property.
func (c Component) BoundValueProp(key string) (BoundValue, bool) {
	raw, ok := c.Properties[key]
	if !ok {
		return BoundValue{}, false
	}
	var bv BoundValue
	if err := json.Unmarshal(raw, &bv); err != nil {
		return BoundValue{}, false
	}
	return bv, true
}

// ChildrenProp decodes a Children-shaped property.
func (c Component) ChildrenProp(key string) (Children, bool) {
	raw, ok := c.Properties[key]
	if !ok {
		return Children{}, false
	}
	var ch Children
	if err := json.Unmarshal(raw, &ch); err != nil {
		return Children{}, false
	}
	return ch, true
}

// ActionProp decodes an Action-shaped property.
func (c Component) ActionProp(key string) (Action, bool) {
	raw, ok := c.Properties[key]
	if !ok {
		return Action{}, false
	}
	var a Action
	if err := json.Unmarshal(raw, &a); err != nil {
		return Action{}, false
	}
	return a, true
}

// StringSliceProp decodes a []string-shaped property (e.g. explicit id lists
// given directly instead of via a Children wrapper).
func (c Component) StringSliceProp(key string) ([]string, bool) {
	raw, ok := c.Properties[key]
	if !ok {
		return nil, false
	}
	var s []string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	return s, true
}

// Children is either an explicit ordered id list or a template declaration
// (spec.md §3.1).
type Children struct {
	ExplicitList []string  `json:"explicitList,omitempty"`
	Template     *Template `json:"template,omitempty"`
}

// Template declares that the referenced component is instantiated once per
// immediate entry found under DataBinding at render time (spec.md §3.1, §4.3).
type Template struct {
	ComponentID string `json:"componentId"`
	DataBinding string `json:"dataBinding"`
}

// IsTemplate reports whether Children uses template expansion rather than an
// explicit id list.
func (c Children) IsTemplate() bool {
	return c.Template != nil
}

// Action is a named user intent plus a list of named BoundValues resolved
// against the current context when the action fires (spec.md §3.1).
type Action struct {
	Name    string        `json:"name"`
	Context []ActionParam `json:"context,omitempty"`
}

// ActionParam is one named, bound context value of an Action.
type ActionParam struct {
	Key   string     `json:"key"`
	Value BoundValue `json:"value"`
}

// componentWire is the wire shape of a Component: a single-key "component"
// mapping whose key is the type and whose value is the type's properties.
type componentWire struct {
	ID        string                     `json:"id"`
	Component map[string]json.RawMessage `json:"component"`
}

// UnmarshalJSON decodes the wire shape into the type-discriminated Component.
func (c *Component) UnmarshalJSON(data []byte) error {
	var wire componentWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	c.ID = wire.ID
	for typ, raw := range wire.Component {
		c.Type = typ
		var props map[string]json.RawMessage
		if err := json.Unmarshal(raw, &props); err != nil {
			return err
		}
		c.Properties = props
		break // exactly one key per spec.md §3.1; extras are ignored rather than erroring (best-effort, §4.2)
	}
	return nil
}

// MarshalJSON re-encodes the Component into its wire shape.
func (c Component) MarshalJSON() ([]byte, error) {
	propsJSON, err := json.Marshal(c.Properties)
	if err != nil {
		return nil, err
	}
	wire := struct {
		ID        string                     `json:"id"`
		Component map[string]json.RawMessage `json:"component"`
	}{
		ID:        c.ID,
		Component: map[string]json.RawMessage{c.Type: propsJSON},
	}
	return json.Marshal(wire)
}
