package render_test

import (
	"encoding/json"
	"testing"

	"github.com/a2ui-go/a2ui/internal/datamodel"
	"github.com/a2ui-go/a2ui/internal/render"
	"github.com/a2ui-go/a2ui/internal/schema"
)

func mustComponents(t *testing.T, raw string) []schema.Component {
	t.Helper()
	var comps []schema.Component
	if err := json.Unmarshal([]byte(raw), &comps); err != nil {
		t.Fatalf("decode components: %v", err)
	}
	return comps
}

func TestSnapshot_NilWithoutRoot(t *testing.T) {
	tree := render.NewTree(render.DefaultCatalog(), datamodel.New())
	if got := tree.Snapshot(); got != nil {
		t.Errorf("Snapshot() = %+v, want nil before BeginRendering", got)
	}
}

func TestSnapshot_ResolvesLiteralAndBoundValue(t *testing.T) {
	store := datamodel.New()
	store.Set("/greeting", "hi Ada", false)

	comps := mustComponents(t, `[
		{"id":"root","component":{"Text":{"text":{"path":"greeting"}}}}
	]`)

	tree := render.NewTree(render.DefaultCatalog(), store)
	tree.Merge(comps)
	tree.SetRoot("root")

	node := tree.Snapshot()
	if node == nil {
		t.Fatal("Snapshot() = nil")
	}
	if node.IsDiagnostic() {
		t.Fatalf("unexpected diagnostic: %s", node.Diagnostic)
	}
	if node.Props["text"] != "hi Ada" {
		t.Errorf("Props[text] = %v, want %q", node.Props["text"], "hi Ada")
	}
}

func TestSnapshot_UnknownComponentID(t *testing.T) {
	tree := render.NewTree(render.DefaultCatalog(), datamodel.New())
	tree.SetRoot("missing")

	node := tree.Snapshot()
	if !node.IsDiagnostic() {
		t.Error("expected diagnostic node for a missing component id")
	}
}

func TestSnapshot_UnregisteredType(t *testing.T) {
	store := datamodel.New()
	comps := mustComponents(t, `[{"id":"root","component":{"Widget":{}}}]`)

	tree := render.NewTree(render.DefaultCatalog(), store)
	tree.Merge(comps)
	tree.SetRoot("root")

	node := tree.Snapshot()
	if !node.IsDiagnostic() {
		t.Error("expected diagnostic node for an unregistered type")
	}
}

func TestSnapshot_ExplicitChildren(t *testing.T) {
	store := datamodel.New()
	comps := mustComponents(t, `[
		{"id":"root","component":{"Column":{"children":{"explicitList":["a","b"]}}}},
		{"id":"a","component":{"Text":{"text":{"literalString":"A"}}}},
		{"id":"b","component":{"Text":{"text":{"literalString":"B"}}}}
	]`)

	tree := render.NewTree(render.DefaultCatalog(), store)
	tree.Merge(comps)
	tree.SetRoot("root")

	node := tree.Snapshot()
	if len(node.Children) != 2 {
		t.Fatalf("len(Children) = %d, want 2", len(node.Children))
	}
	if node.Children[0].Props["text"] != "A" || node.Children[1].Props["text"] != "B" {
		t.Errorf("children props = %+v, %+v", node.Children[0].Props, node.Children[1].Props)
	}
}

func TestSnapshot_TemplateExpansionPropagatesContextPath(t *testing.T) {
	store := datamodel.New()
	store.Update("/", []schema.ValueMap{
		{Key: "rows", ValueMap: []schema.ValueMap{
			{Key: "0", ValueMap: []schema.ValueMap{{Key: "label", ValueString: strPtr("First")}}},
			{Key: "1", ValueMap: []schema.ValueMap{{Key: "label", ValueString: strPtr("Second")}}},
		}},
	})

	comps := mustComponents(t, `[
		{"id":"list","component":{"List":{"children":{"template":{"componentId":"row","dataBinding":"rows"}}}}},
		{"id":"row","component":{"Text":{"text":{"path":"label"}}}}
	]`)

	tree := render.NewTree(render.DefaultCatalog(), store)
	tree.Merge(comps)
	tree.SetRoot("list")

	node := tree.Snapshot()
	if len(node.Children) != 2 {
		t.Fatalf("len(Children) = %d, want 2", len(node.Children))
	}
	if node.Children[0].Props["text"] != "First" {
		t.Errorf("Children[0].Props[text] = %v, want First", node.Children[0].Props["text"])
	}
	if node.Children[1].Props["text"] != "Second" {
		t.Errorf("Children[1].Props[text] = %v, want Second", node.Children[1].Props["text"])
	}
	if node.Children[0].ContextPath != "/rows/0" {
		t.Errorf("Children[0].ContextPath = %q, want /rows/0", node.Children[0].ContextPath)
	}
}

func TestSnapshot_ButtonResolvesActionAndChild(t *testing.T) {
	store := datamodel.New()
	store.Set("/itemId", "42", false)

	comps := mustComponents(t, `[
		{"id":"root","component":{"Button":{
			"child":"label",
			"action":{"name":"select","context":[{"key":"id","value":{"path":"itemId"}}]}
		}}},
		{"id":"label","component":{"Text":{"text":{"literalString":"Go"}}}}
	]`)

	tree := render.NewTree(render.DefaultCatalog(), store)
	tree.Merge(comps)
	tree.SetRoot("root")

	node := tree.Snapshot()
	if node.Hidden {
		t.Fatal("Hidden = true, want false for a button with non-empty child text")
	}
	if len(node.Children) != 1 || node.Children[0].Props["text"] != "Go" {
		t.Fatalf("Children = %+v, want one Text child with text %q", node.Children, "Go")
	}
	action, ok := node.Props["action"].(*render.ResolvedAction)
	if !ok {
		t.Fatalf("Props[action] = %T, want *render.ResolvedAction", node.Props["action"])
	}
	if action.Name != "select" {
		t.Errorf("action.Name = %q, want select", action.Name)
	}
	if action.Context["id"] != "42" {
		t.Errorf("action.Context[id] = %v, want 42", action.Context["id"])
	}
}

func TestSnapshot_ButtonHiddenWhenChildTextEmpty(t *testing.T) {
	store := datamodel.New()

	comps := mustComponents(t, `[
		{"id":"root","component":{"Button":{
			"child":"label",
			"action":{"name":"select"}
		}}},
		{"id":"label","component":{"Text":{"text":{"literalString":""}}}}
	]`)

	tree := render.NewTree(render.DefaultCatalog(), store)
	tree.Merge(comps)
	tree.SetRoot("root")

	node := tree.Snapshot()
	if !node.Hidden {
		t.Fatal("Hidden = false, want true for a button whose child resolves to empty text")
	}
	if _, ok := node.Props["action"]; ok {
		t.Errorf("Props[action] = %v, want no action set when the button is hidden", node.Props["action"])
	}
}

func TestMerge_CumulativeNotReplace(t *testing.T) {
	store := datamodel.New()
	tree := render.NewTree(render.DefaultCatalog(), store)

	tree.Merge(mustComponents(t, `[{"id":"a","component":{"Text":{"text":{"literalString":"old"}}}}]`))
	tree.Merge(mustComponents(t, `[{"id":"b","component":{"Text":{"text":{"literalString":"new"}}}}]`))
	tree.SetRoot("a")

	node := tree.Snapshot()
	if node.IsDiagnostic() {
		t.Fatalf("component a should still be present after merging an unrelated update: %s", node.Diagnostic)
	}
}

func strPtr(s string) *string { return &s }
