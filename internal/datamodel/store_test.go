package datamodel_test

import (
	"testing"

	"github.com/a2ui-go/a2ui/internal/datamodel"
	"github.com/a2ui-go/a2ui/internal/schema"
)

func TestSetThenGet_RoundTrip(t *testing.T) {
	s := datamodel.New()
	s.Set("/count", 3.0, false)

	got, ok := s.Get("/count")
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if got != 3.0 {
		t.Errorf("Get() = %v, want 3.0", got)
	}
}

func TestGet_MissingPath(t *testing.T) {
	s := datamodel.New()
	if _, ok := s.Get("/nope"); ok {
		t.Error("Get() ok = true for a path never written, want false")
	}
}

func TestGet_ComposesImmediateChildren(t *testing.T) {
	s := datamodel.New()
	s.Set("/user/name", "Ada", false)
	s.Set("/user/age", 36.0, false)

	got, ok := s.Get("/user")
	if !ok {
		t.Fatal("Get(/user) ok = false, want true")
	}
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("Get(/user) = %T, want map[string]any", got)
	}
	if m["name"] != "Ada" || m["age"] != 36.0 {
		t.Errorf("composed object = %+v", m)
	}
}

func TestDelete_RemovesDescendants(t *testing.T) {
	s := datamodel.New()
	s.Set("/user/name", "Ada", false)
	s.Set("/user/age", 36.0, false)

	s.Delete("/user")

	if _, ok := s.Get("/user/name"); ok {
		t.Error("child survived Delete of its ancestor")
	}
	if _, ok := s.Get("/user"); ok {
		t.Error("Get(/user) after delete should be absent")
	}
}

func TestDelete_Idempotent(t *testing.T) {
	s := datamodel.New()
	s.Delete("/never-written")
	s.Delete("/never-written")
}

func TestDirty_SuppressesServerWrite(t *testing.T) {
	s := datamodel.New()
	s.Set("/name", "typed by user", true)

	s.Update("/", []schema.ValueMap{
		{Key: "name", ValueString: strPtr("from server")},
	})

	got, _ := s.Get("/name")
	if got != "typed by user" {
		t.Errorf("server write overwrote a dirty path: got %v", got)
	}
}

func TestDirty_ClearAllowsServerWrite(t *testing.T) {
	s := datamodel.New()
	s.Set("/name", "typed by user", true)
	s.ClearDirty("/name")

	s.Update("/", []schema.ValueMap{
		{Key: "name", ValueString: strPtr("from server")},
	})

	got, _ := s.Get("/name")
	if got != "from server" {
		t.Errorf("Get(/name) = %v, want %q after dirty clear", got, "from server")
	}
}

func TestClearAllDirty(t *testing.T) {
	s := datamodel.New()
	s.Set("/a", "1", true)
	s.Set("/b", "2", true)
	s.ClearAllDirty()

	if paths := s.GetDirtyPaths(); len(paths) != 0 {
		t.Errorf("GetDirtyPaths() after ClearAllDirty = %v, want empty", paths)
	}
}

func TestUpdate_ItemsReplaceClearsStaleDescendants(t *testing.T) {
	s := datamodel.New()
	s.Update("/list", []schema.ValueMap{
		{Key: "items", ValueMap: []schema.ValueMap{
			{Key: "0", ValueMap: []schema.ValueMap{{Key: "title", ValueString: strPtr("one")}}},
			{Key: "1", ValueMap: []schema.ValueMap{{Key: "title", ValueString: strPtr("two")}}},
		}},
	})
	if _, ok := s.Get("/list/items/1/title"); !ok {
		t.Fatal("expected /list/items/1/title to exist after first Update")
	}

	// Replace with a single, shorter list.
	s.Update("/list", []schema.ValueMap{
		{Key: "items", ValueMap: []schema.ValueMap{
			{Key: "0", ValueMap: []schema.ValueMap{{Key: "title", ValueString: strPtr("only")}}},
		}},
	})

	if _, ok := s.Get("/list/items/1/title"); ok {
		t.Error("stale row /list/items/1 survived a replacing Update")
	}
	got, ok := s.Get("/list/items/0/title")
	if !ok || got != "only" {
		t.Errorf("Get(/list/items/0/title) = %v, ok=%v, want %q", got, ok, "only")
	}
}

func TestUpdate_NestedValueMapStoredAtEveryLevel(t *testing.T) {
	s := datamodel.New()
	s.Update("/", []schema.ValueMap{
		{Key: "user", ValueMap: []schema.ValueMap{
			{Key: "name", ValueString: strPtr("Ada")},
		}},
	})

	leaf, ok := s.Get("/user/name")
	if !ok || leaf != "Ada" {
		t.Errorf("Get(/user/name) = %v, ok=%v, want Ada", leaf, ok)
	}
	whole, ok := s.Get("/user")
	if !ok {
		t.Fatal("Get(/user) ok = false, want true (decoded object stored at container path)")
	}
	m, ok := whole.(map[string]any)
	if !ok || m["name"] != "Ada" {
		t.Errorf("Get(/user) = %+v", whole)
	}
}

func TestBatch_SingleNotificationPerTouchedPath(t *testing.T) {
	s := datamodel.New()
	var notifications []string
	s.Subscribe(func(path string, _ any, _ bool) {
		notifications = append(notifications, path)
	})

	s.Batch(func() {
		s.Set("/a", 1.0, false)
		s.Set("/a", 2.0, false)
		s.Set("/b", "x", false)
	})

	if len(notifications) != 2 {
		t.Fatalf("notifications = %v, want 2 entries (one per touched path)", notifications)
	}
	if notifications[0] != "/a" || notifications[1] != "/b" {
		t.Errorf("notifications = %v, want [/a /b] in first-touch order", notifications)
	}
}

func TestBatch_NotifiesEvenOnPanic(t *testing.T) {
	s := datamodel.New()
	var got string
	s.Subscribe(func(path string, _ any, _ bool) { got = path })

	func() {
		defer func() { recover() }()
		s.Batch(func() {
			s.Set("/x", 1.0, false)
			panic("boom")
		})
	}()

	if got != "/x" {
		t.Errorf("subscriber notified with %q, want /x even though Batch's fn panicked", got)
	}
}

func TestSubscribe_DisposerIsIdempotent(t *testing.T) {
	s := datamodel.New()
	calls := 0
	dispose := s.Subscribe(func(string, any, bool) { calls++ })
	dispose()
	dispose()

	s.Set("/a", 1.0, false)
	if calls != 0 {
		t.Errorf("calls = %d after dispose, want 0", calls)
	}
}

func TestResolve_Literal(t *testing.T) {
	s := datamodel.New()
	str := "hello"
	got := s.Resolve(schema.BoundValue{LiteralString: &str}, "/irrelevant")
	if got != "hello" {
		t.Errorf("Resolve(literal) = %v, want hello", got)
	}
}

func TestResolve_RelativePathUsesContext(t *testing.T) {
	s := datamodel.New()
	s.Set("/list/items/2/title", "Gamma", false)
	path := "title"

	got := s.Resolve(schema.BoundValue{Path: &path}, "/list/items/2")
	if got != "Gamma" {
		t.Errorf("Resolve(relative path) = %v, want Gamma", got)
	}
}

func TestResolve_AbsolutePathIgnoresContext(t *testing.T) {
	s := datamodel.New()
	s.Set("/global/theme", "dark", false)
	path := "/global/theme"

	got := s.Resolve(schema.BoundValue{Path: &path}, "/list/items/2")
	if got != "dark" {
		t.Errorf("Resolve(absolute path) = %v, want dark", got)
	}
}

func TestGetEntries_SortedByKey(t *testing.T) {
	s := datamodel.New()
	s.Set("/items/b", "second", false)
	s.Set("/items/a", "first", false)

	entries := s.GetEntries("/items")
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Key != "a" || entries[1].Key != "b" {
		t.Errorf("entries = %+v, want sorted [a b]", entries)
	}
}

func TestGetSnapshot_IsIndependentCopy(t *testing.T) {
	s := datamodel.New()
	s.Set("/a", 1.0, false)

	snap := s.GetSnapshot()
	s.Set("/b", 2.0, false)

	if _, ok := snap["/b"]; ok {
		t.Error("GetSnapshot() result mutated by a later Set")
	}
	if snap["/a"] != 1.0 {
		t.Errorf("snap[/a] = %v, want 1.0", snap["/a"])
	}
}

func strPtr(s string) *string { return &s }
