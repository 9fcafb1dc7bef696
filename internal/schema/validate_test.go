package schema_test

import (
	"testing"

	"github.com/a2ui-go/a2ui/internal/schema"
)

func TestDecodeEnvelope_SurfaceUpdate(t *testing.T) {
	raw := []byte(`{"surfaceUpdate":{"surfaceId":"main","components":[
		{"id":"root","component":{"Text":{"text":{"literalString":"hi"}}}}
	]}}`)

	msg, verr := schema.DecodeEnvelope(raw)
	if verr != nil {
		t.Fatalf("DecodeEnvelope() error = %v", verr)
	}
	if msg.Kind != schema.KindSurfaceUpdate {
		t.Fatalf("Kind = %v, want KindSurfaceUpdate", msg.Kind)
	}
	if msg.SurfaceUpdate.SurfaceID != "main" {
		t.Errorf("SurfaceID = %q, want main", msg.SurfaceUpdate.SurfaceID)
	}
	if len(msg.SurfaceUpdate.Components) != 1 {
		t.Fatalf("len(Components) = %d, want 1", len(msg.SurfaceUpdate.Components))
	}
	c := msg.SurfaceUpdate.Components[0]
	if c.ID != "root" || c.Type != schema.TypeText {
		t.Errorf("component = %+v, want id=root type=Text", c)
	}
	bv, ok := c.BoundValueProp("text")
	if !ok || bv.Kind() != schema.BoundValueString || *bv.LiteralString != "hi" {
		t.Errorf("text prop = %+v, ok=%v", bv, ok)
	}
}

func TestDecodeEnvelope_UnknownEnvelope(t *testing.T) {
	msg, verr := schema.DecodeEnvelope([]byte(`{"somethingElse":{}}`))
	if verr == nil {
		t.Fatal("expected validation error for unrecognized envelope")
	}
	if msg.Kind != schema.KindUnknown {
		t.Errorf("Kind = %v, want KindUnknown", msg.Kind)
	}
	if msg.Raw == nil {
		t.Error("Raw should still be populated for best-effort application")
	}
}

func TestDecodeEnvelope_MissingSurfaceID(t *testing.T) {
	_, verr := schema.DecodeEnvelope([]byte(`{"beginRendering":{"root":"x"}}`))
	if verr == nil {
		t.Fatal("expected validation error for missing surfaceId")
	}
	found := false
	for _, iss := range verr.Issues {
		if iss.Path == "$.beginRendering.surfaceId" {
			found = true
		}
	}
	if !found {
		t.Errorf("issues = %+v, want one for $.beginRendering.surfaceId", verr.Issues)
	}
}

func TestBoundValue_Kind(t *testing.T) {
	s := "x"
	n := 1.0
	tests := []struct {
		name string
		bv   schema.BoundValue
		want schema.BoundValueKind
	}{
		{"string", schema.BoundValue{LiteralString: &s}, schema.BoundValueString},
		{"number", schema.BoundValue{LiteralNumber: &n}, schema.BoundValueNumber},
		{"zero", schema.BoundValue{}, schema.BoundValueInvalid},
		{"multiple", schema.BoundValue{LiteralString: &s, LiteralNumber: &n}, schema.BoundValueInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bv.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueMap_Decode(t *testing.T) {
	s := "Alpha"
	n := 3.0
	vm := schema.ValueMap{
		Key: "items",
		ValueMap: []schema.ValueMap{
			{Key: "title", ValueString: &s},
			{Key: "count", ValueNumber: &n},
		},
	}
	decoded := vm.Decode()
	m, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("Decode() = %T, want map[string]any", decoded)
	}
	if m["title"] != "Alpha" || m["count"] != 3.0 {
		t.Errorf("decoded = %+v", m)
	}
}

func TestValueMap_Decode_NoVariantSet(t *testing.T) {
	vm := schema.ValueMap{Key: "x"}
	if got := vm.Decode(); got != nil {
		t.Errorf("Decode() = %v, want nil", got)
	}
}
