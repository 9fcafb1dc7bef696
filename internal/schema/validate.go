package schema

import (
	"encoding/json"
	"fmt"
)

// Issue is one path-qualified validation problem (spec.md §4.2).
type Issue struct {
	Path    string
	Message string
}

// ValidationError carries a structured, path-qualified issue list. Validation
// is advisory (spec.md §4.2): the transport records a ValidationError for
// observability but still attempts best-effort application of the message.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("%s: %s (and %d more)", e.Issues[0].Path, e.Issues[0].Message, len(e.Issues)-1)
}

func (e *ValidationError) add(path, msg string) {
	e.Issues = append(e.Issues, Issue{Path: path, Message: msg})
}

// DecodeEnvelope parses a single JSON protocol message and validates it.
//
// It never returns a nil Message: on a recognizable envelope with validation
// issues, Message is still populated from the raw payload (best-effort
// application, spec.md §4.2) and the *ValidationError carries the issues. On
// a completely unrecognized envelope shape, Message.Kind is KindUnknown and
// Raw holds whatever top-level object was parsed, so callers can still choose
// to discard it.
func DecodeEnvelope(data []byte) (Message, *ValidationError) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Message{Kind: KindUnknown}, &ValidationError{Issues: []Issue{{Path: "$", Message: "not a JSON object: " + err.Error()}}}
	}

	msg := Message{Kind: KindUnknown, Raw: raw}
	verr := &ValidationError{}

	switch {
	case raw["surfaceUpdate"] != nil:
		msg.Kind = KindSurfaceUpdate
		var su SurfaceUpdate
		if err := json.Unmarshal(raw["surfaceUpdate"], &su); err != nil {
			verr.add("$.surfaceUpdate", "malformed: "+err.Error())
		}
		validateSurfaceUpdate(&su, verr)
		msg.SurfaceUpdate = &su

	case raw["dataModelUpdate"] != nil:
		msg.Kind = KindDataModelUpdate
		var dmu DataModelUpdate
		if err := json.Unmarshal(raw["dataModelUpdate"], &dmu); err != nil {
			verr.add("$.dataModelUpdate", "malformed: "+err.Error())
		}
		validateDataModelUpdate(&dmu, verr)
		msg.DataModelUpdate = &dmu

	case raw["beginRendering"] != nil:
		msg.Kind = KindBeginRendering
		var br BeginRendering
		if err := json.Unmarshal(raw["beginRendering"], &br); err != nil {
			verr.add("$.beginRendering", "malformed: "+err.Error())
		}
		if br.SurfaceID == "" {
			verr.add("$.beginRendering.surfaceId", "required")
		}
		if br.Root == "" {
			verr.add("$.beginRendering.root", "required")
		}
		msg.BeginRendering = &br

	case raw["deleteSurface"] != nil:
		msg.Kind = KindDeleteSurface
		var ds DeleteSurface
		if err := json.Unmarshal(raw["deleteSurface"], &ds); err != nil {
			verr.add("$.deleteSurface", "malformed: "+err.Error())
		}
		if ds.SurfaceID == "" {
			verr.add("$.deleteSurface.surfaceId", "required")
		}
		msg.DeleteSurface = &ds

	default:
		verr.add("$", "unrecognized envelope: expected one of surfaceUpdate/dataModelUpdate/beginRendering/deleteSurface")
	}

	if len(verr.Issues) == 0 {
		return msg, nil
	}
	return msg, verr
}

func validateSurfaceUpdate(su *SurfaceUpdate, verr *ValidationError) {
	if su.SurfaceID == "" {
		verr.add("$.surfaceUpdate.surfaceId", "required")
	}
	for i, c := range su.Components {
		path := fmt.Sprintf("$.surfaceUpdate.components[%d]", i)
		if c.ID == "" {
			verr.add(path+".id", "required")
		}
		if c.Type == "" {
			verr.add(path+".component", "must have exactly one type key")
		}
		validateComponentBoundValues(c, path, verr)
	}
}

// validateComponentBoundValues checks any BoundValue/Action-shaped
// properties it can recognize by convention, including each BoundValue in an
// Action's context. It does not consult the renderer's catalog: every
// component's properties are checked the same way whatever its type, and an
// unknown type is never itself an issue (per §4.3's "unknown types render a
// diagnostic placeholder" policy — the validator never rejects them).
func validateComponentBoundValues(c Component, path string, verr *ValidationError) {
	for key, raw := range c.Properties {
		var probe struct {
			LiteralString *string  `json:"literalString"`
			LiteralNumber *float64 `json:"literalNumber"`
			LiteralBool   *bool    `json:"literalBoolean"`
			Path          *string  `json:"path"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			continue
		}
		set := 0
		if probe.LiteralString != nil {
			set++
		}
		if probe.LiteralNumber != nil {
			set++
		}
		if probe.LiteralBool != nil {
			set++
		}
		if probe.Path != nil {
			set++
		}
		if set == 0 {
			// Not a BoundValue itself; an Action's context values are.
			var act Action
			if json.Unmarshal(raw, &act) == nil && act.Name != "" {
				for i, p := range act.Context {
					if p.Value.Kind() == BoundValueInvalid {
						verr.add(fmt.Sprintf("%s.%s.context[%d].value", path, key, i), "BoundValue must set exactly one variant")
					}
				}
			}
			continue
		}
		if set > 1 {
			verr.add(fmt.Sprintf("%s.%s", path, key), "BoundValue must set exactly one variant")
		}
	}
}

func validateDataModelUpdate(dmu *DataModelUpdate, verr *ValidationError) {
	if dmu.SurfaceID == "" {
		verr.add("$.dataModelUpdate.surfaceId", "required")
	}
	for i, vm := range dmu.Contents {
		validateValueMap(vm, fmt.Sprintf("$.dataModelUpdate.contents[%d]", i), verr)
	}
}

func validateValueMap(vm ValueMap, path string, verr *ValidationError) {
	if vm.Key == "" {
		verr.add(path+".key", "required")
	}
	set := 0
	if vm.ValueString != nil {
		set++
	}
	if vm.ValueNumber != nil {
		set++
	}
	if vm.ValueBoolean != nil {
		set++
	}
	if vm.ValueMap != nil {
		set++
	}
	if set > 1 {
		verr.add(path, "at most one of valueString/valueNumber/valueBoolean/valueMap may be set")
	}
	for i, child := range vm.ValueMap {
		validateValueMap(child, fmt.Sprintf("%s.valueMap[%d]", path, i), verr)
	}
}
