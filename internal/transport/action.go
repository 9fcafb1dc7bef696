package transport

import "encoding/json"

// ActionRequest is the body POSTed to the action endpoint when a user
// interaction fires: a flat UserAction envelope (spec.md §3.1, §4.4's
// action-submission sequence, §6.2, worked example §8.3 S5).
type ActionRequest struct {
	Name              string         `json:"name"`
	SurfaceID         string         `json:"surfaceId"`
	SourceComponentID string         `json:"sourceComponentId,omitempty"`
	Timestamp         string         `json:"timestamp"`
	Context           map[string]any `json:"context,omitempty"`
}

// DataUpdateItem is one element of a DataUpdate's Items list: the item's id
// plus whatever other fields the server sent for it (spec.md §4.4 step 3,
// §6.2). ID is lifted out of Fields so it can be written both as the item's
// identity segment and, per §8.3 S5's worked example, as its own `id` leaf.
type DataUpdateItem struct {
	ID     string
	Fields map[string]any
}

// UnmarshalJSON decodes a DataUpdateItem from its flat wire shape
// (`{"id": "1", "title": "T", ...}`), separating the conventional "id" key
// from the rest.
func (d *DataUpdateItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fields := make(map[string]any, len(raw))
	for key, v := range raw {
		if key == "id" {
			if err := json.Unmarshal(v, &d.ID); err != nil {
				return err
			}
			continue
		}
		var value any
		if err := json.Unmarshal(v, &value); err != nil {
			return err
		}
		fields[key] = value
	}
	d.Fields = fields
	return nil
}

// MarshalJSON re-flattens a DataUpdateItem, for host code that constructs
// one to send back as part of a response.
func (d DataUpdateItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Fields)+1)
	out["id"] = d.ID
	for key, value := range d.Fields {
		out[key] = value
	}
	return json.Marshal(out)
}

// DataUpdate is the action response's server-driven data patch (spec.md
// §4.4 step 3, §6.2). Exactly one of Items or Value is populated: Items
// replaces every existing immediate child of Path with a freshly written
// row per item; Value overwrites Path directly with an opaque value.
type DataUpdate struct {
	Path  string           `json:"path"`
	Items []DataUpdateItem `json:"items,omitempty"`
	Value json.RawMessage  `json:"value,omitempty"`
}

// HasValue reports whether the response carried a Value at all, as opposed
// to a zero-length json.RawMessage meaning "absent."
func (d DataUpdate) HasValue() bool {
	return len(d.Value) > 0
}

// ActionResponse is the action endpoint's reply: a success/error outcome,
// an optional DataUpdate, and zero or more named patch bags — every
// unrecognized top-level key, each mapping field names to values written
// under a conventional host-configured path prefix (spec.md §4.4 step 3,
// §6.2).
type ActionResponse struct {
	Success    bool
	Error      string
	DataUpdate *DataUpdate
	PatchBags  map[string]map[string]any
}

// UnmarshalJSON peels off the recognized "success"/"error"/"dataUpdate"
// keys and collects everything else as named patch bags.
func (r *ActionResponse) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["success"]; ok {
		if err := json.Unmarshal(v, &r.Success); err != nil {
			return err
		}
		delete(raw, "success")
	}
	if v, ok := raw["error"]; ok {
		if err := json.Unmarshal(v, &r.Error); err != nil {
			return err
		}
		delete(raw, "error")
	}
	if v, ok := raw["dataUpdate"]; ok {
		var du DataUpdate
		if err := json.Unmarshal(v, &du); err != nil {
			return err
		}
		r.DataUpdate = &du
		delete(raw, "dataUpdate")
	}
	if len(raw) == 0 {
		return nil
	}
	r.PatchBags = make(map[string]map[string]any, len(raw))
	for key, v := range raw {
		var bag map[string]any
		if err := json.Unmarshal(v, &bag); err != nil {
			continue // not a {key: value} bag (e.g. a bare ticketId string); ignored rather than erroring
		}
		r.PatchBags[key] = bag
	}
	return nil
}

// MarshalJSON re-flattens an ActionResponse, for the demo host and any
// other in-module code that constructs one to serve.
func (r ActionResponse) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 3+len(r.PatchBags))
	out["success"] = r.Success
	if r.Error != "" {
		out["error"] = r.Error
	}
	if r.DataUpdate != nil {
		out["dataUpdate"] = r.DataUpdate
	}
	for key, bag := range r.PatchBags {
		out[key] = bag
	}
	return json.Marshal(out)
}
