package schema

// ValueMap is the wire encoding for data-model patches (spec.md §3.1). Exactly
// one of the four value fields is set per node; ValueMap encodes nested
// structure recursively. A node with none of the four set is permitted and
// decodes to nil (spec.md §4.2).
type ValueMap struct {
	Key          string     `json:"key"`
	ValueString  *string    `json:"valueString,omitempty"`
	ValueNumber  *float64   `json:"valueNumber,omitempty"`
	ValueBoolean *bool      `json:"valueBoolean,omitempty"`
	ValueMap     []ValueMap `json:"valueMap,omitempty"`
}

// IsMap reports whether this entry carries a nested valueMap.
func (v ValueMap) IsMap() bool {
	return v.ValueMap != nil
}

// Decode returns the Go value this entry represents: a scalar, a nested
// map[string]any (recursively decoded), or nil if no variant is set or more
// than one is set (scalar exclusivity, spec.md §8.1 invariant 1).
func (v ValueMap) Decode() any {
	set := 0
	var result any
	if v.ValueString != nil {
		set++
		result = *v.ValueString
	}
	if v.ValueNumber != nil {
		set++
		result = *v.ValueNumber
	}
	if v.ValueBoolean != nil {
		set++
		result = *v.ValueBoolean
	}
	if v.ValueMap != nil {
		set++
		m := make(map[string]any, len(v.ValueMap))
		for _, child := range v.ValueMap {
			m[child.Key] = child.Decode()
		}
		result = m
	}
	if set != 1 {
		return nil
	}
	return result
}
