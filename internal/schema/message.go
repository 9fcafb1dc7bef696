package schema

import "encoding/json"

// Kind discriminates the four protocol message types (spec.md §4.2).
type Kind int

const (
	KindUnknown Kind = iota
	KindSurfaceUpdate
	KindDataModelUpdate
	KindBeginRendering
	KindDeleteSurface
)

func (k Kind) String() string {
	switch k {
	case KindSurfaceUpdate:
		return "surfaceUpdate"
	case KindDataModelUpdate:
		return "dataModelUpdate"
	case KindBeginRendering:
		return "beginRendering"
	case KindDeleteSurface:
		return "deleteSurface"
	default:
		return "unknown"
	}
}

// SurfaceUpdate populates a surface's component map (spec.md §4.2).
type SurfaceUpdate struct {
	SurfaceID  string      `json:"surfaceId"`
	Components []Component `json:"components"`
}

// DataModelUpdate patches a surface's data model (spec.md §4.2).
type DataModelUpdate struct {
	SurfaceID string     `json:"surfaceId"`
	Path      string     `json:"path,omitempty"`
	Contents  []ValueMap `json:"contents"`
}

// BeginRendering sets a surface's render root (spec.md §4.2).
type BeginRendering struct {
	SurfaceID string `json:"surfaceId"`
	Root      string `json:"root"`
}

// DeleteSurface tears a surface down (spec.md §4.2).
type DeleteSurface struct {
	SurfaceID string `json:"surfaceId"`
}

// Message is a decoded protocol envelope. Exactly one payload field is
// meaningful per Kind; Raw always holds the original decoded JSON object so
// an unrecognized envelope can still be applied best-effort (spec.md §4.2).
type Message struct {
	Kind Kind
	Raw  map[string]json.RawMessage

	SurfaceUpdate   *SurfaceUpdate
	DataModelUpdate *DataModelUpdate
	BeginRendering  *BeginRendering
	DeleteSurface   *DeleteSurface
}

// SurfaceID returns the surfaceId the message targets, or "" if the envelope
// could not be recognized at all.
func (m Message) SurfaceID() string {
	switch m.Kind {
	case KindSurfaceUpdate:
		return m.SurfaceUpdate.SurfaceID
	case KindDataModelUpdate:
		return m.DataModelUpdate.SurfaceID
	case KindBeginRendering:
		return m.BeginRendering.SurfaceID
	case KindDeleteSurface:
		return m.DeleteSurface.SurfaceID
	default:
		return ""
	}
}
