// Package contracts defines the extension-point interfaces for the a2ui
// runtime: the boundary a host embeds through instead of reaching into
// internal/ directly (spec.md §6.5).
package contracts

import (
	"context"

	"github.com/a2ui-go/a2ui/internal/render"
	"github.com/a2ui-go/a2ui/internal/schema"
	"github.com/a2ui-go/a2ui/internal/transport"
)

// Observer is a type alias for transport.Observer, re-exported at the
// package boundary a host implements against.
type Observer = transport.Observer

// ActionSender mirrors bridge.ActionSender at the public boundary, so host
// code can accept either a live *transport.Session or a test double without
// importing internal/transport.
type ActionSender interface {
	SendAction(ctx context.Context, req transport.ActionRequest) (*transport.ActionResponse, error)
}

// ComponentRenderer is implemented by a host that draws a render.Node tree
// onto some concrete surface (a terminal, a native widget tree, a test
// recorder). The runtime itself only produces Nodes; drawing them is the
// host's job, the same way SDUP's browser runtime hands a Node tree to
// React rather than mutating the DOM directly.
type ComponentRenderer interface {
	// Render draws node and its subtree, given the whole current tree —
	// hosts that want to diff against the previous tree do so themselves, the
	// same retained-mode contract a React renderer has with its previous
	// commit. The runtime does not call Render itself; the host invokes it.
	Render(surfaceID string, node *render.Node)
}

// CatalogExtension lets a host register additional component types before
// rendering begins (spec.md §4.3's open component catalog).
type CatalogExtension interface {
	Register(componentType string)
}

var _ CatalogExtension = (*render.Catalog)(nil)

// MessageFilter is the shape of a host hook that inspects a decoded message
// and reports whether to apply it — for example, to drop DataModelUpdate
// messages targeting a path the host considers off-limits. Runtime and
// bridge.Dispatcher do not consult a MessageFilter: they apply every decoded
// message.
type MessageFilter func(msg schema.Message) (apply bool)
