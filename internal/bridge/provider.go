package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/a2ui-go/a2ui/internal/render"
	"github.com/a2ui-go/a2ui/internal/schema"
	"github.com/a2ui-go/a2ui/internal/session"
	"github.com/a2ui-go/a2ui/internal/transport"
)

// ActionSender is the subset of *transport.Session a Provider needs to
// dispatch a user action. Satisfied by *transport.Session; accepting an
// interface keeps Provider testable without a live connection.
type ActionSender interface {
	SendAction(ctx context.Context, req transport.ActionRequest) (*transport.ActionResponse, error)
}

// ResolvedAction is an Action with its bound context already resolved to
// literal values, the shape delivered to OnAction subscribers (spec.md
// §4.4's "resolved action (literals only)" optimistic-dispatch step, §4.5's
// onAction).
type ResolvedAction struct {
	Name    string
	Context map[string]any
}

// Provider is the Go-native counterpart of a React SDUP binding: one per
// surface, exposing the same operations a generated hook would (spec.md
// §6). Value/SetValue mirror a two-way-bound field's get/set; State mirrors
// the rendered tree a component would receive from context; OnAction mirrors
// a dispatched callback prop.
type Provider struct {
	surfaceID string
	manager   *session.Manager
	sender    ActionSender

	// PatchBagPrefixes maps a named patch bag key (e.g. "paginationUpdate")
	// to the conventional path prefix its fields are written under. A bag
	// with no configured prefix defaults to "/"+name (spec.md §4.4 step 3).
	PatchBagPrefixes map[string]string

	mu           sync.Mutex
	actionSubs   map[int]func(ResolvedAction)
	nextActionID int
}

// NewProvider creates a Provider for surfaceID. sender may be nil — actions
// are then only delivered locally via OnAction subscribers, never posted
// upstream (useful for host-embedded surfaces with no remote server).
func NewProvider(manager *session.Manager, surfaceID string, sender ActionSender) *Provider {
	return &Provider{
		surfaceID:  surfaceID,
		manager:    manager,
		sender:     sender,
		actionSubs: make(map[int]func(ResolvedAction)),
	}
}

func (p *Provider) surface() *session.Surface { return p.manager.GetOrCreate(p.surfaceID) }

// Value reads a data model path, equivalent to a generated hook's read side
// of a two-way binding.
func (p *Provider) Value(path string) (any, bool) {
	return p.surface().Store.Get(path)
}

// SetValue writes a data model path as a user-origin edit, marking it dirty
// so a subsequent server push cannot silently overwrite it (spec.md §3.3,
// §6 — the TextField/CheckBox two-way-binding contract).
func (p *Provider) SetValue(path string, value any) {
	p.surface().Store.Set(path, value, true)
}

// Snapshot returns every path currently stored for this surface, the
// useSyncExternalStore-equivalent whole-state read.
func (p *Provider) Snapshot() map[string]any {
	return p.surface().Store.GetSnapshot()
}

// State renders the current retained tree for this surface.
func (p *Provider) State() *render.Node {
	return p.surface().Tree.Snapshot()
}

// Subscribe registers a listener for any data model change on this surface.
// The returned disposer is idempotent.
func (p *Provider) Subscribe(listener func(path string, value any, ok bool)) func() {
	return p.surface().Store.Subscribe(listener)
}

// OnAction registers fn to receive every resolved action dispatched on this
// surface: once optimistically, before Dispatch's network round trip
// returns (spec.md §4.4), and again as a synthesized "<name>_success"
// pseudo-action if the server reports the action succeeded (§4.4 step 2's
// conventional success-event convention). The returned disposer is
// idempotent.
func (p *Provider) OnAction(fn func(ResolvedAction)) func() {
	p.mu.Lock()
	id := p.nextActionID
	p.nextActionID++
	p.actionSubs[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.actionSubs, id)
			p.mu.Unlock()
		})
	}
}

func (p *Provider) notifyAction(action ResolvedAction) {
	p.mu.Lock()
	subs := make([]func(ResolvedAction), 0, len(p.actionSubs))
	for _, fn := range p.actionSubs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()
	for _, fn := range subs {
		fn(action)
	}
}

// Dispatch resolves an Action's context against contextPath, delivers the
// resolved action to OnAction subscribers immediately so UI can react
// optimistically (spec.md §4.4), then POSTs a flat UserAction upstream via
// the configured ActionSender. On a successful response it applies the
// response's DataUpdate and patch bags to this surface's data model and
// synthesizes a "<name>_success" action to OnAction subscribers before
// returning. It returns an error if no sender is configured, the POST
// fails, or the response itself reports failure.
func (p *Provider) Dispatch(ctx context.Context, action schema.Action, sourceComponentID, contextPath string) (*transport.ActionResponse, error) {
	store := p.surface().Store
	resolvedContext := make(map[string]any, len(action.Context))
	for _, param := range action.Context {
		resolvedContext[param.Key] = store.Resolve(param.Value, contextPath)
	}

	p.notifyAction(ResolvedAction{Name: action.Name, Context: resolvedContext})

	if p.sender == nil {
		return nil, fmt.Errorf("bridge: no action sender configured for surface %s", p.surfaceID)
	}

	resp, err := p.sender.SendAction(ctx, transport.ActionRequest{
		Name:              action.Name,
		SurfaceID:         p.surfaceID,
		SourceComponentID: sourceComponentID,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		Context:           resolvedContext,
	})
	if err != nil {
		return resp, err
	}

	applyActionResponse(store, resp, p.PatchBagPrefixes)
	p.notifyAction(ResolvedAction{Name: action.Name + "_success", Context: resolvedContext})

	return resp, nil
}
