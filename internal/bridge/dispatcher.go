// Package bridge is the Go-native stand-in for the React integration layer:
// instead of hooks re-rendering components on store changes, a Provider
// exposes Value/SetValue/State methods backed by the same subscribe/snapshot
// discipline useSyncExternalStore gives a React tree (spec.md §6).
package bridge

import (
	"sync"

	"github.com/a2ui-go/a2ui/internal/schema"
	"github.com/a2ui-go/a2ui/internal/session"
	"github.com/rs/zerolog/log"
)

// Dispatcher applies decoded protocol messages to a session.Manager and
// implements transport.Observer, so a Session's read loop can feed it
// directly. It is the piece a browser's runtime would call "the reducer"
// that applies server pushes to client state.
type Dispatcher struct {
	manager *session.Manager

	mu            sync.Mutex
	changeSubs    map[int]func(surfaceID string)
	nextChangeID  int
}

// NewDispatcher creates a Dispatcher over manager.
func NewDispatcher(manager *session.Manager) *Dispatcher {
	return &Dispatcher{
		manager:    manager,
		changeSubs: make(map[int]func(surfaceID string)),
	}
}

// OnChange registers a callback fired after any message mutates a surface.
// The returned disposer removes it. This is the bridge's equivalent of a
// React component's re-render trigger.
func (d *Dispatcher) OnChange(fn func(surfaceID string)) func() {
	d.mu.Lock()
	id := d.nextChangeID
	d.nextChangeID++
	d.changeSubs[id] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.changeSubs, id)
		d.mu.Unlock()
	}
}

func (d *Dispatcher) notify(surfaceID string) {
	d.mu.Lock()
	subs := make([]func(string), 0, len(d.changeSubs))
	for _, fn := range d.changeSubs {
		subs = append(subs, fn)
	}
	d.mu.Unlock()
	for _, fn := range subs {
		fn(surfaceID)
	}
}

// OnConnect implements transport.Observer. It is a no-op: dirty-state reset
// on reconnect is handled per spec.md §3.4 by clearing each surface's dirty
// set, which OnDisconnect performs before the next connect's messages land.
func (d *Dispatcher) OnConnect() {}

// OnDisconnect clears every surface's dirty paths, so a reconnect's first
// wave of server state is free to overwrite anything the user typed while
// offline (spec.md §3.4, §8.1 invariant 8).
func (d *Dispatcher) OnDisconnect(err error) {
	if err != nil {
		log.Warn().Err(err).Msg("a2ui: transport disconnected")
	}
	for _, id := range d.manager.List() {
		if s, ok := d.manager.Get(id); ok {
			s.Store.ClearAllDirty()
		}
	}
}

// OnMessage applies a decoded envelope to the relevant surface.
func (d *Dispatcher) OnMessage(msg schema.Message) {
	switch msg.Kind {
	case schema.KindSurfaceUpdate:
		d.applySurfaceUpdate(msg.SurfaceUpdate)
	case schema.KindDataModelUpdate:
		d.applyDataModelUpdate(msg.DataModelUpdate)
	case schema.KindBeginRendering:
		d.applyBeginRendering(msg.BeginRendering)
	case schema.KindDeleteSurface:
		d.applyDeleteSurface(msg.DeleteSurface)
	default:
		log.Debug().Msg("a2ui: ignoring unrecognized message kind")
	}
}

func (d *Dispatcher) applySurfaceUpdate(su *schema.SurfaceUpdate) {
	s := d.manager.GetOrCreate(su.SurfaceID)
	s.Tree.Merge(su.Components)
	d.notify(su.SurfaceID)
}

func (d *Dispatcher) applyDataModelUpdate(dmu *schema.DataModelUpdate) {
	s := d.manager.GetOrCreate(dmu.SurfaceID)
	path := dmu.Path
	if path == "" {
		path = "/"
	}
	s.Store.Batch(func() {
		s.Store.Update(path, dmu.Contents)
	})
	d.notify(dmu.SurfaceID)
}

func (d *Dispatcher) applyBeginRendering(br *schema.BeginRendering) {
	s := d.manager.GetOrCreate(br.SurfaceID)
	s.Tree.SetRoot(br.Root)
	d.notify(br.SurfaceID)
}

func (d *Dispatcher) applyDeleteSurface(ds *schema.DeleteSurface) {
	d.manager.Delete(ds.SurfaceID)
	d.notify(ds.SurfaceID)
}

// OnValidationError logs issues without rejecting the message — validation
// is advisory (spec.md §4.2).
func (d *Dispatcher) OnValidationError(verr *schema.ValidationError) {
	log.Warn().Err(verr).Int("issues", len(verr.Issues)).Msg("a2ui: protocol message had validation issues")
}

// OnActionError logs a failed action POST.
func (d *Dispatcher) OnActionError(err error) {
	log.Error().Err(err).Msg("a2ui: action dispatch failed")
}
