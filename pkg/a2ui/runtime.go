// Package a2ui is the public entry point for embedding the SDUP runtime in
// a Go process — the headless client (cmd/client) or a third party
// importing this module (spec.md §6.5).
package a2ui

import (
	"context"
	"fmt"

	"github.com/a2ui-go/a2ui/internal/bridge"
	"github.com/a2ui-go/a2ui/internal/config"
	"github.com/a2ui-go/a2ui/internal/render"
	"github.com/a2ui-go/a2ui/internal/session"
	"github.com/a2ui-go/a2ui/internal/telemetry"
	"github.com/a2ui-go/a2ui/internal/transport"
	"github.com/rs/zerolog/log"
)

// Runtime composes the data model, renderer, transport, and bridge layers
// into the single object a host program constructs (spec.md §3–§6 end to
// end). Construct with New, then call Run to connect and start processing.
type Runtime struct {
	Config     *config.Config
	Catalog    *render.Catalog
	Manager    *session.Manager
	Dispatcher *bridge.Dispatcher
	Session    *transport.Session
	Janitor    *session.Janitor

	shutdownTelemetry func(context.Context) error
}

// Option customizes Runtime construction.
type Option func(*Runtime)

// WithCatalog overrides the default component catalog, e.g. to register
// host-specific component types before any rendering happens.
func WithCatalog(catalog *render.Catalog) Option {
	return func(r *Runtime) { r.Catalog = catalog }
}

// New builds a Runtime from cfg. It initializes telemetry (a no-op shutdown
// func if cfg.Telemetry.Enabled is false) and wires the catalog, session
// manager, dispatcher, and transport session together into one ready-to-run
// object.
func New(cfg *config.Config, opts ...Option) (*Runtime, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	r := &Runtime{
		Config:            cfg,
		Catalog:           render.DefaultCatalog(),
		shutdownTelemetry: shutdown,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.Manager = session.NewManager(r.Catalog)
	r.Dispatcher = bridge.NewDispatcher(r.Manager)
	r.Session = transport.NewSession(cfg.Runtime.StreamURL, cfg.Runtime.ActionURL, cfg.Runtime.ReconnectDelay, r.Dispatcher)
	r.Janitor = session.NewJanitor(r.Manager, session.DefaultIdleTimeout/6, session.DefaultIdleTimeout)

	log.Info().Str("stream_url", cfg.Runtime.StreamURL).Str("action_url", cfg.Runtime.ActionURL).Msg("a2ui: runtime initialized")
	return r, nil
}

// Run connects the transport session and runs the surface janitor until ctx
// is canceled. It blocks; call it from its own goroutine for a host that
// also needs to serve a UI loop on the calling goroutine.
func (r *Runtime) Run(ctx context.Context) error {
	go r.Janitor.Start(ctx)
	return r.Session.Run(ctx)
}

// Provider returns a bridge.Provider bound to surfaceID, the runtime's
// per-surface read/write/dispatch handle for host UI code.
func (r *Runtime) Provider(surfaceID string) *bridge.Provider {
	return bridge.NewProvider(r.Manager, surfaceID, r.Session)
}

// Shutdown flushes telemetry. Call it once, after Run's context is
// canceled and any goroutines using the Runtime have stopped.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r.shutdownTelemetry != nil {
		return r.shutdownTelemetry(ctx)
	}
	return nil
}
