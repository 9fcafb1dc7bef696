package session

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultIdleTimeout is how long a surface may go without activity before
// the janitor evicts it.
const DefaultIdleTimeout = 30 * time.Minute

// Janitor periodically evicts surfaces that have gone idle — a disconnected
// client that never sent DeleteSurface, or an abandoned render target.
type Janitor struct {
	manager     *Manager
	interval    time.Duration
	idleTimeout time.Duration
}

// NewJanitor creates a janitor that sweeps manager every interval, evicting
// surfaces idle longer than idleTimeout.
func NewJanitor(manager *Manager, interval, idleTimeout time.Duration) *Janitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Janitor{manager: manager, interval: interval, idleTimeout: idleTimeout}
}

// Start runs the sweep loop until ctx is canceled.
func (j *Janitor) Start(ctx context.Context) {
	log.Info().Dur("interval", j.interval).Dur("idle_timeout", j.idleTimeout).Msg("a2ui: surface janitor started")
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("a2ui: surface janitor stopped")
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *Janitor) sweep() {
	cutoff := time.Now().Add(-j.idleTimeout)
	evicted := j.manager.EvictIdleSince(cutoff)
	if len(evicted) > 0 {
		log.Info().Strs("surfaces", evicted).Msg("a2ui: evicted idle surfaces")
	}
}
