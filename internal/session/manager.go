// Package session tracks the live surfaces a transport connection is
// rendering: one datamodel.Store and render.Tree per surfaceId, created on
// first SurfaceUpdate/DataModelUpdate and torn down on DeleteSurface or
// idle expiry (spec.md §3, §4, §5).
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/a2ui-go/a2ui/internal/datamodel"
	"github.com/a2ui-go/a2ui/internal/render"
)

// Surface bundles one surfaceId's data model and render tree.
type Surface struct {
	ID           string
	Store        *datamodel.Store
	Tree         *render.Tree
	CreatedAt    time.Time
	lastActivity time.Time
}

// Manager is a thread-safe registry of live surfaces, analogous to the
// control plane's in-memory session store but keyed by surfaceId instead of
// a conversation session ID.
type Manager struct {
	mu       sync.RWMutex
	surfaces map[string]*Surface
	catalog  *render.Catalog
}

// NewManager creates an empty Manager. catalog is shared read-only across
// every surface it creates.
func NewManager(catalog *render.Catalog) *Manager {
	return &Manager{
		surfaces: make(map[string]*Surface),
		catalog:  catalog,
	}
}

// GetOrCreate returns the Surface for surfaceID, creating it if absent.
func (m *Manager) GetOrCreate(surfaceID string) *Surface {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.surfaces[surfaceID]; ok {
		s.lastActivity = time.Now()
		return s
	}
	store := datamodel.New()
	s := &Surface{
		ID:           surfaceID,
		Store:        store,
		Tree:         render.NewTree(m.catalog, store),
		CreatedAt:    time.Now(),
		lastActivity: time.Now(),
	}
	m.surfaces[surfaceID] = s
	return s
}

// Get returns the Surface for surfaceID, or (nil, false) if it doesn't exist.
func (m *Manager) Get(surfaceID string) (*Surface, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.surfaces[surfaceID]
	return s, ok
}

// Delete removes a surface, per a DeleteSurface message (spec.md §4.2).
func (m *Manager) Delete(surfaceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.surfaces, surfaceID)
}

// List returns every live surface ID.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.surfaces))
	for id := range m.surfaces {
		ids = append(ids, id)
	}
	return ids
}

// Touch refreshes a surface's last-activity timestamp, extending its expiry.
func (m *Manager) Touch(surfaceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.surfaces[surfaceID]
	if !ok {
		return fmt.Errorf("surface %s not found", surfaceID)
	}
	s.lastActivity = time.Now()
	return nil
}

// EvictIdleSince removes every surface whose last activity is before cutoff
// and returns the evicted IDs. Used by the janitor's periodic sweep.
func (m *Manager) EvictIdleSince(cutoff time.Time) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var evicted []string
	for id, s := range m.surfaces {
		if s.lastActivity.Before(cutoff) {
			delete(m.surfaces, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}
