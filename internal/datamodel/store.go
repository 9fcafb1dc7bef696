package datamodel

import (
	"sort"
	"strings"
	"sync"

	"github.com/a2ui-go/a2ui/internal/schema"
	"github.com/rs/zerolog/log"
)

// Listener is notified of a write or delete at path. newValue is nil (with
// ok=false) when the path was deleted or never existed.
type Listener func(path string, newValue any, ok bool)

// Entry is one immediate child of a path, returned by GetEntries for
// template-list expansion (spec.md §4.1).
type Entry struct {
	Key   string
	Value any
	Path  string
}

// Store is the in-memory, path-addressed data model for one surface
// (spec.md §3, §4.1). The zero value is not usable; construct with New.
type Store struct {
	mu    sync.Mutex
	values map[string]any
	dirty  map[string]struct{}

	subs      map[int]Listener
	nextSubID int

	batchDepth   int
	touchedOrder []string
	touchedSet   map[string]struct{}
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		values: make(map[string]any),
		dirty:  make(map[string]struct{}),
		subs:   make(map[int]Listener),
	}
}

// Get returns the value at path. If no direct value is stored there, Get
// composes an object from the path's immediate children (spec.md §4.1). It
// returns (nil, false) if neither exists.
func (s *Store) Get(path string) (any, bool) {
	p := Normalize(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(p)
}

func (s *Store) getLocked(p string) (any, bool) {
	if v, ok := s.values[p]; ok {
		return v, true
	}
	prefix := p
	if prefix != "/" {
		prefix += "/"
	}
	result := make(map[string]any)
	found := false
	seen := make(map[string]bool)
	for k := range s.values {
		if !strings.HasPrefix(k, prefix) || k == p {
			continue
		}
		rest := k[len(prefix):]
		seg := rest
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			seg = rest[:i]
		}
		if seen[seg] {
			continue
		}
		seen[seg] = true
		childPath := prefix + seg
		if v, ok := s.values[childPath]; ok {
			result[seg] = v
			found = true
		}
	}
	if !found {
		return nil, false
	}
	return result, true
}

// Set writes value at path. markDirty defaults to true for user-origin
// writes; pass false for server-authoritative writes that must not be
// protected from future server updates (spec.md §4.1). Objects passed to Set
// are stored opaquely — they are NOT decomposed into per-leaf paths, unlike
// Update's valueMap decoding (spec.md §9 open question).
func (s *Store) Set(path string, value any, markDirty bool) {
	p := Normalize(path)
	s.mu.Lock()
	s.values[p] = value
	if markDirty {
		s.dirty[p] = struct{}{}
	}
	batching := s.batchDepth > 0
	if batching {
		s.recordTouchLocked(p)
	}
	s.mu.Unlock()
	if !batching {
		s.notifyPaths([]string{p})
	}
}

// Delete removes the entry at path and every descendant, clearing their
// dirty flags, and notifies subscribers of the root path with no value
// (spec.md §4.1). Calling Delete on an already-absent path leaves the store
// unchanged; subscribers are still notified of path.
func (s *Store) Delete(path string) {
	p := Normalize(path)
	s.mu.Lock()
	s.deleteLocked(p)
	batching := s.batchDepth > 0
	if batching {
		s.recordTouchLocked(p)
	}
	s.mu.Unlock()
	if !batching {
		s.notifyPaths([]string{p})
	}
}

func (s *Store) deleteLocked(p string) {
	delete(s.values, p)
	delete(s.dirty, p)
	prefix := p
	if prefix != "/" {
		prefix += "/"
	}
	for k := range s.values {
		if strings.HasPrefix(k, prefix) {
			delete(s.values, k)
			delete(s.dirty, k)
		}
	}
}

// clearDescendants removes every path strictly under p, leaving p itself
// untouched. Used by Update's "items replace" rule (spec.md §4.1, §8.1
// invariant 3); it does not emit its own notification — the caller writes a
// fresh value at p (or its descendants) immediately after.
func (s *Store) clearDescendants(p string) {
	prefix := p
	if prefix != "/" {
		prefix += "/"
	}
	for k := range s.values {
		if strings.HasPrefix(k, prefix) {
			delete(s.values, k)
			delete(s.dirty, k)
		}
	}
}

// Update decodes a ValueMap patch under basePath (spec.md §4.1). Each
// contents entry is written at basePath/<key>: scalars directly, valueMap
// entries as a decoded object AND recursively at each nested leaf's composed
// path. A destination path currently marked dirty is skipped (server write
// suppressed, spec.md §3.3 invariant). If an entry's key is "items" and it
// carries a valueMap, all existing descendants of that items path are
// cleared first so stale rows disappear on a full list replace.
//
// Update does not itself batch; callers that want one coalesced notification
// wave for the whole call should wrap it in Batch (spec.md §4.4 does this for
// every inbound DataModelUpdate).
func (s *Store) Update(basePath string, contents []schema.ValueMap) {
	base := Normalize(basePath)
	for _, entry := range contents {
		target := Join(base, entry.Key)
		if entry.Key == "items" && entry.IsMap() {
			s.mu.Lock()
			s.clearDescendants(target)
			s.mu.Unlock()
		}
		s.writeValueMapTree(target, entry)
	}
}

func (s *Store) writeValueMapTree(path string, node schema.ValueMap) {
	value := node.Decode()
	if value == nil {
		// Unknown/absent variant: decoding yields no value for this entry;
		// decoding continues with siblings and children (spec.md §4.1).
		return
	}
	s.writeServerValue(path, value)
	if node.IsMap() {
		for _, child := range node.ValueMap {
			s.writeValueMapTree(Join(path, child.Key), child)
		}
	}
}

// writeServerValue is Update's per-path write primitive: it never marks
// dirty, and it is silently suppressed if the path is already dirty.
func (s *Store) writeServerValue(path string, value any) {
	s.mu.Lock()
	if _, dirty := s.dirty[path]; dirty {
		s.mu.Unlock()
		return
	}
	s.values[path] = value
	batching := s.batchDepth > 0
	if batching {
		s.recordTouchLocked(path)
	}
	s.mu.Unlock()
	if !batching {
		s.notifyPaths([]string{path})
	}
}

// ClearDirty removes path from the dirty set.
func (s *Store) ClearDirty(path string) {
	p := Normalize(path)
	s.mu.Lock()
	delete(s.dirty, p)
	s.mu.Unlock()
}

// ClearAllDirty empties the dirty set. Invoked on transport reconnect
// (spec.md §3.4, §5, §8.1 invariant 8).
func (s *Store) ClearAllDirty() {
	s.mu.Lock()
	s.dirty = make(map[string]struct{})
	s.mu.Unlock()
}

// GetDirtyPaths returns the current dirty set as a sorted slice.
func (s *Store) GetDirtyPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.dirty))
	for p := range s.dirty {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// IsDirty reports whether path is currently protected from server overwrite.
func (s *Store) IsDirty(path string) bool {
	p := Normalize(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.dirty[p]
	return ok
}

// Resolve resolves a BoundValue (spec.md §4.1). Literal variants return
// their literal directly. The path variant resolves beneath contextPath when
// the bound path is not itself absolute; an empty contextPath means "surface
// root," matching spec.md §3.2's "non-absolute path is implicitly prefixed
// with /" rule.
func (s *Store) Resolve(bv schema.BoundValue, contextPath string) any {
	switch bv.Kind() {
	case schema.BoundValueString:
		return *bv.LiteralString
	case schema.BoundValueNumber:
		return *bv.LiteralNumber
	case schema.BoundValueBool:
		return *bv.LiteralBool
	case schema.BoundValuePath:
		p := *bv.Path
		var resolved string
		if IsAbsolute(p) {
			resolved = Normalize(p)
		} else {
			resolved = Join(contextPath, p)
		}
		v, _ := s.Get(resolved)
		return v
	default:
		return nil
	}
}

// ResolveAll batch-resolves several bound values against a shared
// contextPath in one lock acquisition — a fast path for rendering large
// template lists that would otherwise take the store's lock once per cell.
func (s *Store) ResolveAll(values []schema.BoundValue, contextPath string) []any {
	out := make([]any, len(values))
	s.mu.Lock()
	for i, bv := range values {
		switch bv.Kind() {
		case schema.BoundValueString:
			out[i] = *bv.LiteralString
		case schema.BoundValueNumber:
			out[i] = *bv.LiteralNumber
		case schema.BoundValueBool:
			out[i] = *bv.LiteralBool
		case schema.BoundValuePath:
			p := *bv.Path
			var resolved string
			if IsAbsolute(p) {
				resolved = Normalize(p)
			} else {
				resolved = Join(contextPath, p)
			}
			v, _ := s.getLocked(resolved)
			out[i] = v
		}
	}
	s.mu.Unlock()
	return out
}

// GetEntries returns the immediate children of path, sorted by key, for
// template-list expansion (spec.md §4.1, §4.3).
func (s *Store) GetEntries(path string) []Entry {
	prefix := Normalize(path)
	if prefix != "/" {
		prefix += "/"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var entries []Entry
	for k := range s.values {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		rest := k[len(prefix):]
		seg := rest
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			seg = rest[:i]
		}
		if seen[seg] {
			continue
		}
		seen[seg] = true
		childPath := prefix + seg
		if v, ok := s.getLocked(childPath); ok {
			entries = append(entries, Entry{Key: seg, Value: v, Path: childPath})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// Subscribe registers a listener for every path write or delete. The
// returned disposer is idempotent (spec.md §3.4).
func (s *Store) Subscribe(listener Listener) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = listener
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Batch executes fn; writes made during fn record only the set of touched
// paths. On return — including when fn panics — one notification per
// touched path is dispatched in first-touch order, each carrying the latest
// value for that path (spec.md §3.3, §4.1, §8.1 invariant 4).
func (s *Store) Batch(fn func()) {
	s.mu.Lock()
	s.batchDepth++
	if s.batchDepth == 1 {
		s.touchedOrder = nil
		s.touchedSet = make(map[string]struct{})
	}
	s.mu.Unlock()

	var panicValue any
	func() {
		defer func() { panicValue = recover() }()
		fn()
	}()

	s.mu.Lock()
	s.batchDepth--
	var toNotify []string
	if s.batchDepth == 0 {
		toNotify = s.touchedOrder
		s.touchedOrder = nil
		s.touchedSet = nil
	}
	s.mu.Unlock()

	if len(toNotify) > 0 {
		s.notifyPaths(toNotify)
	}
	if panicValue != nil {
		panic(panicValue)
	}
}

func (s *Store) recordTouchLocked(path string) {
	if _, ok := s.touchedSet[path]; ok {
		return
	}
	s.touchedSet[path] = struct{}{}
	s.touchedOrder = append(s.touchedOrder, path)
}

// notifyPaths dispatches one notification per path to every current
// subscriber, in order. It never holds the store's mutex while calling a
// listener, so listeners may freely call back into the Store. A listener
// panic is caught and logged; it never interrupts delivery to other
// listeners or subsequent writes (spec.md §4.1 failure semantics).
func (s *Store) notifyPaths(paths []string) {
	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()
	if len(listeners) == 0 {
		return
	}
	for _, p := range paths {
		s.mu.Lock()
		val, ok := s.values[p]
		s.mu.Unlock()
		for _, fn := range listeners {
			notifyOne(fn, p, val, ok)
		}
	}
}

func notifyOne(fn Listener, path string, val any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("path", path).Msg("a2ui: data model subscriber panic recovered")
		}
	}()
	fn(path, val, ok)
}

// GetSnapshot returns a flat mapping from every stored path to its current
// value. The returned map is a fresh copy, stable against subsequent
// mutations (spec.md §4.1, for React-bridge-equivalent useSyncExternalStore
// consumers).
func (s *Store) GetSnapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
