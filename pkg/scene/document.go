package scene

import (
	"slices"
	"strings"
	"sync"
)

// Document is the host environment the engine mounts into: a set of
// containers addressable by selector.
type Document struct {
	mu     sync.RWMutex
	mounts []*Mount
}

// NewDocument creates an empty document.
func NewDocument() *Document { return &Document{} }

// AddMount registers a container with the given id, size and classes and
// returns it. An existing mount with the same id is returned unchanged.
func (d *Document) AddMount(id string, w, h float64, classes ...string) *Mount {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, m := range d.mounts {
		if m.ID == id {
			return m
		}
	}
	m := &Mount{ID: id, Classes: classes, width: w, height: h, observers: make(map[int]func(w, h float64))}
	d.mounts = append(d.mounts, m)
	return m
}

// RemoveMount drops the container with the given id.
func (d *Document) RemoveMount(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mounts = slices.DeleteFunc(d.mounts, func(m *Mount) bool { return m.ID == id })
}

// Query returns the first mount matching selector. Supported selectors are
// "#id", ".class" and a bare id.
func (d *Document) Query(selector string) (*Mount, bool) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, m := range d.mounts {
		if m.matches(selector) {
			return m, true
		}
	}
	return nil, false
}

// Mount is a container that owns at most one drawing surface.
type Mount struct {
	ID      string
	Classes []string

	mu        sync.Mutex
	width     float64
	height    float64
	surface   *Surface
	observers map[int]func(w, h float64)
	nextObs   int
}

func (m *Mount) matches(selector string) bool {
	switch {
	case strings.HasPrefix(selector, "#"):
		return m.ID == selector[1:]
	case strings.HasPrefix(selector, "."):
		return slices.Contains(m.Classes, selector[1:])
	default:
		return m.ID == selector
	}
}

// Size returns the container's rendered dimensions.
func (m *Mount) Size() (w, h float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width, m.height
}

// Surface returns the mount's drawing surface, creating it with the
// container's size on first use. Options are applied to an existing surface
// as well.
func (m *Mount) Surface(opts ...SurfaceOption) *Surface {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.surface == nil {
		m.surface = NewSurface(m.width, m.height, opts...)
	} else {
		m.surface.apply(opts...)
	}
	return m.surface
}

// HasSurface reports whether a surface has been created.
func (m *Mount) HasSurface() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.surface != nil
}

// Clear removes the drawing surface.
func (m *Mount) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.surface != nil {
		m.surface.Clear()
	}
	m.surface = nil
}

// Observe registers fn to be called on every resize. The returned function
// cancels the registration.
func (m *Mount) Observe(fn func(w, h float64)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.observers, id)
	}
}

// Resize changes the container's size and notifies observers. The surface
// is left to its owner, which resizes it from an observer. Observers run on
// the caller's goroutine after the lock is released.
func (m *Mount) Resize(w, h float64) {
	m.mu.Lock()
	m.width, m.height = w, h
	fns := make([]func(w, h float64), 0, len(m.observers))
	ids := make([]int, 0, len(m.observers))
	for id := range m.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, m.observers[id])
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(w, h)
	}
}
