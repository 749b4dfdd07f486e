// Package annotate places the recognized answer next to its equation.
package annotate

import (
	"sync"
	"time"

	"github.com/ddvk/inkcalc/ink"
	"github.com/ddvk/inkcalc/log"
)

const (
	DefaultMargin         = 30.0
	DefaultBaselineOffset = 12.0
)

// Answer is what gets written on the canvas.
type Answer struct {
	Latex      string
	Expression string
	Value      string
	Backend    string
}

// Manager owns a single annotation slot on a store: displaying a new
// answer replaces the previous one.
type Manager struct {
	Margin         float64
	BaselineOffset float64

	store   *ink.Store
	mu      sync.Mutex
	current string
}

func NewManager(store *ink.Store) *Manager {
	return &Manager{
		Margin:         DefaultMargin,
		BaselineOffset: DefaultBaselineOffset,
		store:          store,
	}
}

// Display writes "= value" to the right of bounds. An answer without a
// value is ignored and returns nil.
func (m *Manager) Display(a Answer, bounds ink.Bounds) *ink.Shape {
	if a.Value == "" || bounds.IsEmpty() {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != "" {
		m.store.Delete(m.current)
		m.current = ""
	}

	sh := m.store.Put(NewAnnotation(a, bounds, m.Margin, m.BaselineOffset))
	m.current = sh.ID
	log.Trace.Printf("annotate: %s at (%.0f, %.0f)", sh.Text, sh.X, sh.Y)
	return sh
}

// NewAnnotation builds the locked system text shape for a, placed margin
// to the right of bounds and centered on it.
func NewAnnotation(a Answer, bounds ink.Bounds, margin, baselineOffset float64) *ink.Shape {
	return &ink.Shape{
		ID:     ink.NewID(),
		Kind:   ink.Text,
		X:      bounds.MaxX + margin,
		Y:      bounds.CenterY() - baselineOffset,
		Text:   "= " + a.Value,
		Locked: true,
		Meta: map[string]string{
			ink.MetaSource:     ink.SystemTag,
			ink.MetaLatex:      a.Latex,
			ink.MetaExpression: a.Expression,
			ink.MetaValue:      a.Value,
			ink.MetaBackend:    a.Backend,
		},
		CreatedAt: time.Now(),
	}
}

// Current returns the displayed annotation, if it is still on the store.
func (m *Manager) Current() (*ink.Shape, bool) {
	m.mu.Lock()
	id := m.current
	m.mu.Unlock()
	if id == "" {
		return nil, false
	}
	return m.store.Get(id)
}

// Clear removes the displayed annotation.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != "" {
		m.store.Delete(m.current)
		m.current = ""
	}
}

// Sweep removes every system annotation from the store, including ones
// left behind by earlier managers.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, sh := range m.store.SystemShapes() {
		if m.store.Delete(sh.ID) {
			n++
		}
	}
	m.current = ""
	return n
}
