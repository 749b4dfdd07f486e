package ink

import (
	"sort"
	"sync"
)

// ChangeKind describes a store mutation.
type ChangeKind int

const (
	Added ChangeKind = iota
	Updated
	Removed
)

// Change is delivered to subscribers after each mutation.
type Change struct {
	Kind  ChangeKind
	Shape *Shape
}

// Store holds the shapes of one drawing surface. Shapes handed out are
// copies; callers mutate the store only through Put and Delete.
type Store struct {
	mu        sync.RWMutex
	shapes    map[string]*Shape
	seq       uint64
	listeners map[int]func(Change)
	nextSub   int
}

func NewStore() *Store {
	return &Store{
		shapes:    make(map[string]*Shape),
		listeners: make(map[int]func(Change)),
	}
}

// Put inserts or replaces a shape. New shapes get an id when missing and
// the next sequence number.
func (s *Store) Put(shape *Shape) *Shape {
	s.mu.Lock()
	c := shape.clone()
	if c.ID == "" {
		c.ID = NewID()
	}
	kind := Added
	if prev, ok := s.shapes[c.ID]; ok {
		kind = Updated
		c.Seq = prev.Seq
	} else {
		s.seq++
		c.Seq = s.seq
	}
	s.shapes[c.ID] = c
	out := c.clone()
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, Change{Kind: kind, Shape: out})
	return out
}

// Delete removes a shape and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	prev, ok := s.shapes[id]
	if ok {
		delete(s.shapes, id)
	}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if ok {
		notify(listeners, Change{Kind: Removed, Shape: prev})
	}
	return ok
}

func (s *Store) Get(id string) (*Shape, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shapes[id]
	if !ok {
		return nil, false
	}
	return sh.clone(), true
}

// Shapes returns all shapes in insertion order.
func (s *Store) Shapes() []*Shape {
	return s.Filter(func(*Shape) bool { return true })
}

// InkShapes returns the user ink in insertion order.
func (s *Store) InkShapes() []*Shape {
	return s.Filter((*Shape).IsInk)
}

// SystemShapes returns the engine generated annotations.
func (s *Store) SystemShapes() []*Shape {
	return s.Filter((*Shape).IsSystem)
}

func (s *Store) Filter(keep func(*Shape) bool) []*Shape {
	s.mu.RLock()
	out := make([]*Shape, 0, len(s.shapes))
	for _, sh := range s.shapes {
		if keep(sh) {
			out = append(out, sh.clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shapes)
}

// Subscribe registers fn for every change and returns a function that
// removes it. Listeners run synchronously on the mutating goroutine.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) snapshotListeners() []func(Change) {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(Change), len(ids))
	for i, id := range ids {
		out[i] = s.listeners[id]
	}
	return out
}

func notify(listeners []func(Change), c Change) {
	for _, fn := range listeners {
		fn(c)
	}
}
