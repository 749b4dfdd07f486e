// Package ink models the drawing surface: freehand draw shapes, text
// annotations and an observable store holding them.
package ink

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// SystemTag marks shapes produced by the engine rather than by the user.
const SystemTag = "inkcalc"

// Meta keys used on system annotations.
const (
	MetaSource     = "source"
	MetaLatex      = "latex"
	MetaExpression = "expression"
	MetaValue      = "value"
	MetaBackend    = "backend"
)

type Kind int

const (
	Draw Kind = iota
	Text
)

func (k Kind) String() string {
	switch k {
	case Draw:
		return "draw"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Point is a shape-local sample. T is milliseconds since the epoch and is
// zero when the source did not record it; Pressure is zero when unknown.
type Point struct {
	X        float64
	Y        float64
	T        int64
	Pressure float64
}

type Segment struct {
	Points []Point
}

// Shape is a single object on the drawing surface. Segment points are
// relative to the shape origin (X, Y).
type Shape struct {
	ID        string
	Kind      Kind
	X         float64
	Y         float64
	Segments  []Segment
	Text      string
	Locked    bool
	Meta      map[string]string
	CreatedAt time.Time

	// Seq orders shapes by insertion into a Store.
	Seq uint64
}

// NewDrawShape builds a user ink shape with a fresh id.
func NewDrawShape(x, y float64, segments ...Segment) *Shape {
	return &Shape{
		ID:        NewID(),
		Kind:      Draw,
		X:         x,
		Y:         y,
		Segments:  segments,
		CreatedAt: time.Now(),
	}
}

// NewID returns a shape id.
func NewID() string {
	return "shape:" + uuid.NewString()
}

// IsSystem reports whether the shape was generated by the engine.
func (s *Shape) IsSystem() bool {
	return s.Meta[MetaSource] == SystemTag
}

// IsInk reports whether the shape is user ink eligible for recognition.
func (s *Shape) IsInk() bool {
	return s.Kind == Draw && !s.IsSystem()
}

// Bounds returns the world-space bounding box of all points. A shape
// without points yields an empty box at its origin.
func (s *Shape) Bounds() Bounds {
	b := EmptyBounds()
	for _, seg := range s.Segments {
		for _, p := range seg.Points {
			b = b.Extend(s.X+p.X, s.Y+p.Y)
		}
	}
	if b.IsEmpty() {
		return Bounds{MinX: s.X, MinY: s.Y, MaxX: s.X, MaxY: s.Y}
	}
	return b
}

func (s *Shape) clone() *Shape {
	c := *s
	c.Segments = make([]Segment, len(s.Segments))
	for i, seg := range s.Segments {
		c.Segments[i].Points = append([]Point(nil), seg.Points...)
	}
	if s.Meta != nil {
		c.Meta = make(map[string]string, len(s.Meta))
		for k, v := range s.Meta {
			c.Meta[k] = v
		}
	}
	return &c
}

// Bounds is an axis aligned box in world coordinates.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

func EmptyBounds() Bounds {
	return Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

func (b Bounds) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

func (b Bounds) Extend(x, y float64) Bounds {
	b.MinX = math.Min(b.MinX, x)
	b.MinY = math.Min(b.MinY, y)
	b.MaxX = math.Max(b.MaxX, x)
	b.MaxY = math.Max(b.MaxY, y)
	return b
}

func (b Bounds) Union(o Bounds) Bounds {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	return b.Extend(o.MinX, o.MinY).Extend(o.MaxX, o.MaxY)
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

func (b Bounds) CenterY() float64 { return (b.MinY + b.MaxY) / 2 }

// Distance is the euclidean gap between two boxes, zero when they overlap.
func (b Bounds) Distance(o Bounds) float64 {
	dx := math.Max(0, math.Max(o.MinX-b.MaxX, b.MinX-o.MaxX))
	dy := math.Max(0, math.Max(o.MinY-b.MaxY, b.MinY-o.MaxY))
	return math.Hypot(dx, dy)
}

// OverlapsBand reports whether the box intersects the vertical band
// [minY, maxY].
func (b Bounds) OverlapsBand(minY, maxY float64) bool {
	return b.MaxY >= minY && b.MinY <= maxY
}
