package ink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(x0, y0, x1, y1 float64) Segment {
	return Segment{Points: []Point{{X: x0, Y: y0}, {X: x1, Y: y1}}}
}

func TestStoreOrderAndNotify(t *testing.T) {
	s := NewStore()

	var changes []Change
	unsubscribe := s.Subscribe(func(c Change) { changes = append(changes, c) })

	a := s.Put(NewDrawShape(0, 0, line(0, 0, 10, 10)))
	b := s.Put(NewDrawShape(20, 0, line(0, 0, 10, 10)))
	annotation := s.Put(&Shape{Kind: Text, Text: "= 2", Meta: map[string]string{MetaSource: SystemTag}})

	require.Len(t, changes, 3)
	assert.Equal(t, Added, changes[0].Kind)

	ids := func(shapes []*Shape) []string {
		out := make([]string, len(shapes))
		for i, sh := range shapes {
			out[i] = sh.ID
		}
		return out
	}
	assert.Equal(t, []string{a.ID, b.ID, annotation.ID}, ids(s.Shapes()))
	assert.Equal(t, []string{a.ID, b.ID}, ids(s.InkShapes()))
	assert.Equal(t, []string{annotation.ID}, ids(s.SystemShapes()))

	a.Segments = append(a.Segments, line(1, 1, 2, 2))
	updated := s.Put(a)
	assert.Equal(t, a.Seq, updated.Seq)
	assert.Equal(t, Updated, changes[3].Kind)

	assert.True(t, s.Delete(b.ID))
	assert.False(t, s.Delete(b.ID))
	assert.Equal(t, Removed, changes[4].Kind)

	unsubscribe()
	s.Put(NewDrawShape(0, 0))
	assert.Len(t, changes, 5)
	assert.Equal(t, 3, s.Len())
}

func TestStoreReturnsCopies(t *testing.T) {
	s := NewStore()
	sh := s.Put(NewDrawShape(0, 0, line(0, 0, 1, 1)))

	sh.Segments[0].Points[0].X = 99
	got, ok := s.Get(sh.ID)
	require.True(t, ok)
	assert.Equal(t, 0.0, got.Segments[0].Points[0].X)
}

func TestBounds(t *testing.T) {
	sh := NewDrawShape(100, 50, line(0, 0, 10, 20), line(-5, 5, 0, 0))
	b := sh.Bounds()
	assert.Equal(t, Bounds{MinX: 95, MinY: 50, MaxX: 110, MaxY: 70}, b)
	assert.Equal(t, 60.0, b.CenterY())

	far := Bounds{MinX: 113, MinY: 74, MaxX: 120, MaxY: 80}
	assert.InDelta(t, 5.0, b.Distance(far), 1e-9)
	assert.Zero(t, b.Distance(Bounds{MinX: 100, MinY: 60, MaxX: 200, MaxY: 61}))

	assert.True(t, b.OverlapsBand(70, 90))
	assert.False(t, b.OverlapsBand(71, 90))

	empty := NewDrawShape(3, 4)
	assert.Equal(t, Bounds{MinX: 3, MinY: 4, MaxX: 3, MaxY: 4}, empty.Bounds())
}
