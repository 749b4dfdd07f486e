package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddvk/inkcalc/ink"
)

func TestDisplayPlacement(t *testing.T) {
	store := ink.NewStore()
	m := NewManager(store)

	sh := m.Display(Answer{Latex: "36+15", Expression: "36+15", Value: "51", Backend: "hwr"},
		ink.Bounds{MinX: 10, MinY: 100, MaxX: 200, MaxY: 140})
	require.NotNil(t, sh)

	assert.Equal(t, "= 51", sh.Text)
	assert.Equal(t, ink.Text, sh.Kind)
	assert.True(t, sh.Locked)
	assert.True(t, sh.IsSystem())
	assert.False(t, sh.IsInk())
	assert.Equal(t, 230.0, sh.X)
	assert.Equal(t, 108.0, sh.Y)
	assert.Equal(t, "36+15", sh.Meta[ink.MetaExpression])
	assert.Equal(t, "hwr", sh.Meta[ink.MetaBackend])
}

func TestDisplayKeepsOneAnnotation(t *testing.T) {
	store := ink.NewStore()
	store.Put(ink.NewDrawShape(0, 0, ink.Segment{Points: []ink.Point{{X: 0, Y: 0}, {X: 5, Y: 5}}}))
	m := NewManager(store)

	b := ink.Bounds{MinX: 0, MinY: 0, MaxX: 5, MaxY: 5}
	for _, v := range []string{"1", "2", "3", "4"} {
		m.Display(Answer{Value: v}, b)
	}

	system := store.SystemShapes()
	require.Len(t, system, 1)
	assert.Equal(t, "= 4", system[0].Text)
	assert.Equal(t, 2, store.Len())

	cur, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, system[0].ID, cur.ID)

	m.Clear()
	assert.Empty(t, store.SystemShapes())
	_, ok = m.Current()
	assert.False(t, ok)
}

func TestDisplayIgnoresEmptyValue(t *testing.T) {
	store := ink.NewStore()
	m := NewManager(store)

	assert.Nil(t, m.Display(Answer{}, ink.Bounds{MaxX: 1, MaxY: 1}))
	assert.Nil(t, m.Display(Answer{Value: "1"}, ink.EmptyBounds()))
	assert.Zero(t, store.Len())
}

func TestSweep(t *testing.T) {
	store := ink.NewStore()
	b := ink.Bounds{MaxX: 1, MaxY: 1}
	NewManager(store).Display(Answer{Value: "1"}, b)
	m := NewManager(store)
	m.Display(Answer{Value: "2"}, b)

	assert.Equal(t, 2, m.Sweep())
	assert.Zero(t, store.Len())
}
