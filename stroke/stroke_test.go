package stroke

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddvk/inkcalc/ink"
)

func seg(points ...ink.Point) ink.Segment {
	return ink.Segment{Points: points}
}

func box(x, y, w, h float64) *ink.Shape {
	return ink.NewDrawShape(x, y, seg(ink.Point{}, ink.Point{X: w, Y: h}))
}

func TestExtract(t *testing.T) {
	now := time.UnixMilli(1_000_000)

	sh := ink.NewDrawShape(100, 200,
		seg(ink.Point{X: 0, Y: 0}, ink.Point{X: 1, Y: 2, Pressure: 0.8}, ink.Point{X: 2, Y: 4, Pressure: 3}),
		seg(ink.Point{X: 5, Y: 5}),
		seg(ink.Point{X: 0, Y: 0, T: 500}, ink.Point{X: 1, Y: 1, T: 400}),
	)
	annotation := &ink.Shape{
		Kind:     ink.Draw,
		Segments: []ink.Segment{seg(ink.Point{}, ink.Point{X: 1})},
		Meta:     map[string]string{ink.MetaSource: ink.SystemTag},
	}

	strokes := Extract([]*ink.Shape{sh, annotation}, now)

	// the single point segment and the system shape are skipped
	require.Len(t, strokes, 2)

	first := strokes[0]
	assert.Equal(t, sh.ID, first.ShapeID)
	assert.Equal(t, []Sample{
		{X: 100, Y: 200, T: 999_980, Pressure: 0.5},
		{X: 101, Y: 202, T: 999_990, Pressure: 0.8},
		{X: 102, Y: 204, T: 1_000_000, Pressure: 1},
	}, first.Samples)

	// recorded timestamps are kept but never go backwards
	assert.Equal(t, int64(500), strokes[1].Samples[0].T)
	assert.Equal(t, int64(500), strokes[1].Samples[1].T)
}

func TestGroupByProximity(t *testing.T) {
	a := box(0, 0, 10, 10)
	b := box(15, 0, 10, 10)  // 5 from a
	c := box(40, 0, 10, 10)  // 15 from b
	d := box(500, 0, 10, 10) // far away
	e := box(28, 0, 10, 10)  // bridges b and c

	clusters := GroupByProximity([]*ink.Shape{a, b, c, d}, 10)
	require.Len(t, clusters, 3)
	assert.Equal(t, []*ink.Shape{a, b}, clusters[0].Shapes)
	assert.Equal(t, ink.Bounds{MinX: 0, MinY: 0, MaxX: 25, MaxY: 10}, clusters[0].Bounds)

	// transitive through e regardless of order
	forward := GroupByProximity([]*ink.Shape{a, b, c, d, e}, 10)
	backward := GroupByProximity([]*ink.Shape{e, d, c, b, a}, 10)
	require.Len(t, forward, 2)
	require.Len(t, backward, 2)
	assert.Len(t, forward[0].Shapes, 4)
	assert.Len(t, backward[0].Shapes, 4)
	assert.Equal(t, forward[0].Bounds, backward[0].Bounds)

	assert.Nil(t, GroupByProximity(nil, 10))
}

func TestActiveCluster(t *testing.T) {
	top := box(0, 0, 50, 40)
	farBelow := box(0, 500, 50, 40)
	sameLine := box(80, 100, 50, 40) // 60 below top, within the 90 band
	annotation := &ink.Shape{Kind: ink.Text, Meta: map[string]string{ink.MetaSource: ink.SystemTag}}

	c, ok := ActiveCluster([]*ink.Shape{top, farBelow, sameLine, annotation}, DefaultBandPadding)
	require.True(t, ok)
	assert.Equal(t, []*ink.Shape{top, sameLine}, c.Shapes)
	assert.Equal(t, ink.Bounds{MinX: 0, MinY: 0, MaxX: 130, MaxY: 140}, c.Bounds)
	assert.Equal(t, top.ID+":1|"+sameLine.ID+":1|", c.Signature())

	_, ok = ActiveCluster([]*ink.Shape{annotation}, DefaultBandPadding)
	assert.False(t, ok)
}
