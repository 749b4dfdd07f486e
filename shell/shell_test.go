package shell

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddvk/inkcalc/config"
	"github.com/ddvk/inkcalc/encoding/rm"
	"github.com/ddvk/inkcalc/ink"
)

func testCtx(t *testing.T) *ShellCtxt {
	t.Helper()
	ctx, err := NewShellCtxt(config.Default())
	require.NoError(t, err)
	t.Cleanup(func() { ctx.Close() })
	return ctx
}

func TestLoadPage(t *testing.T) {
	ctx := testCtx(t)

	page := rm.FromShapes([]*ink.Shape{
		ink.NewDrawShape(10, 10, ink.Segment{Points: []ink.Point{{X: 0, Y: 0}, {X: 20, Y: 20}}}),
		ink.NewDrawShape(500, 900, ink.Segment{Points: []ink.Point{{X: 0, Y: 0}, {X: 5, Y: 30}}}),
	})
	data, err := page.MarshalBinary()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "page.rm")
	require.NoError(t, ioutil.WriteFile(path, data, 0600))

	ctx.Store().Put(ink.NewDrawShape(0, 0))
	n, err := ctx.LoadPage(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, ctx.Store().InkShapes(), 2, "previous content replaced")
	assert.Equal(t, "[page.rm]>", ctx.prompt())

	_, err = ctx.LoadPage(filepath.Join(t.TempDir(), "missing.rm"))
	assert.Error(t, err)
}

func TestPromptShowsWatch(t *testing.T) {
	ctx := testCtx(t)
	assert.Equal(t, "[inkcalc]>", ctx.prompt())
	ctx.Orchestrator().Attach()
	assert.Equal(t, "[inkcalc*]>", ctx.prompt())
	ctx.Orchestrator().Detach()
	assert.Equal(t, "[inkcalc]>", ctx.prompt())
}

func TestParsePoints(t *testing.T) {
	points, err := parsePoints([]string{"1,2", "3.5,4"})
	require.NoError(t, err)
	assert.Equal(t, []ink.Point{{X: 1, Y: 2}, {X: 3.5, Y: 4}}, points)

	_, err = parsePoints([]string{"1,2"})
	assert.Error(t, err)
	_, err = parsePoints([]string{"1,2", "x"})
	assert.Error(t, err)
	_, err = parsePoints([]string{"1,2", "a,b"})
	assert.Error(t, err)
}

func TestShapeToJSON(t *testing.T) {
	sh := ink.NewDrawShape(10, 20, ink.Segment{Points: []ink.Point{{X: 0, Y: 0}, {X: 5, Y: 5}}})
	j := ShapeToJSON(sh)
	assert.Equal(t, "draw", j.Kind)
	assert.Equal(t, 1, j.Segments)
	assert.Equal(t, 2, j.Points)
	assert.Equal(t, [4]float64{10, 20, 15, 25}, j.Bounds)
	assert.Equal(t, "(10,20)-(15,25)", formatBounds(sh.Bounds()))
	assert.Equal(t, "-", formatBounds(ink.EmptyBounds()))
}
