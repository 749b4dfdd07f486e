package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ddvk/inkcalc/ink"
)

func TestInkOperations(t *testing.T) {
	shapes := []*ink.Shape{
		ink.NewDrawShape(10, 20, ink.Segment{Points: []ink.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}}),
		ink.NewDrawShape(0, 0, ink.Segment{Points: []ink.Point{{X: 1, Y: 1}}}),
		{Kind: ink.Text, Text: "= 4", Meta: map[string]string{ink.MetaSource: ink.SystemTag}},
	}

	ops := inkOperations(shapes, 0.5, 100, 2)
	out := string(ops.Bytes())

	// one stroked path: the single point segment and the text are skipped
	assert.Equal(t, 1, strings.Count(out, "\nS"))
	assert.Contains(t, out, "5 90 m")
	assert.Contains(t, out, "10 90 l")
	assert.Contains(t, out, "10 85 l")
	assert.Contains(t, out, "2 w")
}

func TestInkOperationsEmpty(t *testing.T) {
	ops := inkOperations(nil, 1, 100, 1)
	assert.Empty(t, *ops)
}
