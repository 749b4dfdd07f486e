package rm

import (
	"math"

	"github.com/ddvk/inkcalc/ink"
)

// Shapes converts every ink line of the page into a draw shape. The shape
// origin is the top-left of the line; points become shape-local. Erasers
// and highlighters are dropped.
func (rm *Rm) Shapes() []*ink.Shape {
	var shapes []*ink.Shape
	for _, layer := range rm.Layers {
		for _, line := range layer.Lines {
			if !line.BrushType.IsInk() || len(line.Points) == 0 {
				continue
			}
			shapes = append(shapes, lineShape(line))
		}
	}
	return shapes
}

func lineShape(line Line) *ink.Shape {
	minX, minY := math.Inf(1), math.Inf(1)
	for _, p := range line.Points {
		minX = math.Min(minX, float64(p.X))
		minY = math.Min(minY, float64(p.Y))
	}

	points := make([]ink.Point, len(line.Points))
	for i, p := range line.Points {
		points[i] = ink.Point{
			X:        float64(p.X) - minX,
			Y:        float64(p.Y) - minY,
			Pressure: NormalizePressure(p.Pressure),
		}
	}
	return ink.NewDrawShape(minX, minY, ink.Segment{Points: points})
}

// NormalizePressure maps device pressure into [0,1]. Missing pressure
// becomes 0.5; some firmware reports values scaled by ten.
func NormalizePressure(p float32) float64 {
	switch {
	case p <= 0:
		return 0.5
	case p > 1:
		p = p / 10
		if p > 1 {
			p = 1
		}
	}
	return float64(p)
}

// FromShapes builds a single-layer page from user ink so a surface can be
// saved back to a .lines file. Timestamps are not representable.
func FromShapes(shapes []*ink.Shape) *Rm {
	var layer Layer
	for _, sh := range shapes {
		if !sh.IsInk() {
			continue
		}
		for _, seg := range sh.Segments {
			line := Line{
				BrushType:  FinelinerV5,
				BrushColor: Black,
				BrushSize:  Medium,
				Points:     make([]Point, len(seg.Points)),
			}
			for i, p := range seg.Points {
				line.Points[i] = Point{
					X:        float32(sh.X + p.X),
					Y:        float32(sh.Y + p.Y),
					Width:    2,
					Pressure: float32(p.Pressure),
				}
			}
			layer.Lines = append(layer.Lines, line)
		}
	}
	return &Rm{Version: V5, Layers: []Layer{layer}}
}
