// Package stroke turns ink shapes into backend agnostic timestamped
// strokes and groups them into equation clusters.
package stroke

import (
	"time"

	"github.com/ddvk/inkcalc/ink"
)

// SampleInterval is assumed between samples that carry no timestamp.
const SampleInterval = 10 * time.Millisecond

type Sample struct {
	X        float64
	Y        float64
	T        int64 // milliseconds
	Pressure float64
}

// Stroke has at least two samples with non-decreasing timestamps.
type Stroke struct {
	ShapeID string
	Samples []Sample
}

// Extract converts the user ink among shapes into world-space strokes.
// Samples without a timestamp get one synthesized backwards from now at
// SampleInterval spacing, which keeps ordering but not wall-clock time.
func Extract(shapes []*ink.Shape, now time.Time) []Stroke {
	var strokes []Stroke
	nowMs := now.UnixMilli()
	step := SampleInterval.Milliseconds()

	for _, sh := range shapes {
		if !sh.IsInk() {
			continue
		}
		for _, seg := range sh.Segments {
			n := len(seg.Points)
			if n < 2 {
				continue
			}

			samples := make([]Sample, n)
			var last int64
			for i, p := range seg.Points {
				t := p.T
				if t == 0 {
					t = nowMs - int64(n-1-i)*step
				}
				if i > 0 && t < last {
					t = last
				}
				last = t

				samples[i] = Sample{
					X:        sh.X + p.X,
					Y:        sh.Y + p.Y,
					T:        t,
					Pressure: clampPressure(p.Pressure),
				}
			}
			strokes = append(strokes, Stroke{ShapeID: sh.ID, Samples: samples})
		}
	}
	return strokes
}

func clampPressure(p float64) float64 {
	switch {
	case p <= 0:
		return 0.5
	case p > 1:
		return 1
	}
	return p
}
