// Package rm decodes and encodes reMarkable .lines pages (versions 3 and
// 5) and converts their strokes into ink shapes.
package rm

import "errors"

type Version int

const (
	V3 Version = iota
	V5
	V6
)

const (
	HeaderV3  = "reMarkable .lines file, version=3          "
	HeaderV5  = "reMarkable .lines file, version=5          "
	HeaderV6  = "reMarkable .lines file, version=6          "
	HeaderLen = 43
)

// Page geometry of the device, in .lines units.
const (
	PPI          = 226
	DeviceWidth  = 1404
	DeviceHeight = 1872
)

var ErrUnsupportedVersion = errors.New("unsupported .lines version")

type BrushColor uint32

const (
	Black BrushColor = 0
	Grey  BrushColor = 1
	White BrushColor = 2
)

type BrushType uint32

const (
	Brush       BrushType = 0
	TiltPencil  BrushType = 1
	BallPoint   BrushType = 2
	Marker      BrushType = 3
	Fineliner   BrushType = 4
	Highlighter BrushType = 5
	Eraser      BrushType = 6
	SharpPencil BrushType = 7
	EraseArea   BrushType = 8

	BrushV5       BrushType = 12
	SharpPencilV5 BrushType = 13
	TiltPencilV5  BrushType = 14
	BallPointV5   BrushType = 15
	MarkerV5      BrushType = 16
	FinelinerV5   BrushType = 17
	HighlighterV5 BrushType = 18
)

// IsInk reports whether lines drawn with the brush are handwriting.
func (b BrushType) IsInk() bool {
	switch b {
	case Eraser, EraseArea, Highlighter, HighlighterV5:
		return false
	}
	return true
}

type BrushSize float32

const (
	Small  BrushSize = 1.875
	Medium BrushSize = 2.0
	Large  BrushSize = 2.125
)

// Rm is one page.
type Rm struct {
	Version Version
	Layers  []Layer
}

type Layer struct {
	Lines []Line
}

type Line struct {
	BrushType  BrushType
	BrushColor BrushColor
	Padding    uint32
	Unknown    float32
	BrushSize  BrushSize
	Points     []Point
}

type Point struct {
	X         float32
	Y         float32
	Speed     float32
	Direction float32
	Width     float32
	Pressure  float32
}
