package vision

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/nfnt/resize"

	"github.com/ddvk/inkcalc/ink"
	"github.com/ddvk/inkcalc/stroke"
)

// RenderOptions control the rasterized cluster image.
type RenderOptions struct {
	Padding    float64
	PenWidth   float64
	MaxWidth   uint
	MaxHeight  uint
	Background color.Gray
	Ink        color.Gray
}

var DefaultRenderOptions = RenderOptions{
	Padding:    20,
	PenWidth:   3,
	MaxWidth:   768,
	MaxHeight:  768,
	Background: color.Gray{Y: 255},
	Ink:        color.Gray{Y: 0},
}

// RenderPNG draws the strokes of a cluster black on white, cropped to the
// cluster bounds, and scales the result down to fit MaxWidth x MaxHeight.
func RenderPNG(strokes []stroke.Stroke, bounds ink.Bounds, opts RenderOptions) ([]byte, error) {
	if bounds.IsEmpty() {
		return nil, errEmptyCluster
	}

	w := int(math.Ceil(bounds.Width()+2*opts.Padding)) + 1
	h := int(math.Ceil(bounds.Height()+2*opts.Padding)) + 1
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = opts.Background.Y
	}

	ox, oy := bounds.MinX-opts.Padding, bounds.MinY-opts.Padding
	r := math.Max(opts.PenWidth/2, 0.5)
	for _, s := range strokes {
		for i := 1; i < len(s.Samples); i++ {
			a, b := s.Samples[i-1], s.Samples[i]
			drawSegment(img, a.X-ox, a.Y-oy, b.X-ox, b.Y-oy, r, opts.Ink)
		}
	}

	var out image.Image = img
	if opts.MaxWidth > 0 && opts.MaxHeight > 0 && (uint(w) > opts.MaxWidth || uint(h) > opts.MaxHeight) {
		out = resize.Thumbnail(opts.MaxWidth, opts.MaxHeight, img, resize.Bilinear)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawSegment stamps discs of radius r along the segment.
func drawSegment(img *image.Gray, x0, y0, x1, y1, r float64, c color.Gray) {
	length := math.Hypot(x1-x0, y1-y0)
	steps := int(math.Ceil(length/math.Max(r/2, 0.5))) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		stamp(img, x0+(x1-x0)*t, y0+(y1-y0)*t, r, c)
	}
}

func stamp(img *image.Gray, cx, cy, r float64, c color.Gray) {
	b := img.Bounds()
	for y := int(cy - r); y <= int(cy+r); y++ {
		for x := int(cx - r); x <= int(cx+r); x++ {
			if !(image.Point{X: x, Y: y}).In(b) {
				continue
			}
			dx, dy := float64(x)-cx, float64(y)-cy
			if dx*dx+dy*dy <= r*r {
				img.SetGray(x, y, c)
			}
		}
	}
}

// DataURL wraps PNG bytes for an image_url content part.
func DataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
