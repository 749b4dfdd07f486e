package hwr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/ddvk/inkcalc/log"
	"github.com/ddvk/inkcalc/stroke"
)

var NoContent = errors.New("no strokes to recognize")

// Options tune the request body.
type Options struct {
	XDPI float32
	YDPI float32
	Lang string
}

// DefaultOptions match a 96 DPI drawing surface.
var DefaultOptions = Options{XDPI: 96, YDPI: 96, Lang: "en_US"}

// Recognize sends the strokes as one math group and returns the LaTeX
// label of the first recognized expression.
func (c *Client) Recognize(ctx context.Context, strokes []stroke.Stroke, opts Options) (string, error) {
	js, err := BuildRequest(strokes, opts)
	if err != nil {
		return "", err
	}

	body, err := c.SendRequest(ctx, js, jiixMimeType)
	if err != nil {
		return "", err
	}
	log.Trace.Printf("hwr: received response (%d bytes), preview: %q", len(body), preview(body, 200))

	return ExtractLabel(body), nil
}

// BuildRequest converts strokes to the MyScript batch JSON.
func BuildRequest(strokes []stroke.Stroke, opts Options) ([]byte, error) {
	if len(strokes) == 0 {
		return nil, NoContent
	}
	if opts.XDPI == 0 {
		opts.XDPI = DefaultOptions.XDPI
	}
	if opts.YDPI == 0 {
		opts.YDPI = DefaultOptions.YDPI
	}

	batch := BatchInput{
		Configuration: &Configuration{
			Lang: opts.Lang,
			Math: &MathConfig{Solver: &SolverConfig{Enable: false}},
		},
		ContentType:     "Math",
		ConversionState: "DIGITAL_EDIT",
		StrokeGroups:    []*StrokeGroup{{}},
		XDPI:            opts.XDPI,
		YDPI:            opts.YDPI,
	}
	sg := batch.StrokeGroups[0]

	totalPoints := 0
	for _, s := range strokes {
		samples := downsample(s.Samples)
		st := &Stroke{
			X:           make([]float32, 0, len(samples)),
			Y:           make([]float32, 0, len(samples)),
			T:           make([]int64, 0, len(samples)),
			P:           make([]float32, 0, len(samples)),
			PointerType: "PEN",
		}
		for _, p := range samples {
			// one decimal keeps the payload small
			st.X = append(st.X, round(p.X, 1))
			st.Y = append(st.Y, round(p.Y, 1))
			st.T = append(st.T, p.T)
			st.P = append(st.P, round(p.Pressure, 2))
		}
		sg.Strokes = append(sg.Strokes, st)
		totalPoints += len(samples)
	}

	log.Trace.Printf("hwr: %d strokes with %d points (after downsampling)", len(sg.Strokes), totalPoints)
	return json.Marshal(batch)
}

// downsample keeps every Nth sample of long strokes, always keeping the
// first and the last one.
func downsample(samples []stroke.Sample) []stroke.Sample {
	if len(samples) <= 2 {
		return samples
	}

	rate := 1
	switch n := len(samples); {
	case n > 2000:
		rate = 6
	case n > 1000:
		rate = 4
	case n > 500:
		rate = 3
	case n > 200:
		rate = 2
	}
	if rate == 1 {
		return samples
	}

	out := make([]stroke.Sample, 0, len(samples)/rate+2)
	out = append(out, samples[0])
	for i := rate; i < len(samples)-1; i += rate {
		out = append(out, samples[i])
	}
	return append(out, samples[len(samples)-1])
}

func round(v float64, decimals int) float32 {
	m := math.Pow(10, float64(decimals))
	return float32(math.Round(v*m) / m)
}

// ExtractLabel returns the LaTeX of expressions[0]. Older exports carry
// the label or text at the top level; a non-JSON body is taken as raw
// LaTeX.
func ExtractLabel(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ""
	}
	if data[0] != '{' {
		return string(data)
	}

	var jiix Jiix
	if err := json.Unmarshal(data, &jiix); err != nil {
		log.Trace.Printf("hwr: failed to unmarshal jiix: %v", err)
		return ""
	}

	for _, e := range jiix.Expressions {
		if label := strings.TrimSpace(e.Label); label != "" {
			return label
		}
	}
	if jiix.Label != "" {
		return jiix.Label
	}
	return jiix.Text
}

func preview(b []byte, n int) string {
	if len(b) < n {
		n = len(b)
	}
	return string(b[:n])
}
