package recognize

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/ddvk/inkcalc/eval"
	"github.com/ddvk/inkcalc/hwr"
	"github.com/ddvk/inkcalc/log"
	"github.com/ddvk/inkcalc/stroke"
	"github.com/ddvk/inkcalc/vision"
)

// Backend names, also used as entitlement tiers.
const (
	BackendStroke = "stroke"
	BackendVision = "vision"
)

// Result is a recognized equation. An empty Value means nothing usable.
type Result struct {
	Latex      string
	Expression string
	Value      string
	Backend    string
}

func (r Result) Usable() bool {
	return r.Value != ""
}

// Recognizer is one recognition backend.
type Recognizer interface {
	Name() string
	// Available reports whether the backend has the credentials it needs.
	Available() bool
	Recognize(ctx context.Context, cluster stroke.Cluster) (Result, error)
}

// StrokeRecognizer sends the cluster's strokes to the handwriting service
// and evaluates the returned latex locally.
type StrokeRecognizer struct {
	Client    *hwr.Client
	Options   hwr.Options
	Evaluator *eval.Adapter
	Now       func() time.Time
}

func NewStrokeRecognizer(client *hwr.Client) *StrokeRecognizer {
	return &StrokeRecognizer{
		Client:    client,
		Options:   hwr.DefaultOptions,
		Evaluator: eval.NewAdapter(),
		Now:       time.Now,
	}
}

func (s *StrokeRecognizer) Name() string { return BackendStroke }

func (s *StrokeRecognizer) Available() bool {
	return s.Client.Configured()
}

func (s *StrokeRecognizer) Recognize(ctx context.Context, cluster stroke.Cluster) (Result, error) {
	strokes := stroke.Extract(cluster.Shapes, s.Now())
	if len(strokes) == 0 {
		return Result{}, ErrUnrecognizable
	}

	latex, err := s.Client.Recognize(ctx, strokes, s.Options)
	if err != nil {
		return Result{}, classify(err)
	}
	if latex == "" {
		return Result{}, ErrUnrecognizable
	}

	ev := s.Evaluator.Evaluate(latex)
	res := Result{Latex: latex, Expression: ev.Expression, Value: ev.Value, Backend: BackendStroke}
	if !res.Usable() {
		return res, errors.Wrapf(ErrUnrecognizable, "no value for %q", latex)
	}
	return res, nil
}

// VisionRecognizer renders the cluster to an image and asks the vision
// model to read and solve it.
type VisionRecognizer struct {
	Client *vision.Client
	Render vision.RenderOptions
	Now    func() time.Time
}

func NewVisionRecognizer(client *vision.Client) *VisionRecognizer {
	return &VisionRecognizer{
		Client: client,
		Render: vision.DefaultRenderOptions,
		Now:    time.Now,
	}
}

func (v *VisionRecognizer) Name() string { return BackendVision }

func (v *VisionRecognizer) Available() bool {
	return v.Client.Configured()
}

func (v *VisionRecognizer) Recognize(ctx context.Context, cluster stroke.Cluster) (Result, error) {
	strokes := stroke.Extract(cluster.Shapes, v.Now())
	if len(strokes) == 0 {
		return Result{}, ErrUnrecognizable
	}

	png, err := vision.RenderPNG(strokes, cluster.Bounds, v.Render)
	if err != nil {
		return Result{}, errors.Wrap(err, "render cluster")
	}

	reading, err := v.Client.Read(ctx, png)
	if err != nil {
		return Result{}, classify(err)
	}
	if reading.Status != vision.StatusOK {
		return Result{}, errors.Wrapf(ErrUnrecognizable, "vision: %s", reading.Status)
	}
	if !vision.LooksLikeMath(reading.Expression) {
		log.Trace.Printf("vision: rejected %q", reading.Expression)
		return Result{}, errors.Wrapf(ErrUnrecognizable, "vision: not math %q", reading.Expression)
	}

	return Result{
		Expression: reading.Expression,
		Value:      reading.Answer,
		Backend:    BackendVision,
	}, nil
}
