package hwr

// Simplified models for the MyScript iink batch API (without swagger dependencies)

// BatchInput represents the batch input for MyScript API
type BatchInput struct {
	Configuration   *Configuration `json:"configuration,omitempty"`
	ContentType     string         `json:"contentType"`
	ConversionState string         `json:"conversionState,omitempty"`
	StrokeGroups    []*StrokeGroup `json:"strokeGroups"`
	Width           int32          `json:"width,omitempty"`
	Height          int32          `json:"height,omitempty"`
	XDPI            float32        `json:"xDPI"`
	YDPI            float32        `json:"yDPI"`
}

// Configuration represents recognition configuration
type Configuration struct {
	Lang string      `json:"lang,omitempty"`
	Math *MathConfig `json:"math,omitempty"`
}

type MathConfig struct {
	Solver *SolverConfig `json:"solver,omitempty"`
}

type SolverConfig struct {
	Enable bool `json:"enable"`
}

// StrokeGroup represents a group of strokes
type StrokeGroup struct {
	Strokes []*Stroke `json:"strokes"`
}

// Stroke represents a single stroke
type Stroke struct {
	X           []float32 `json:"x"`
	Y           []float32 `json:"y"`
	T           []int64   `json:"t,omitempty"`
	P           []float32 `json:"p,omitempty"`
	PointerType string    `json:"pointerType,omitempty"`
}

// Jiix is the subset of the JIIX export used for math content.
type Jiix struct {
	Type        string       `json:"type"`
	Label       string       `json:"label"`
	Text        string       `json:"text"`
	Expressions []Expression `json:"expressions"`
}

type Expression struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}
