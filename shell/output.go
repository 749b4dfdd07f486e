package shell

import (
	"encoding/json"

	"github.com/abiosoft/ishell"

	"github.com/ddvk/inkcalc/ink"
)

type ShapeJSON struct {
	ID       string            `json:"id"`
	Kind     string            `json:"kind"`
	X        float64           `json:"x"`
	Y        float64           `json:"y"`
	Segments int               `json:"segments"`
	Points   int               `json:"points"`
	Text     string            `json:"text,omitempty"`
	Locked   bool              `json:"locked,omitempty"`
	Bounds   [4]float64        `json:"bounds"`
	Meta     map[string]string `json:"meta,omitempty"`
}

func ShapeToJSON(sh *ink.Shape) ShapeJSON {
	points := 0
	for _, seg := range sh.Segments {
		points += len(seg.Points)
	}
	b := sh.Bounds()
	return ShapeJSON{
		ID:       sh.ID,
		Kind:     sh.Kind.String(),
		X:        sh.X,
		Y:        sh.Y,
		Segments: len(sh.Segments),
		Points:   points,
		Text:     sh.Text,
		Locked:   sh.Locked,
		Bounds:   [4]float64{b.MinX, b.MinY, b.MaxX, b.MaxY},
		Meta:     sh.Meta,
	}
}

func displayShapesJSON(c *ishell.Context, shapes []*ink.Shape) error {
	jsonShapes := make([]ShapeJSON, len(shapes))
	for i, sh := range shapes {
		jsonShapes[i] = ShapeToJSON(sh)
	}

	output, err := json.MarshalIndent(jsonShapes, "", "  ")
	if err != nil {
		return err
	}

	c.Println(string(output))
	return nil
}

func displayShape(c *ishell.Context, sh *ink.Shape) {
	b := sh.Bounds()
	if sh.Kind == ink.Text {
		c.Printf("[t]\t%s\t%s\t(%.0f,%.0f)\n", sh.ID, answerColor(sh.Text), sh.X, sh.Y)
		return
	}
	c.Printf("[d]\t%s\t%d segments\t%s\n", sh.ID, len(sh.Segments),
		dimColor(formatBounds(b)))
}

func formatBounds(b ink.Bounds) string {
	if b.IsEmpty() {
		return "-"
	}
	return "(" + ftoa(b.MinX) + "," + ftoa(b.MinY) + ")-(" + ftoa(b.MaxX) + "," + ftoa(b.MaxY) + ")"
}
