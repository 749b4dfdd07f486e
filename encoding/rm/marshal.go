package rm

import (
	"bytes"
	"encoding/binary"
)

// MarshalBinary implements encoding.BinaryMarshaler. Pages are always
// written as version 5.
func (rm *Rm) MarshalBinary() ([]byte, error) {
	w := new(writer)

	w.b.WriteString(HeaderV5)
	w.write(uint32(len(rm.Layers)))

	for _, layer := range rm.Layers {
		w.write(uint32(len(layer.Lines)))
		for _, line := range layer.Lines {
			w.writeLine(line)
		}
	}

	if w.err != nil {
		return nil, w.err
	}
	return w.b.Bytes(), nil
}

type writer struct {
	b   bytes.Buffer
	err error
}

func (w *writer) write(v interface{}) {
	if w.err != nil {
		return
	}
	w.err = binary.Write(&w.b, binary.LittleEndian, v)
}

func (w *writer) writeLine(line Line) {
	w.write(uint32(line.BrushType))
	w.write(uint32(line.BrushColor))
	w.write(line.Padding)
	w.write(float32(line.BrushSize))
	w.write(line.Unknown)

	w.write(uint32(len(line.Points)))
	if len(line.Points) > 0 {
		w.write(line.Points)
	}
}
