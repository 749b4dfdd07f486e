package rm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// UnmarshalBinary implements encoding.BinaryUnmarshaler for
// transforming bytes into a Rm page
func (rm *Rm) UnmarshalBinary(data []byte) error {
	r := newReader(data)
	if err := r.checkHeader(); err != nil {
		return err
	}
	rm.Version = r.version

	if r.version == V6 {
		return ErrUnsupportedVersion
	}

	nbLayers, err := r.readNumber()
	if err != nil {
		return err
	}

	rm.Layers = make([]Layer, 0, nbLayers)
	for i := uint32(0); i < nbLayers; i++ {
		nbLines, err := r.readNumber()
		if err != nil {
			return err
		}

		var layer Layer
		for j := uint32(0); j < nbLines; j++ {
			line, err := r.readLine()
			if err != nil {
				return fmt.Errorf("layer %d line %d: %w", i, j, err)
			}
			layer.Lines = append(layer.Lines, line)
		}
		rm.Layers = append(rm.Layers, layer)
	}

	return nil
}

type reader struct {
	*bytes.Reader
	version Version
}

func newReader(data []byte) *reader {
	// V5 until the header says otherwise
	return &reader{Reader: bytes.NewReader(data), version: V5}
}

func (r *reader) checkHeader() error {
	buf := make([]byte, HeaderLen)

	n, err := r.Read(buf)
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if n != HeaderLen {
		return fmt.Errorf("wrong header size %d", n)
	}

	switch string(buf) {
	case HeaderV5:
		r.version = V5
	case HeaderV3:
		r.version = V3
	case HeaderV6:
		r.version = V6
	default:
		if strings.Contains(string(buf), "version=6") {
			r.version = V6
			return nil
		}
		return fmt.Errorf("unknown header %q", strings.TrimSpace(string(buf)))
	}

	return nil
}

func (r *reader) readNumber() (uint32, error) {
	var nb uint32
	if err := binary.Read(r, binary.LittleEndian, &nb); err != nil {
		return 0, fmt.Errorf("read number: %w", err)
	}
	return nb, nil
}

func (r *reader) readLine() (Line, error) {
	var line Line

	fields := []interface{}{&line.BrushType, &line.BrushColor, &line.Padding, &line.BrushSize}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return line, fmt.Errorf("read line header: %w", err)
		}
	}

	// added in v5
	if r.version == V5 {
		if err := binary.Read(r, binary.LittleEndian, &line.Unknown); err != nil {
			return line, fmt.Errorf("read line header: %w", err)
		}
	}

	nbPoints, err := r.readNumber()
	if err != nil {
		return line, err
	}
	if nbPoints == 0 {
		return line, nil
	}
	// each point is 24 bytes
	if int64(nbPoints)*24 > int64(r.Len()) {
		return line, fmt.Errorf("point count %d exceeds remaining data", nbPoints)
	}

	line.Points = make([]Point, nbPoints)
	if err := binary.Read(r, binary.LittleEndian, line.Points); err != nil {
		return line, fmt.Errorf("read points: %w", err)
	}

	return line, nil
}
