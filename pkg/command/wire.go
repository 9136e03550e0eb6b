package command

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

// Marshal encodes a validated command as a single wire line, without
// trailing newline. The type code is emitted first as "T", followed by
// parameters in schema declaration order.
//
// Field order is part of the firmware contract, so the object is built
// by hand rather than through a map.
func Marshal(v Validated) ([]byte, error) {
	if v.schema == nil {
		return nil, fmt.Errorf("marshal: zero command")
	}

	var buf bytes.Buffer
	buf.WriteString(`{"T":`)
	buf.WriteString(strconv.Itoa(v.schema.Type))
	for _, p := range v.schema.Params {
		val, ok := v.values[p.Name]
		if !ok {
			continue
		}
		enc, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", p.Name, err)
		}
		buf.WriteByte(',')
		buf.WriteByte('"')
		buf.WriteString(p.Name)
		buf.WriteString(`":`)
		buf.Write(enc)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Feedback is a normalized pose report from the arm: cartesian end
// effector pose plus joint angles in radians, base joint first.
type Feedback struct {
	X float64
	Y float64
	Z float64
	T float64
	// Joints holds b, s, e, h and, on six axis arms, w and g.
	Joints []float64
}

// feedbackWire covers both reply shapes seen across firmware revisions:
// named per-joint fields, or pos/joints arrays.
type feedbackWire struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
	T *float64 `json:"t"`
	B *float64 `json:"b"`
	S *float64 `json:"s"`
	E *float64 `json:"e"`
	H *float64 `json:"h"`
	W *float64 `json:"w"`
	G *float64 `json:"g"`

	Pos    []float64 `json:"pos"`
	Joints []float64 `json:"joints"`
}

// ParseFeedback decodes one feedback reply line into a Feedback. A line
// that is not JSON or matches neither reply shape returns a *FormatError.
func ParseFeedback(line []byte) (Feedback, error) {
	var w feedbackWire
	if err := json.Unmarshal(line, &w); err != nil {
		return Feedback{}, &FormatError{Line: string(line), Err: err}
	}

	if len(w.Pos) == 4 {
		return Feedback{
			X:      w.Pos[0],
			Y:      w.Pos[1],
			Z:      w.Pos[2],
			T:      w.Pos[3],
			Joints: append([]float64(nil), w.Joints...),
		}, nil
	}

	if w.X == nil || w.Y == nil || w.Z == nil || w.T == nil ||
		w.B == nil || w.S == nil || w.E == nil || w.H == nil {
		return Feedback{}, &FormatError{Line: string(line)}
	}

	fb := Feedback{
		X:      *w.X,
		Y:      *w.Y,
		Z:      *w.Z,
		T:      *w.T,
		Joints: []float64{*w.B, *w.S, *w.E, *w.H},
	}
	if w.W != nil && w.G != nil {
		fb.Joints = append(fb.Joints, *w.W, *w.G)
	}
	return fb, nil
}
