package fixture

import (
	"encoding/json"
	"fmt"
	"slices"

	"spantable/internal/spantable"
)

// Mismatch is one failed comparison between a frame and its expectation.
type Mismatch struct {
	Key     string `json:"key"`
	Message string `json:"message"`
	Got     string `json:"got"`
	Want    string `json:"want"`
}

func (m Mismatch) Error() string { return m.Message }

// Check compares frame against every key present in exp and returns the
// failures in FrameKeys order.
func Check(frame *spantable.Frame, exp Expectation) []Mismatch {
	var out []Mismatch
	for _, key := range exp.Keys() {
		switch key {
		case "dims":
			got := frameDims(frame)
			if !equalDims(got, exp.Dims) {
				out = append(out, Mismatch{Key: key, Message: "frame.dims - mismatch", Got: show(got), Want: show(exp.Dims)})
			}
		case "rows":
			got := frame.Text()
			if !equalRows(got, exp.Rows) {
				out = append(out, Mismatch{Key: key, Message: "frame.rows - mismatch", Got: show(got), Want: show(exp.Rows)})
			}
		default:
			if m, ok := checkSection(key, frameSection(frame, key), exp.section(key)); !ok {
				out = append(out, m)
			}
		}
	}
	return out
}

func checkSection(key string, s *spantable.Section, want [][]*string) (Mismatch, bool) {
	switch {
	case s != nil && want != nil:
		got := s.Text()
		if !equalRows(got, want) {
			return Mismatch{Key: key, Message: "frame." + key + ".rows - mismatch", Got: show(got), Want: show(want)}, false
		}
	case s != nil:
		return Mismatch{Key: key, Message: "frame." + key + " present where null expected", Got: s.String(), Want: "null"}, false
	case want != nil:
		return Mismatch{Key: key, Message: "frame." + key + " is null where non-null expected", Got: "null", Want: show(want)}, false
	}
	return Mismatch{}, true
}

func frameSection(frame *spantable.Frame, key string) *spantable.Section {
	switch key {
	case "head":
		return frame.Head()
	case "body":
		return frame.Body()
	case "foot":
		return frame.Foot()
	}
	return nil
}

func frameDims(frame *spantable.Frame) *[2]int {
	depth, width, ok := frame.Dims()
	if !ok {
		return nil
	}
	return &[2]int{depth, width}
}

func equalDims(a, b *[2]int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalRows(a, b [][]*string) bool {
	return slices.EqualFunc(a, b, func(x, y []*string) bool {
		return slices.EqualFunc(x, y, func(p, q *string) bool {
			if p == nil || q == nil {
				return p == q
			}
			return *p == *q
		})
	})
}

func show(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
