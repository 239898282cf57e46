package fixture

import (
	"bytes"
	"encoding/json"
	"fmt"

	"spantable/internal/spantable"
)

// Expectation is the decoded JSON block of a fixture. Keys that are absent
// are not checked. A null head, body or foot means the section must not
// exist. A null dims means the frame width must be undefined.
type Expectation struct {
	present map[string]bool

	Dims *[2]int
	Head [][]*string
	Body [][]*string
	Foot [][]*string
	Rows [][]*string
}

func (e Expectation) Has(key string) bool { return e.present[key] }

// Keys returns the keys present in the block, in check order.
func (e Expectation) Keys() []string {
	keys := []string{}
	for _, key := range spantable.FrameKeys() {
		if e.present[key] {
			keys = append(keys, key)
		}
	}
	return keys
}

func (e Expectation) section(key string) [][]*string {
	switch key {
	case "head":
		return e.Head
	case "body":
		return e.Body
	case "foot":
		return e.Foot
	}
	return e.Rows
}

// Describe renders the expected value of key as JSON.
func (e Expectation) Describe(key string) string {
	if key == "dims" {
		return show(e.Dims)
	}
	return show(e.section(key))
}

func (e *Expectation) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Expectation{present: map[string]bool{}}

	for _, key := range spantable.FrameKeys() {
		msg, ok := raw[key]
		if !ok {
			continue
		}
		e.present[key] = true
		null := bytes.Equal(bytes.TrimSpace(msg), []byte("null"))

		switch key {
		case "dims":
			if null {
				continue
			}
			var dims []int
			if err := json.Unmarshal(msg, &dims); err != nil {
				return fmt.Errorf("dims: %w", err)
			}
			if len(dims) != 2 {
				return fmt.Errorf("dims: want a [depth, width] pair, got %d values", len(dims))
			}
			e.Dims = &[2]int{dims[0], dims[1]}
		case "rows":
			if null {
				return fmt.Errorf("rows: must be an array")
			}
			if err := json.Unmarshal(msg, &e.Rows); err != nil {
				return fmt.Errorf("rows: %w", err)
			}
			if e.Rows == nil {
				e.Rows = [][]*string{}
			}
		default:
			if null {
				continue
			}
			var rows [][]*string
			if err := json.Unmarshal(msg, &rows); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if rows == nil {
				rows = [][]*string{}
			}
			switch key {
			case "head":
				e.Head = rows
			case "body":
				e.Body = rows
			case "foot":
				e.Foot = rows
			}
		}
	}
	return nil
}

func ParseExpectation(block string) (Expectation, error) {
	var e Expectation
	if err := json.Unmarshal([]byte(block), &e); err != nil {
		return Expectation{}, fmt.Errorf("decoding expectation: %w", err)
	}
	return e, nil
}
