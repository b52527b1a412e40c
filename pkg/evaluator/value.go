// Package evaluator implements the shape DSL interpreter.
package evaluator

import (
	"math"
	"strconv"
	"strings"

	"github.com/dmitrycvs/C-DSL/pkg/render"
)

// Value is the interface for all runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	value() // sealed marker
}

// Null is the result of a call that returned nothing.
type Null struct{}

func (Null) value() {}

// Bool represents a boolean value.
type Bool struct {
	Value bool
}

func (Bool) value() {}

// Number represents a numeric value.
type Number struct {
	Value float64
}

func (Number) value() {}

// Text represents a string value. Numeric-looking text stays text until an
// arithmetic or comparison site coerces it.
type Text struct {
	Value string
}

func (Text) value() {}

// NewNull creates a null value.
func NewNull() Value {
	return Null{}
}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return Bool{Value: b}
}

// NewNumber creates a numeric value.
func NewNumber(n float64) Value {
	return Number{Value: n}
}

// NewText creates a text value.
func NewText(s string) Value {
	return Text{Value: s}
}

// ToNumber coerces v for arithmetic and comparison. Null is 0, booleans are
// 0 or 1, and text converts when it spells a finite number. ok is false for
// any other text.
func ToNumber(v Value) (n float64, ok bool) {
	switch val := v.(type) {
	case Number:
		return val.Value, true
	case Bool:
		if val.Value {
			return 1, true
		}
		return 0, true
	case Null, nil:
		return 0, true
	case Text:
		f, err := strconv.ParseFloat(strings.TrimSpace(val.Value), 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// FormatValue returns the textual form used by print and text concatenation.
func FormatValue(v Value) string {
	switch val := v.(type) {
	case Number:
		return render.FormatNumber(val.Value)
	case Text:
		return val.Value
	case Bool:
		if val.Value {
			return "true"
		}
		return "false"
	}
	return "null"
}

// TypeName returns the user-facing name of v's type.
func TypeName(v Value) string {
	switch v.(type) {
	case Number:
		return "number"
	case Text:
		return "text"
	case Bool:
		return "boolean"
	}
	return "null"
}
