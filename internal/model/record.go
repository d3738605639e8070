package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// RawRecord is one provider-native record as handed over by a fetch
// collaborator. Fields is never normalized in place.
type RawRecord struct {
	ID     string `json:"id"`
	Fields Fields `json:"fields"`
}

// Fields is the schema-less field set of a RawRecord.
type Fields map[string]any

// ListMarker is the element Grist prepends to choice-list values.
const ListMarker = "L"

// ErrNotScalar is returned by Scalar when a field holds a nested object.
var ErrNotScalar = eris.New("model: field is not a scalar")

// Has reports whether key is present with a non-nil value.
func (f Fields) Has(key string) bool {
	v, ok := f[key]
	return ok && v != nil
}

// String returns the field as trimmed text. Numbers and booleans are
// formatted; nested values and empty strings report false.
func (f Fields) String(key string) (string, bool) {
	v, ok := f[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := scalarText(v)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Float returns the field as a finite float64. Numeric strings are parsed;
// a comma decimal separator is accepted.
func (f Fields) Float(key string) (float64, bool) {
	v, ok := f[key]
	if !ok || v == nil {
		return 0, false
	}
	return toFloat(v)
}

// Strings returns a list field as its string elements. A plain string is
// returned as a one-element list.
func (f Fields) Strings(key string) ([]string, bool) {
	v, ok := f[key]
	if !ok || v == nil {
		return nil, false
	}
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, el := range t {
			if s, ok := scalarText(el); ok && s != "" {
				out = append(out, s)
			}
		}
		return out, true
	default:
		if s, ok := scalarText(v); ok && s != "" {
			return []string{s}, true
		}
		return nil, false
	}
}

// Object returns a nested object field.
func (f Fields) Object(key string) (map[string]any, bool) {
	v, ok := f[key]
	if !ok || v == nil {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// Scalar returns the field as a property value: strings are trimmed, numbers
// and booleans kept as is, lists of scalars joined with ", " without the
// ListMarker element. Nested objects return ErrNotScalar.
func (f Fields) Scalar(key string) (any, bool, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return nil, false, nil
	}
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != "", nil
	case bool, float64, float32, int, int64, int32, json.Number:
		return t, true, nil
	case []any, []string:
		parts, _ := f.Strings(key)
		kept := parts[:0:0]
		for _, p := range parts {
			if p != ListMarker {
				kept = append(kept, p)
			}
		}
		s := strings.Join(kept, ", ")
		return s, s != "", nil
	default:
		return nil, false, eris.Wrapf(ErrNotScalar, "field %q has type %T", key, v)
	}
}

func scalarText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func toFloat(v any) (float64, bool) {
	var x float64
	switch t := v.(type) {
	case float64:
		x = t
	case float32:
		x = float64(t)
	case int:
		x = float64(t)
	case int64:
		x = float64(t)
	case int32:
		x = float64(t)
	case json.Number:
		p, err := t.Float64()
		if err != nil {
			return 0, false
		}
		x = p
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", ".")
		if s == "" {
			return 0, false
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		x = p
	default:
		return 0, false
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}
	return x, true
}
