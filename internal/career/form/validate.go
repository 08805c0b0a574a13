package form

import (
	"math"
	"strconv"
	"strings"
)

// Values maps each field to its raw text.
type Values map[Field]string

// Clone returns an independent copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Float returns the numeric value of f, if it parses.
func (v Values) Float(f Field) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(v[f]), 64)
	if err != nil || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

// Map returns the values keyed by plain field names.
func (v Values) Map() map[string]string {
	out := make(map[string]string, len(v))
	for k, val := range v {
		out[string(k)] = val
	}
	return out
}

// Errors maps a field, or General, to its message. Empty means valid.
type Errors map[Field]string

func (e Errors) Empty() bool { return len(e) == 0 }

func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, msg := range e {
		out[k] = msg
	}
	return out
}

// Map returns the errors keyed by plain field names.
func (e Errors) Map() map[string]string {
	out := make(map[string]string, len(e))
	for k, msg := range e {
		out[string(k)] = msg
	}
	return out
}

// Validate checks every field independently. A blank field only raises the
// general "required" message; range messages apply to non-blank fields, and
// text that does not parse as a number is treated as out of range.
func Validate(values Values) Errors {
	errs := make(Errors)
	for _, f := range fields {
		raw := strings.TrimSpace(values[f])
		if raw == "" {
			errs[General] = msgRequired
			continue
		}
		c := constraints[f]
		n, ok := values.Float(f)
		if !ok || n < c.Min || n > c.Max {
			errs[f] = c.Message
		}
	}
	return errs
}
