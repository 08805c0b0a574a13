// Package form holds the career form's field values and validation rules.
package form

import (
	"career-predictor/internal/common/errors"
)

// Field names a form input.
type Field string

const (
	FieldAge        Field = "age"
	FieldCGPA       Field = "cgpa"
	FieldRisk       Field = "risk"
	FieldLeadership Field = "leadership"
	FieldNetworking Field = "networking"
	FieldTech       Field = "tech"
	FieldFinance    Field = "finance"
	FieldSiblings   Field = "siblings"

	// General is the error key for form-wide messages.
	General Field = "general"
)

var fields = []Field{
	FieldAge,
	FieldCGPA,
	FieldRisk,
	FieldLeadership,
	FieldNetworking,
	FieldTech,
	FieldFinance,
	FieldSiblings,
}

// Fields returns the form inputs in display order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// ParseField resolves an input name.
func ParseField(name string) (Field, error) {
	f := Field(name)
	if _, ok := constraints[f]; !ok {
		return "", errors.NewUnknownFieldError(name)
	}
	return f, nil
}

// Label is the human title shown next to the input.
func (f Field) Label() string {
	switch f {
	case FieldAge:
		return "Age"
	case FieldCGPA:
		return "CGPA"
	case FieldRisk:
		return "Risk Appetite"
	case FieldLeadership:
		return "Leadership"
	case FieldNetworking:
		return "Networking"
	case FieldTech:
		return "Tech Skills"
	case FieldFinance:
		return "Finance Knowledge"
	case FieldSiblings:
		return "Siblings"
	}
	return string(f)
}

// Constraint is the accepted range of a field. Step is a rendering hint only.
type Constraint struct {
	Min     float64
	Max     float64
	Step    float64
	Message string
}

const (
	msgAge      = "Age must be 15-100"
	msgCGPA     = "CGPA must be 0-10"
	msgScale    = "Must be 0-10"
	msgRequired = "All fields are required"
)

var constraints = map[Field]Constraint{
	FieldAge:        {Min: 15, Max: 100, Step: 1, Message: msgAge},
	FieldCGPA:       {Min: 0, Max: 10, Step: 0.1, Message: msgCGPA},
	FieldRisk:       {Min: 0, Max: 10, Step: 1, Message: msgScale},
	FieldLeadership: {Min: 0, Max: 10, Step: 1, Message: msgScale},
	FieldNetworking: {Min: 0, Max: 10, Step: 1, Message: msgScale},
	FieldTech:       {Min: 0, Max: 10, Step: 1, Message: msgScale},
	FieldFinance:    {Min: 0, Max: 10, Step: 1, Message: msgScale},
	FieldSiblings:   {Min: 0, Max: 10, Step: 1, Message: msgScale},
}

// ConstraintFor returns the constraint of f; ok is false for unknown fields.
func ConstraintFor(f Field) (Constraint, bool) {
	c, ok := constraints[f]
	return c, ok
}
