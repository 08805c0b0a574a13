package form

// Form holds the in-progress input and the errors of the last validation.
// It is not safe for concurrent use; the lifecycle controller serializes access.
type Form struct {
	values Values
	errors Errors
}

// New returns a form with every field empty.
func New() *Form {
	values := make(Values, len(fields))
	for _, f := range fields {
		values[f] = ""
	}
	return &Form{values: values, errors: make(Errors)}
}

// Set stores the raw value and clears that field's own error. The general
// error stays until the next validation.
func (f *Form) Set(name, value string) error {
	field, err := ParseField(name)
	if err != nil {
		return err
	}
	f.values[field] = value
	delete(f.errors, field)
	return nil
}

// Validate recomputes and stores the errors.
func (f *Form) Validate() Errors {
	f.errors = Validate(f.values)
	return f.errors.Clone()
}

func (f *Form) Values() Values { return f.values.Clone() }

func (f *Form) Errors() Errors { return f.errors.Clone() }
