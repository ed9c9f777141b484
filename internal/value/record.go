package value

// Field is a named value inside a Record.
type Field struct {
	Name  string
	Value Value
}

// F is shorthand for constructing a Field.
func F(name string, v Value) Field {
	return Field{Name: name, Value: v}
}

// Record is an ordered set of uniquely named fields.
type Record struct {
	fields []Field
}

// NewRecord builds a record from fields in the given order.
// It fails with a *DuplicateFieldError if a name repeats.
func NewRecord(fields ...Field) (Record, error) {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			return Record{}, &DuplicateFieldError{Name: f.Name}
		}
		seen[f.Name] = struct{}{}
	}

	out := make([]Field, len(fields))
	copy(out, fields)
	return Record{fields: out}, nil
}

// MustRecord is like NewRecord but panics on error. Intended for
// literals whose field names are fixed in code.
func MustRecord(fields ...Field) Record {
	r, err := NewRecord(fields...)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.fields)
}

// Field returns the i-th field.
func (r Record) Field(i int) Field {
	return r.fields[i]
}

// Fields returns a copy of the fields in order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Names returns the field names in order.
func (r Record) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Get looks up a field by name.
func (r Record) Get(name string) (Value, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Equal reports structural equality including field order.
func (r Record) Equal(o Record) bool {
	if len(r.fields) != len(o.fields) {
		return false
	}
	for i := range r.fields {
		if r.fields[i].Name != o.fields[i].Name || !r.fields[i].Value.Equal(o.fields[i].Value) {
			return false
		}
	}
	return true
}
