package value

import (
	"time"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindNull is the zero Value.
	KindNull Kind = iota
	// KindBool is a boolean.
	KindBool
	// KindNumber is an integer or a double; see Value.IsInt.
	KindNumber
	// KindString is UTF-8 text.
	KindString
	// KindDuration is a span of time in nanoseconds.
	KindDuration
	// KindRecord is an ordered set of named fields.
	KindRecord
	// KindTable is a column schema with homogeneous rows.
	KindTable
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindDuration:
		return "duration"
	case KindRecord:
		return "record"
	case KindTable:
		return "table"
	default:
		return "invalid"
	}
}

// Value is an immutable structured value. The zero Value is Null.
type Value struct {
	kind  Kind
	isInt bool
	b     bool
	i     int64
	f     float64
	s     string
	rec   *Record
	tab   *Table
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Int returns an integer number.
func Int(i int64) Value {
	return Value{kind: KindNumber, isInt: true, i: i}
}

// Uint returns an integer number, saturating at the int64 maximum.
func Uint(u uint64) Value {
	const maxInt64 = uint64(1<<63 - 1)
	if u > maxInt64 {
		u = maxInt64
	}
	return Int(int64(u)) //nolint:gosec // bounded above
}

// Float returns a double number.
func Float(f float64) Value {
	return Value{kind: KindNumber, f: f}
}

// String returns a text value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Duration returns a duration value.
func Duration(d time.Duration) Value {
	return Value{kind: KindDuration, i: int64(d)}
}

// RecordOf wraps a record.
func RecordOf(r Record) Value {
	return Value{kind: KindRecord, rec: &r}
}

// TableOf wraps a table.
func TableOf(t Table) Value {
	return Value{kind: KindTable, tab: &t}
}

// Kind returns the variant.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is Null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsInt reports whether v is an integer number.
func (v Value) IsInt() bool {
	return v.kind == KindNumber && v.isInt
}

// AsBool returns the boolean payload.
func (v Value) AsBool() bool {
	return v.b
}

// AsInt returns the integer payload. For doubles the value is truncated.
func (v Value) AsInt() int64 {
	if v.kind == KindNumber && !v.isInt {
		return int64(v.f)
	}
	return v.i
}

// AsFloat returns the number as a double.
func (v Value) AsFloat() float64 {
	if v.isInt {
		return float64(v.i)
	}
	return v.f
}

// AsString returns the text payload.
func (v Value) AsString() string {
	return v.s
}

// AsDuration returns the duration payload.
func (v Value) AsDuration() time.Duration {
	return time.Duration(v.i)
}

// AsRecord returns the record payload and whether v holds one.
func (v Value) AsRecord() (Record, bool) {
	if v.kind != KindRecord || v.rec == nil {
		return Record{}, false
	}
	return *v.rec, true
}

// AsTable returns the table payload and whether v holds one.
func (v Value) AsTable() (Table, bool) {
	if v.kind != KindTable || v.tab == nil {
		return Table{}, false
	}
	return *v.tab, true
}

// Equal reports structural equality. Integer and double numbers are never
// equal to each other, even when numerically identical.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		if v.isInt != o.isInt {
			return false
		}
		if v.isInt {
			return v.i == o.i
		}
		return v.f == o.f || (v.f != v.f && o.f != o.f)
	case KindString:
		return v.s == o.s
	case KindDuration:
		return v.i == o.i
	case KindRecord:
		a, _ := v.AsRecord()
		b, _ := o.AsRecord()
		return a.Equal(b)
	case KindTable:
		a, _ := v.AsTable()
		b, _ := o.AsTable()
		return a.Equal(b)
	default:
		return false
	}
}
