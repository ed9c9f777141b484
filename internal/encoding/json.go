package encoding

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/vyrodovalexey/svcinfo/internal/value"
)

// jsonAPI is the frozen configuration used for every stream.
var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonRenderer implements Renderer for JSON.
type jsonRenderer struct{}

// NewJSONRenderer creates a new JSON renderer.
//
// Records become objects with keys in field order, tables become arrays
// of such objects, durations become integer nanoseconds and doubles
// always carry a decimal point. NaN and infinities become null.
func NewJSONRenderer() Renderer {
	return jsonRenderer{}
}

// Render encodes v as JSON.
func (jsonRenderer) Render(v value.Value) ([]byte, error) {
	stream := jsonAPI.BorrowStream(nil)
	defer jsonAPI.ReturnStream(stream)

	if err := writeJSON(stream, v); err != nil {
		return nil, err
	}
	if stream.Error != nil {
		return nil, stream.Error
	}

	out := make([]byte, len(stream.Buffer()))
	copy(out, stream.Buffer())
	return out, nil
}

// ContentType returns the JSON content type.
func (jsonRenderer) ContentType() string {
	return ContentTypeJSON
}

// Format returns FormatJSON.
func (jsonRenderer) Format() Format {
	return FormatJSON
}

// writeJSON streams v in declared order.
func writeJSON(stream *jsoniter.Stream, v value.Value) error {
	switch v.Kind() {
	case value.KindNull:
		stream.WriteNil()
	case value.KindBool:
		stream.WriteBool(v.AsBool())
	case value.KindNumber:
		if v.IsInt() {
			stream.WriteInt64(v.AsInt())
		} else if f := v.AsFloat(); finite(f) {
			stream.WriteRaw(formatFloat(f))
		} else {
			stream.WriteNil()
		}
	case value.KindString:
		stream.WriteString(v.AsString())
	case value.KindDuration:
		stream.WriteInt64(int64(v.AsDuration()))
	case value.KindRecord:
		rec, ok := v.AsRecord()
		if !ok {
			return invalid(v)
		}
		return writeJSONRecord(stream, rec)
	case value.KindTable:
		table, ok := v.AsTable()
		if !ok {
			return invalid(v)
		}
		stream.WriteArrayStart()
		for i := 0; i < table.Len(); i++ {
			if i > 0 {
				stream.WriteMore()
			}
			if err := writeJSONRecord(stream, table.Row(i)); err != nil {
				return err
			}
		}
		stream.WriteArrayEnd()
	default:
		return invalid(v)
	}
	return nil
}

func writeJSONRecord(stream *jsoniter.Stream, rec value.Record) error {
	stream.WriteObjectStart()
	for i := 0; i < rec.Len(); i++ {
		if i > 0 {
			stream.WriteMore()
		}
		f := rec.Field(i)
		stream.WriteObjectField(f.Name)
		if err := writeJSON(stream, f.Value); err != nil {
			return err
		}
	}
	stream.WriteObjectEnd()
	return nil
}
