package encoding

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/vyrodovalexey/svcinfo/internal/value"
)

// csvRenderer implements Renderer for CSV.
type csvRenderer struct{}

// NewCSVRenderer creates a new CSV renderer.
//
// Tables produce a header row of column names followed by one line per
// row. A record produces a header of field names and a single data row.
// A scalar produces a single cell with no header. Every line, including
// the last, ends in "\r\n" regardless of platform. Fields containing a
// comma, a double quote or a line break are quoted with inner quotes
// doubled; line breaks inside a field are kept byte for byte. Durations are integer nanoseconds, and nested records or
// tables are written as their JSON text.
func NewCSVRenderer() Renderer {
	return csvRenderer{}
}

// Render encodes v as CSV.
func (csvRenderer) Render(v value.Value) ([]byte, error) {
	var records [][]string
	switch v.Kind() {
	case value.KindTable:
		table, ok := v.AsTable()
		if !ok {
			return nil, invalid(v)
		}
		records = append(records, table.Columns())
		for i := 0; i < table.Len(); i++ {
			line, err := csvLine(table.Row(i))
			if err != nil {
				return nil, err
			}
			records = append(records, line)
		}
	case value.KindRecord:
		rec, ok := v.AsRecord()
		if !ok {
			return nil, invalid(v)
		}
		line, err := csvLine(rec)
		if err != nil {
			return nil, err
		}
		records = append(records, rec.Names(), line)
	default:
		cell, err := csvField(v)
		if err != nil {
			return nil, err
		}
		records = append(records, []string{cell})
	}

	return writeCSV(records)
}

// writeCSV writes records one at a time and replaces each record
// terminator with "\r\n". The writer's own UseCRLF mode is left off
// because it also rewrites "\n" and drops "\r" inside quoted fields.
func writeCSV(records [][]string) ([]byte, error) {
	var (
		out  bytes.Buffer
		line bytes.Buffer
	)
	w := csv.NewWriter(&line)

	for _, record := range records {
		line.Reset()
		if err := w.Write(record); err != nil {
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		out.Write(bytes.TrimSuffix(line.Bytes(), []byte{'\n'}))
		out.WriteString("\r\n")
	}

	return out.Bytes(), nil
}

// ContentType returns the CSV content type.
func (csvRenderer) ContentType() string {
	return ContentTypeCSV
}

// Format returns FormatCSV.
func (csvRenderer) Format() Format {
	return FormatCSV
}

func csvLine(rec value.Record) ([]string, error) {
	line := make([]string, rec.Len())
	for i := range line {
		cell, err := csvField(rec.Field(i).Value)
		if err != nil {
			return nil, err
		}
		line[i] = cell
	}
	return line, nil
}

// csvField renders a single cell for machine consumption.
func csvField(v value.Value) (string, error) {
	switch v.Kind() {
	case value.KindNull:
		return "", nil
	case value.KindBool:
		return strconv.FormatBool(v.AsBool()), nil
	case value.KindNumber:
		return formatNumber(v), nil
	case value.KindString:
		return v.AsString(), nil
	case value.KindDuration:
		return formatInt(int64(v.AsDuration())), nil
	case value.KindRecord, value.KindTable:
		body, err := jsonRenderer{}.Render(v)
		if err != nil {
			return "", err
		}
		return string(body), nil
	default:
		return "", invalid(v)
	}
}
