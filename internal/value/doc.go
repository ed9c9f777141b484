// Package value provides the format-agnostic response data model.
//
// A Value is an immutable tagged union over scalars (null, bool, number,
// string, duration) and composites (records and tables). Every renderer
// in the encoding package consumes a Value, so the same response data can
// be emitted as JSON, CSV, a boxed text table or HTML.
//
// # Records
//
// A Record is an ordered sequence of uniquely named fields. Field order is
// fixed at construction:
//
//	rec, err := value.NewRecord(
//	    value.F("status", value.String("ok")),
//	    value.F("uptime", value.Duration(3*time.Hour)),
//	)
//
// # Tables
//
// A Table is a column schema plus homogeneous rows. Rows are validated as
// they are appended; a row whose field names differ from the columns in
// name, count or order is rejected with a *SchemaMismatchError:
//
//	b := value.NewTableBuilder("metric_name", "value", "unit")
//	if err := b.Append(row); err != nil {
//	    return err
//	}
//	table, err := b.Build()
//
// # Thread Safety
//
// Values never change after construction and are safe for concurrent use.
package value
