package value

// Table is a column schema with rows whose field names equal the columns.
type Table struct {
	columns []string
	rows    []Record
}

// NewTable builds a table from columns and rows in one step.
func NewTable(columns []string, rows ...Record) (Table, error) {
	b := NewTableBuilder(columns...)
	for _, row := range rows {
		if err := b.Append(row); err != nil {
			return Table{}, err
		}
	}
	return b.Build()
}

// Columns returns the column names in order.
func (t Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.rows)
}

// Row returns the i-th row.
func (t Table) Row(i int) Record {
	return t.rows[i]
}

// Rows returns a copy of the rows.
func (t Table) Rows() []Record {
	out := make([]Record, len(t.rows))
	copy(out, t.rows)
	return out
}

// Equal reports structural equality.
func (t Table) Equal(o Table) bool {
	if len(t.columns) != len(o.columns) || len(t.rows) != len(o.rows) {
		return false
	}
	for i := range t.columns {
		if t.columns[i] != o.columns[i] {
			return false
		}
	}
	for i := range t.rows {
		if !t.rows[i].Equal(o.rows[i]) {
			return false
		}
	}
	return true
}

// TableBuilder accumulates validated rows for a Table.
// A builder is not safe for concurrent use.
type TableBuilder struct {
	columns []string
	rows    []Record
	err     error
}

// NewTableBuilder starts a table with the given columns.
// Duplicate column names are reported by Append and Build.
func NewTableBuilder(columns ...string) *TableBuilder {
	b := &TableBuilder{
		columns: make([]string, len(columns)),
	}
	copy(b.columns, columns)

	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, dup := seen[c]; dup {
			b.err = &DuplicateFieldError{Name: c}
			break
		}
		seen[c] = struct{}{}
	}
	return b
}

// Append validates row against the columns and adds it.
// The first failure is sticky: later calls return the same error.
func (b *TableBuilder) Append(row Record) error {
	if b.err != nil {
		return b.err
	}
	if !b.matches(row) {
		b.err = &SchemaMismatchError{
			Row:      len(b.rows),
			Expected: b.Columns(),
			Got:      row.Names(),
		}
		return b.err
	}
	b.rows = append(b.rows, row)
	return nil
}

// AppendFields is shorthand for building a Record and appending it.
func (b *TableBuilder) AppendFields(fields ...Field) error {
	if b.err != nil {
		return b.err
	}
	row, err := NewRecord(fields...)
	if err != nil {
		b.err = err
		return err
	}
	return b.Append(row)
}

// Columns returns the declared columns.
func (b *TableBuilder) Columns() []string {
	out := make([]string, len(b.columns))
	copy(out, b.columns)
	return out
}

// Build returns the table, or the first construction error.
func (b *TableBuilder) Build() (Table, error) {
	if b.err != nil {
		return Table{}, b.err
	}
	rows := make([]Record, len(b.rows))
	copy(rows, b.rows)
	return Table{columns: b.Columns(), rows: rows}, nil
}

func (b *TableBuilder) matches(row Record) bool {
	if row.Len() != len(b.columns) {
		return false
	}
	for i, c := range b.columns {
		if row.Field(i).Name != c {
			return false
		}
	}
	return true
}
