package dataset

import (
	"fmt"
	"slices"
)

// Schema records the source column order so rows can be written back in the
// same layout they were read from.
type Schema struct {
	header []string
	// position of each required column (indexed like columns) in header
	required []int
	// positions of pass-through columns in header, in Row.Extra order
	extras []int
}

// DefaultSchema returns a schema holding only the required columns.
func DefaultSchema() *Schema {
	s := &Schema{header: RequiredColumns(), required: make([]int, len(columns))}
	for i := range columns {
		s.required[i] = i
	}
	return s
}

// Header returns the column names in source order.
func (s *Schema) Header() []string { return slices.Clone(s.header) }

// ExtraColumns returns the names of the pass-through columns.
func (s *Schema) ExtraColumns() []string {
	out := make([]string, len(s.extras))
	for i, p := range s.extras {
		out[i] = s.header[p]
	}
	return out
}

// Encode formats a row as a record aligned with Header.
func (s *Schema) Encode(r Row) []string {
	out := make([]string, len(s.header))
	for i, c := range columns {
		out[s.required[i]] = c.format(r)
	}
	for i, p := range s.extras {
		if i < len(r.Extra) {
			out[p] = r.Extra[i]
		}
	}
	return out
}

// Dataset is an immutable, in-memory collection of rows.
type Dataset struct {
	name   string
	schema *Schema
	rows   []Row
}

// New builds a dataset from rows. The rows slice is copied. A nil schema
// means DefaultSchema. Student IDs must be unique.
func New(name string, schema *Schema, rows []Row) (*Dataset, error) {
	if schema == nil {
		schema = DefaultSchema()
	}
	seen := make(map[int]int, len(rows))
	for i, r := range rows {
		if prev, ok := seen[r.StudentID]; ok {
			return nil, &DataSourceError{Source: name, Reason: fmt.Sprintf("duplicate %s %d (rows %d and %d)", ColStudentID, r.StudentID, prev+1, i+1)}
		}
		seen[r.StudentID] = i
	}
	return &Dataset{name: name, schema: schema, rows: slices.Clone(rows)}, nil
}

// Name is the base name of the source the dataset was read from.
func (d *Dataset) Name() string { return d.name }

// Schema returns the source layout.
func (d *Dataset) Schema() *Schema { return d.schema }

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Row returns a copy of the i-th row.
func (d *Dataset) Row(i int) Row { return d.rows[i] }

// Rows returns a fresh copy of all rows in source order.
func (d *Dataset) Rows() []Row { return slices.Clone(d.rows) }
