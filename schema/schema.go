// Package schema has the table model, constants, errors and records for all parts of cgmprep.
package schema

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// ColumnKind identifies the value type stored in a Column.
type ColumnKind int

// All column kinds supported.
const (
	FloatKind  ColumnKind = iota // float64, NaN is missing
	StringKind                   // string with a presence mask
	TimeKind                     // time.Time, zero time is missing
)

// String returns a readable name for the kind.
func (k ColumnKind) String() string {
	switch k {
	case FloatKind:
		return "float"
	case StringKind:
		return "string"
	case TimeKind:
		return "time"
	default:
		return "unknown"
	}
}

// Column is one named, typed and nullable column of a Table.
// Only the slice matching Kind is populated.
type Column struct {
	Name    string
	Kind    ColumnKind
	floats  []float64
	strs    []string
	present []bool
	times   []time.Time
}

// NewFloatColumn creates a float column from values. NaN entries are missing.
func NewFloatColumn(name string, values []float64) *Column {
	return &Column{Name: name, Kind: FloatKind, floats: values}
}

// NewMissingFloatColumn creates a float column of n missing values.
func NewMissingFloatColumn(name string, n int) *Column {
	values := make([]float64, n)
	for i := range values {
		values[i] = math.NaN()
	}
	return NewFloatColumn(name, values)
}

// NewStringColumn creates a string column. present marks which entries hold a value;
// a nil mask means every entry is present.
func NewStringColumn(name string, values []string, present []bool) *Column {
	if present == nil {
		present = make([]bool, len(values))
		for i := range present {
			present[i] = true
		}
	}
	return &Column{Name: name, Kind: StringKind, strs: values, present: present}
}

// NewTimeColumn creates a time column. Zero times are missing.
func NewTimeColumn(name string, values []time.Time) *Column {
	return &Column{Name: name, Kind: TimeKind, times: values}
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	switch c.Kind {
	case FloatKind:
		return len(c.floats)
	case StringKind:
		return len(c.strs)
	default:
		return len(c.times)
	}
}

// IsMissing reports whether row i holds no value.
func (c *Column) IsMissing(i int) bool {
	switch c.Kind {
	case FloatKind:
		return math.IsNaN(c.floats[i])
	case StringKind:
		return !c.present[i]
	default:
		return c.times[i].IsZero()
	}
}

// MissingCount returns the number of missing entries.
func (c *Column) MissingCount() int {
	n := 0
	for i := range c.Len() {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Floats returns the backing float slice. Callers may mutate it in place.
func (c *Column) Floats() []float64 { return c.floats }

// Strings returns the backing string values and presence mask.
func (c *Column) Strings() ([]string, []bool) { return c.strs, c.present }

// Times returns the backing time slice.
func (c *Column) Times() []time.Time { return c.times }

// StringAt returns the string value at row i and whether it is present.
func (c *Column) StringAt(i int) (string, bool) {
	if c.Kind != StringKind || !c.present[i] {
		return "", false
	}
	return c.strs[i], true
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	return &Column{
		Name:    c.Name,
		Kind:    c.Kind,
		floats:  slices.Clone(c.floats),
		strs:    slices.Clone(c.strs),
		present: slices.Clone(c.present),
		times:   slices.Clone(c.times),
	}
}

// appendMissing grows the column by n missing entries.
func (c *Column) appendMissing(n int) {
	switch c.Kind {
	case FloatKind:
		for range n {
			c.floats = append(c.floats, math.NaN())
		}
	case StringKind:
		c.strs = append(c.strs, make([]string, n)...)
		c.present = append(c.present, make([]bool, n)...)
	default:
		c.times = append(c.times, make([]time.Time, n)...)
	}
}

// appendColumn appends the values of other, which must have the same kind.
func (c *Column) appendColumn(other *Column) {
	switch c.Kind {
	case FloatKind:
		c.floats = append(c.floats, other.floats...)
	case StringKind:
		c.strs = append(c.strs, other.strs...)
		c.present = append(c.present, other.present...)
	default:
		c.times = append(c.times, other.times...)
	}
}

// Table is an ordered set of equally long columns.
// The pipeline owns its tables and mutates them in place.
type Table struct {
	columns []*Column
	rows    int
}

// NewTable creates an empty table with no columns and no rows.
func NewTable() *Table {
	return &Table{}
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in order.
func (t *Table) Columns() []*Column { return t.columns }

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// SetColumn adds c to the table, replacing a column with the same name in place.
// The first column added fixes the row count.
func (t *Table) SetColumn(c *Column) error {
	if len(t.columns) > 0 && c.Len() != t.rows {
		return fmt.Errorf("column %q has %d rows, table has %d", c.Name, c.Len(), t.rows)
	}
	for i, existing := range t.columns {
		if existing.Name == c.Name {
			t.columns[i] = c
			return nil
		}
	}
	if len(t.columns) == 0 {
		t.rows = c.Len()
	}
	t.columns = append(t.columns, c)
	return nil
}

// Drop removes the named columns. Unknown names are ignored.
func (t *Table) Drop(names ...string) {
	t.columns = slices.DeleteFunc(t.columns, func(c *Column) bool {
		return slices.Contains(names, c.Name)
	})
	if len(t.columns) == 0 {
		t.rows = 0
	}
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{rows: t.rows, columns: make([]*Column, len(t.columns))}
	for i, c := range t.columns {
		out.columns[i] = c.Clone()
	}
	return out
}

// Concat stacks tables vertically in the given order. The result holds the union
// of all columns in first-seen order; cells a table does not have are missing.
// A column name appearing with two different kinds is an error.
func Concat(tables ...*Table) (*Table, error) {
	out := NewTable()
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.columns {
			existing, ok := out.Column(c.Name)
			if !ok {
				fresh := &Column{Name: c.Name, Kind: c.Kind}
				fresh.appendMissing(out.rows)
				out.columns = append(out.columns, fresh)
				continue
			}
			if existing.Kind != c.Kind {
				return nil, fmt.Errorf("column %q is %s in one table and %s in another", c.Name, existing.Kind, c.Kind)
			}
		}
		for _, dst := range out.columns {
			if src, ok := t.Column(dst.Name); ok {
				dst.appendColumn(src)
			} else {
				dst.appendMissing(t.rows)
			}
		}
		out.rows += t.rows
	}
	return out, nil
}
