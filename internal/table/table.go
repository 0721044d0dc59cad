// Package table holds the ordered-column tabular model fed to the geometry
// builder, with readers for CSV and XLSX sources.
package table

import "github.com/rotisserie/eris"

// Table is an ordered sequence of rows with named columns. Column order is
// stable and drives property ordering downstream.
type Table struct {
	cols []string
	rows [][]any
}

// New creates an empty table with the given column names.
func New(cols []string) *Table {
	c := make([]string, len(cols))
	copy(c, cols)
	return &Table{cols: c}
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return t.cols
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Append adds a row. The row length must match the column count.
func (t *Table) Append(row []any) error {
	if len(row) != len(t.cols) {
		return eris.Errorf("table: row has %d values, want %d", len(row), len(t.cols))
	}
	t.rows = append(t.rows, row)
	return nil
}

// AppendStrings adds a row of string cells. Short rows are padded with nil
// so ragged sources still load.
func (t *Table) AppendStrings(cells []string) {
	row := make([]any, len(t.cols))
	for i := range t.cols {
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	t.rows = append(t.rows, row)
}

// Row returns row i as a map keyed by column name.
func (t *Table) Row(i int) map[string]any {
	m := make(map[string]any, len(t.cols))
	for j, c := range t.cols {
		m[c] = t.rows[i][j]
	}
	return m
}

// Records returns all rows as column-keyed maps, in row order.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, t.Len())
	for i := range out {
		out[i] = t.Row(i)
	}
	return out
}
