package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Table is an ordered, column-named collection of rows. Operations never
// modify the receiver; they return a new Table.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Cell
}

// New builds a table from a header and rows. Every row must have one cell per column.
func New(columns []string, rows ...[]Cell) (*Table, error) {
	t := &Table{columns: make([]string, len(columns)), index: make(map[string]int, len(columns))}
	for i, c := range columns {
		name := strings.TrimSpace(c)
		if name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i+1)
		}
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		t.columns[i] = name
		t.index[name] = i
	}
	t.rows = make([][]Cell, 0, len(rows))
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, &ShapeError{Row: i + 1, Got: len(r), Expect: len(columns)}
		}
		t.rows = append(t.rows, append([]Cell(nil), r...))
	}
	return t, nil
}

// MustNew is New that panics on error; intended for fixtures.
func MustNew(columns []string, rows ...[]Cell) *Table {
	t, err := New(columns, rows...)
	if err != nil {
		panic(err)
	}
	return t
}

// Columns returns a copy of the header.
func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Index returns the position of a column.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Has reports whether the column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Require returns a *MissingColumnError for the first absent column.
func (t *Table) Require(names ...string) error {
	if t == nil {
		return errors.New("nil table")
	}
	for _, n := range names {
		if !t.Has(n) {
			return &MissingColumnError{Column: n}
		}
	}
	return nil
}

// Column returns a copy of the named column's cells.
func (t *Table) Column(name string) ([]Cell, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, &MissingColumnError{Column: name}
	}
	out := make([]Cell, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[j]
	}
	return out, nil
}

// At returns the cell at row i, column name.
func (t *Table) At(i int, name string) (Cell, bool) {
	j, ok := t.index[name]
	if !ok || i < 0 || i >= len(t.rows) {
		return Cell{}, false
	}
	return t.rows[i][j], true
}

// Row returns a read view of row i.
func (t *Table) Row(i int) Record {
	return Record{columns: t.columns, index: t.index, cells: t.rows[i], row: i}
}

// Records returns a view of every row in order.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.rows))
	for i := range t.rows {
		out[i] = t.Row(i)
	}
	return out
}

// RowEqual reports whether rows i and j hold equal cells in every column.
func (t *Table) RowEqual(i, j int) bool {
	a, b := t.rows[i], t.rows[j]
	for k := range a {
		if !a[k].Equal(b[k]) {
			return false
		}
	}
	return true
}

// RowKey returns a string that is equal for two rows iff RowEqual holds.
func (t *Table) RowKey(i int) string {
	var b []byte
	for _, c := range t.rows[i] {
		b = c.appendKey(b)
	}
	return string(b)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	idx := make([]int, len(t.rows))
	for i := range idx {
		idx[i] = i
	}
	return t.SelectRows(idx)
}

// SelectRows returns a new table holding the given rows, in the given order.
func (t *Table) SelectRows(rows []int) *Table {
	out := t.emptyLike(len(rows))
	for _, i := range rows {
		out.rows = append(out.rows, append([]Cell(nil), t.rows[i]...))
	}
	return out
}

// WithColumn returns a new table where the named column holds cells.
// An existing column is replaced in place; a new one is appended.
func (t *Table) WithColumn(name string, cells []Cell) (*Table, error) {
	if len(cells) != len(t.rows) {
		return nil, fmt.Errorf("column %q has %d values, table has %d rows", name, len(cells), len(t.rows))
	}
	out := t.emptyLike(len(t.rows))
	j, exists := t.index[name]
	if !exists {
		j = len(out.columns)
		out.columns = append(out.columns, name)
		out.index[name] = j
	}
	for i, r := range t.rows {
		row := make([]Cell, len(out.columns))
		copy(row, r)
		row[j] = cells[i]
		out.rows = append(out.rows, row)
	}
	return out, nil
}

// Without returns a new table without the named columns. Unknown names are ignored.
func (t *Table) Without(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	var keep []int
	var cols []string
	for j, c := range t.columns {
		if !drop[c] {
			keep = append(keep, j)
			cols = append(cols, c)
		}
	}
	out := &Table{columns: cols, index: make(map[string]int, len(cols)), rows: make([][]Cell, 0, len(t.rows))}
	for j, c := range cols {
		out.index[c] = j
	}
	for _, r := range t.rows {
		row := make([]Cell, len(keep))
		for k, j := range keep {
			row[k] = r[j]
		}
		out.rows = append(out.rows, row)
	}
	return out
}

func (t *Table) emptyLike(capRows int) *Table {
	out := &Table{
		columns: append([]string(nil), t.columns...),
		index:   make(map[string]int, len(t.columns)+1),
		rows:    make([][]Cell, 0, capRows),
	}
	for k, v := range t.index {
		out.index[k] = v
	}
	return out
}
