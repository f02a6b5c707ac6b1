package dataset

import "sort"

// Record is a read view of one table row.
type Record struct {
	columns []string
	index   map[string]int
	cells   []Cell
	row     int
}

// NewRecord builds a standalone record, e.g. for classifying a single patient.
func NewRecord(values map[string]Cell) Record {
	cols := make([]string, 0, len(values))
	for k := range values {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	r := Record{columns: cols, index: make(map[string]int, len(cols)), cells: make([]Cell, len(cols)), row: -1}
	for i, c := range cols {
		r.index[c] = i
		r.cells[i] = values[c]
	}
	return r
}

// FloatRecord is NewRecord for all-numeric values.
func FloatRecord(values map[string]float64) Record {
	m := make(map[string]Cell, len(values))
	for k, v := range values {
		m[k] = Num(v)
	}
	return NewRecord(m)
}

// Index is the row position in its table, or -1 for standalone records.
func (r Record) Index() int { return r.row }

func (r Record) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Cell returns the named cell.
func (r Record) Cell(name string) (Cell, bool) {
	i, ok := r.index[name]
	if !ok {
		return Cell{}, false
	}
	return r.cells[i], true
}

// Float returns the named numeric value; ok is false when absent or not a number.
func (r Record) Float(name string) (float64, bool) {
	c, ok := r.Cell(name)
	if !ok {
		return 0, false
	}
	return c.Float()
}

// Strings renders each cell in column order.
func (r Record) Strings() []string {
	out := make([]string, len(r.cells))
	for i, c := range r.cells {
		out[i] = c.String()
	}
	return out
}
