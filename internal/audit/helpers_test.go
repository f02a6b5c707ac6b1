package audit

import (
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/KaramelBytes/healthaudit/internal/dataset"
)

var (
	num  = dataset.Num
	null = dataset.Null
)

var baseCols = []string{dataset.ColAge, dataset.ColBMI, dataset.ColBloodPressure, dataset.ColDiseaseScore}

// clinicTable holds one exact duplicate (row 2) and missing values in every
// base column except BMI.
func clinicTable() *dataset.Table {
	return dataset.MustNew(baseCols,
		[]dataset.Cell{num(30), num(20), num(120), num(10)},
		[]dataset.Cell{num(45), num(30), null(), num(50)},
		[]dataset.Cell{num(30), num(20), num(120), num(10)},
		[]dataset.Cell{null(), num(40), num(140), null()},
		[]dataset.Cell{num(60), num(38), num(130), num(90)},
	)
}

// randomTable builds n rows of plausible patient values with ~10% missing cells.
func randomTable(seed uint64, n int) *dataset.Table {
	r := rand.New(rand.NewPCG(seed, 7))
	rows := make([][]dataset.Cell, n)
	for i := range rows {
		vals := []float64{
			float64(18 + r.IntN(70)),
			15 + r.Float64()*25,
			float64(90 + r.IntN(80)),
			r.Float64() * 100,
		}
		row := make([]dataset.Cell, len(vals))
		for j, v := range vals {
			if i > 1 && r.IntN(10) == 0 {
				row[j] = null()
				continue
			}
			row[j] = num(v)
		}
		rows[i] = row
	}
	return dataset.MustNew(baseCols, rows...)
}

func floats(t *testing.T, tb *dataset.Table, col string) []float64 {
	t.Helper()
	cells, err := tb.Column(col)
	if err != nil {
		t.Fatalf("column %s: %v", col, err)
	}
	out := make([]float64, len(cells))
	for i, c := range cells {
		v, ok := c.Float()
		if !ok {
			t.Fatalf("column %s row %d is not numeric: %v", col, i, c)
		}
		out[i] = v
	}
	return out
}

func assertSameTable(t *testing.T, got, want *dataset.Table) {
	t.Helper()
	if !reflect.DeepEqual(got.Columns(), want.Columns()) {
		t.Fatalf("columns differ: %v vs %v", got.Columns(), want.Columns())
	}
	if got.Len() != want.Len() {
		t.Fatalf("row count differs: %d vs %d", got.Len(), want.Len())
	}
	for i := 0; i < got.Len(); i++ {
		if got.RowKey(i) != want.RowKey(i) {
			t.Fatalf("row %d differs: %v vs %v", i, got.Row(i).Strings(), want.Row(i).Strings())
		}
	}
}
