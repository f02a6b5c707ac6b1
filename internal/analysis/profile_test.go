package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/healthaudit/internal/dataset"
)

var scores = []float64{10, 11, 9.5, 10.5, 9.8, 10.2, 8.8, 9.7, 50}

func profileFixture() *dataset.Table {
	rows := make([][]dataset.Cell, 0, len(scores)+1)
	clinics := []string{"Mthatha", "Gqeberha", "Mthatha"}
	for i, s := range scores {
		rows = append(rows, []dataset.Cell{dataset.Num(s), dataset.Text(clinics[i%len(clinics)]), dataset.Null()})
	}
	rows = append(rows, []dataset.Cell{dataset.Null(), dataset.Text("East | London"), dataset.Null()})
	return dataset.MustNew([]string{"disease_score", "clinic", "notes"}, rows...)
}

func TestProfileStatistics(t *testing.T) {
	rep := Profile("q4.csv", profileFixture(), DefaultOptions())
	if rep.Rows != 10 || len(rep.Cols) != 3 {
		t.Fatalf("rows=%d cols=%d", rep.Rows, len(rep.Cols))
	}
	ds, ok := rep.Column("disease_score")
	if !ok || ds.Kind != "numeric" {
		t.Fatalf("disease_score summary = %+v", ds)
	}
	if ds.NonNull != 9 || ds.Missing != 1 || ds.Min != 8.8 || ds.Max != 50 {
		t.Fatalf("unexpected counts/bounds: %+v", ds)
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	if math.Abs(ds.Mean-sum/float64(len(scores))) > 1e-9 {
		t.Fatalf("mean = %v", ds.Mean)
	}
	if ds.OutliersCount != 1 || ds.OutlierThreshold != 3.5 {
		t.Fatalf("outliers = %d thr=%v", ds.OutliersCount, ds.OutlierThreshold)
	}
	clinic, _ := rep.Column("clinic")
	if clinic.Kind != "categorical" || clinic.TopValues[0].Value != "Mthatha" || clinic.TopValues[0].Count != 6 {
		t.Fatalf("clinic summary = %+v", clinic)
	}
	notes, _ := rep.Column("notes")
	if notes.Kind != "empty" || notes.Missing != 10 {
		t.Fatalf("notes summary = %+v", notes)
	}
	if len(rep.Samples) != 5 {
		t.Fatalf("samples = %d", len(rep.Samples))
	}
}

func TestProfileMarkdown(t *testing.T) {
	opt := DefaultOptions()
	opt.SampleRows = 10
	md := Profile("q4.csv", profileFixture(), opt).Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: q4.csv",
		"Rows: 10",
		"- disease_score: numeric (non-null 9, missing 10.0%)",
		"outliers: 1 above |z|>3.5",
		"- clinic: categorical",
		"Mthatha(6)",
		"[HEAD AND SAMPLE ROWS]",
		"| disease_score | clinic | notes |",
		"East / London",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestProfileMixedColumnWarns(t *testing.T) {
	tb := dataset.MustNew([]string{"age"},
		[]dataset.Cell{dataset.Num(30)}, []dataset.Cell{dataset.Num(40)}, []dataset.Cell{dataset.Text("unknown")},
	)
	rep := Profile("", tb, Options{})
	age, _ := rep.Column("age")
	if age.Kind != "numeric" || age.Std == 0 {
		t.Fatalf("age summary = %+v", age)
	}
	if len(rep.Warnings) != 1 || !strings.Contains(rep.Warnings[0], "1 non-numeric") {
		t.Fatalf("warnings = %v", rep.Warnings)
	}
	if age.OutlierThreshold != 0 {
		t.Fatalf("outliers disabled but threshold set")
	}
}

func TestMedianMAD(t *testing.T) {
	med, mad := medianMAD(scores)
	if math.Abs(med-10) > 1e-12 || math.Abs(mad-0.5) > 1e-12 {
		t.Fatalf("median=%v mad=%v", med, mad)
	}
	med, mad = medianMAD([]float64{4, 1, 3, 2})
	if math.Abs(med-2.5) > 1e-12 || math.Abs(mad-1) > 1e-12 {
		t.Fatalf("even-length median=%v mad=%v", med, mad)
	}
	if med, mad := medianMAD(nil); med != 0 || mad != 0 {
		t.Fatalf("empty = %v, %v", med, mad)
	}
}
