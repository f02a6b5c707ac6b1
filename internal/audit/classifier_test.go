package audit

import (
	"errors"
	"math"
	"testing"

	"github.com/KaramelBytes/healthaudit/internal/dataset"
)

func TestClassifyPatient(t *testing.T) {
	cases := []struct {
		name         string
		disease, bmi float64
		want         RiskStatus
	}{
		{"both high", 0.75, 0.8, Critical},
		{"bmi low", 0.9, 0.5, Stable},
		{"disease at threshold", 0.6, 0.7, Stable},
		{"bmi at threshold", 0.7, 0.6, Stable},
		{"just above", 0.6000001, 0.6000001, Critical},
		{"both low", 0.1, 0.2, Stable},
		{"disease missing", math.NaN(), 0.9, Stable},
	}
	for _, c := range cases {
		rec := dataset.FloatRecord(map[string]float64{
			dataset.ColDiseaseScoreNormalized: c.disease,
			dataset.ColBMINormalized:          c.bmi,
		})
		for i := 0; i < 2; i++ {
			got, err := ClassifyPatient(rec)
			if err != nil {
				t.Fatalf("%s: %v", c.name, err)
			}
			if got != c.want {
				t.Errorf("%s: got %s want %s", c.name, got, c.want)
			}
		}
	}
}

func TestClassifyRow_MissingColumn(t *testing.T) {
	rec := dataset.FloatRecord(map[string]float64{dataset.ColBMINormalized: 0.9})
	_, err := ClassifyPatient(rec)
	var mc *MissingColumnError
	if !errors.As(err, &mc) || mc.Column != dataset.ColDiseaseScoreNormalized {
		t.Fatalf("expected missing disease_score_normalized, got %v", err)
	}
}

func TestClassifyRow_TextValue(t *testing.T) {
	rec := dataset.NewRecord(map[string]dataset.Cell{
		dataset.ColDiseaseScoreNormalized: dataset.Text("high"),
		dataset.ColBMINormalized:          num(0.9),
	})
	var nn *NonNumericError
	if _, err := ClassifyPatient(rec); !errors.As(err, &nn) || nn.Row != -1 {
		t.Fatalf("expected NonNumericError, got %v", err)
	}
}

func TestClassify_AddsRiskStatus(t *testing.T) {
	cleaned, err := Clean(clinicTable())
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	out, err := ApplyRiskClassification(cleaned)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if cleaned.Has(dataset.ColRiskStatus) {
		t.Fatalf("input table gained risk_status")
	}
	cells, _ := out.Column(dataset.ColRiskStatus)
	want := []RiskStatus{Stable, Stable, Stable, Critical}
	for i, c := range cells {
		if s, _ := c.Str(); RiskStatus(s) != want[i] {
			t.Errorf("row %d: got %q want %s", i, s, want[i])
		}
	}
	again, err := ApplyRiskClassification(out)
	if err != nil {
		t.Fatalf("re-classify: %v", err)
	}
	if again.Width() != out.Width() {
		t.Fatalf("re-classify should replace risk_status, got %v", again.Columns())
	}
}

func TestClassify_RequiresNormalizedColumns(t *testing.T) {
	_, err := ApplyRiskClassification(clinicTable())
	var mc *MissingColumnError
	if !errors.As(err, &mc) || mc.Column != dataset.ColDiseaseScoreNormalized {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
}

func TestThresholdClassifier_CustomThresholds(t *testing.T) {
	c := ThresholdClassifier{DiseaseThreshold: 0.3, BMIThreshold: 0.9}
	if got := c.Label(0.4, 0.95); got != Critical {
		t.Fatalf("got %s", got)
	}
	if got := c.Label(0.4, 0.9); got != Stable {
		t.Fatalf("got %s", got)
	}
}
