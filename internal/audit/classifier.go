package audit

import (
	"math"

	"github.com/KaramelBytes/healthaudit/internal/dataset"
)

// RiskStatus is the advisory label attached to a patient record.
type RiskStatus string

const (
	Critical RiskStatus = "Critical"
	Stable   RiskStatus = "Stable"
)

// DefaultThreshold applies to both normalized features.
const DefaultThreshold = 0.6

// ThresholdClassifier labels a record Critical when both normalized disease
// score and normalized BMI are strictly above their thresholds.
type ThresholdClassifier struct {
	DiseaseThreshold float64 `json:"disease_threshold" mapstructure:"disease_threshold"`
	BMIThreshold     float64 `json:"bmi_threshold" mapstructure:"bmi_threshold"`
}

// NewThresholdClassifier returns the classifier with DefaultThreshold on both features.
func NewThresholdClassifier() ThresholdClassifier {
	return ThresholdClassifier{DiseaseThreshold: DefaultThreshold, BMIThreshold: DefaultThreshold}
}

// Label applies the rule to raw values. NaN never exceeds a threshold.
func (c ThresholdClassifier) Label(diseaseNorm, bmiNorm float64) RiskStatus {
	if diseaseNorm > c.DiseaseThreshold && bmiNorm > c.BMIThreshold {
		return Critical
	}
	return Stable
}

// ClassifyRow labels one record. Both normalized columns must be present.
func (c ThresholdClassifier) ClassifyRow(r dataset.Record) (RiskStatus, error) {
	d, err := normalizedValue(r, dataset.ColDiseaseScoreNormalized)
	if err != nil {
		return "", err
	}
	b, err := normalizedValue(r, dataset.ColBMINormalized)
	if err != nil {
		return "", err
	}
	return c.Label(d, b), nil
}

// Classify returns a copy of t with a risk_status column.
func (c ThresholdClassifier) Classify(t *dataset.Table) (*dataset.Table, error) {
	if err := t.Require(dataset.ColDiseaseScoreNormalized, dataset.ColBMINormalized); err != nil {
		return nil, err
	}
	labels := make([]dataset.Cell, t.Len())
	for i := range labels {
		st, err := c.ClassifyRow(t.Row(i))
		if err != nil {
			return nil, err
		}
		labels[i] = dataset.Text(string(st))
	}
	return t.WithColumn(dataset.ColRiskStatus, labels)
}

// ClassifyPatient labels one record with the default thresholds.
func ClassifyPatient(r dataset.Record) (RiskStatus, error) {
	return NewThresholdClassifier().ClassifyRow(r)
}

// ApplyRiskClassification classifies every row with the default thresholds.
func ApplyRiskClassification(t *dataset.Table) (*dataset.Table, error) {
	return NewThresholdClassifier().Classify(t)
}

// normalizedValue reads a normalized feature; a missing cell reads as NaN.
func normalizedValue(r dataset.Record, col string) (float64, error) {
	cell, ok := r.Cell(col)
	if !ok {
		return 0, &MissingColumnError{Column: col}
	}
	switch cell.Kind() {
	case dataset.KindNumber:
		v, _ := cell.Float()
		return v, nil
	case dataset.KindMissing:
		return math.NaN(), nil
	default:
		return 0, &NonNumericError{Column: col, Row: r.Index(), Value: cell.String()}
	}
}
