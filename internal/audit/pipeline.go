package audit

import (
	"github.com/KaramelBytes/healthaudit/internal/dataset"
)

// Pipeline composes cleaning and classification.
type Pipeline struct {
	Cleaner    Cleaner
	Classifier ThresholdClassifier
}

// DefaultPipeline uses the default Cleaner and NewThresholdClassifier.
func DefaultPipeline() Pipeline {
	return Pipeline{Classifier: NewThresholdClassifier()}
}

// Run returns Classify(Clean(t)). Errors from either stage are returned as is.
func (p Pipeline) Run(t *dataset.Table) (*dataset.Table, error) {
	out, _, err := p.RunWithReport(t)
	return out, err
}

// RunWithReport is Run that also returns the cleaning report.
func (p Pipeline) RunWithReport(t *dataset.Table) (*dataset.Table, *CleanReport, error) {
	cleaned, rep, err := p.Cleaner.CleanWithReport(t)
	if err != nil {
		return nil, nil, err
	}
	classified, err := p.Classifier.Classify(cleaned)
	if err != nil {
		return nil, nil, err
	}
	return classified, rep, nil
}

// FullAuditPipeline runs DefaultPipeline.
func FullAuditPipeline(t *dataset.Table) (*dataset.Table, error) {
	return DefaultPipeline().Run(t)
}

// RiskSummary counts labels in a classified table.
type RiskSummary struct {
	Critical int `json:"critical"`
	Stable   int `json:"stable"`
}

// Total returns the number of labelled rows.
func (s RiskSummary) Total() int { return s.Critical + s.Stable }

// CriticalShare returns the fraction of rows labelled Critical, 0 for an empty table.
func (s RiskSummary) CriticalShare() float64 {
	if s.Total() == 0 {
		return 0
	}
	return float64(s.Critical) / float64(s.Total())
}

// SummarizeRisk counts Critical and Stable labels in t.
func SummarizeRisk(t *dataset.Table) (RiskSummary, error) {
	if err := t.Require(dataset.ColRiskStatus); err != nil {
		return RiskSummary{}, err
	}
	cells, err := t.Column(dataset.ColRiskStatus)
	if err != nil {
		return RiskSummary{}, err
	}
	var s RiskSummary
	for _, c := range cells {
		switch v, _ := c.Str(); RiskStatus(v) {
		case Critical:
			s.Critical++
		case Stable:
			s.Stable++
		}
	}
	return s, nil
}
