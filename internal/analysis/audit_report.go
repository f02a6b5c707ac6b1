package analysis

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/healthaudit/internal/audit"
	"github.com/KaramelBytes/healthaudit/internal/dataset"
	"github.com/KaramelBytes/healthaudit/internal/utils"
)

// AdvisoryNote is printed on every audit report.
const AdvisoryNote = "Risk labels are advisory. They support clinical audit work and must never be the sole basis for treatment or triage decisions."

// AuditOptions controls BuildAudit.
type AuditOptions struct {
	Profile Options
	// SampleSize rows are drawn for the comparison sample; 0 disables it.
	SampleSize int
	SampleSeed int64
}

// DefaultAuditOptions mirrors the library sampling defaults.
func DefaultAuditOptions() AuditOptions {
	return AuditOptions{Profile: DefaultOptions(), SampleSize: audit.DefaultSampleSize, SampleSeed: audit.DefaultSeed}
}

// AuditReport collects everything one pipeline run produced.
type AuditReport struct {
	RunID       string                    `json:"run_id"`
	Source      string                    `json:"source"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Thresholds  audit.ThresholdClassifier `json:"thresholds"`
	Degenerate  string                    `json:"degenerate_policy"`
	Cleaning    *audit.CleanReport        `json:"cleaning"`
	Risk        audit.RiskSummary         `json:"risk"`
	Ages        audit.Distribution        `json:"age_distribution"`
	SampleSeed  int64                     `json:"sample_seed"`
	Warnings    []string                  `json:"warnings,omitempty"`

	Profile *Report        `json:"-"`
	Sample  *dataset.Table `json:"-"`
}

// BuildAudit runs p over raw and gathers the report. The classified table is
// returned alongside. Pipeline errors are returned unchanged.
func BuildAudit(source string, raw *dataset.Table, p audit.Pipeline, opt AuditOptions) (*AuditReport, *dataset.Table, error) {
	out, cleaning, err := p.RunWithReport(raw)
	if err != nil {
		return nil, nil, err
	}
	rep := &AuditReport{
		RunID:       uuid.NewString(),
		Source:      source,
		GeneratedAt: time.Now().UTC(),
		Thresholds:  p.Classifier,
		Degenerate:  p.Cleaner.Degenerate.String(),
		Cleaning:    cleaning,
		SampleSeed:  opt.SampleSeed,
	}
	if rep.Risk, err = audit.SummarizeRisk(out); err != nil {
		return nil, nil, err
	}
	if rep.Ages, err = audit.AgeFrequencyDistribution(out); err != nil {
		return nil, nil, err
	}
	for _, col := range cleaning.Degenerate {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s has a single distinct value; resolved with policy %q", col, rep.Degenerate))
	}
	if n := opt.SampleSize; n > 0 {
		if n > out.Len() {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("sample size %d exceeds %d cleaned rows; sampling all rows", n, out.Len()))
			n = out.Len()
		}
		if rep.Sample, err = audit.Sample(out, n, opt.SampleSeed); err != nil {
			return nil, nil, err
		}
	}
	rep.Profile = Profile(source, out, opt.Profile)
	return rep, out, nil
}

// JSON renders the machine-readable part of the report.
func (a *AuditReport) JSON() ([]byte, error) {
	return utils.PrettyJSON(a)
}

// Markdown renders the full report.
func (a *AuditReport) Markdown() string {
	var b strings.Builder
	b.WriteString("[HEALTH AUDIT]\n")
	b.WriteString(fmt.Sprintf("Run: %s\n", a.RunID))
	if a.Source != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", a.Source))
	}
	b.WriteString(fmt.Sprintf("Generated: %s\n", a.GeneratedAt.Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("Note: %s\n", AdvisoryNote))

	if c := a.Cleaning; c != nil {
		b.WriteString("\n[CLEANING]\n")
		b.WriteString(fmt.Sprintf("- rows: %d in, %d out (%d exact duplicates removed)\n", c.RowsIn, c.RowsOut, c.DuplicatesRemoved))
		for _, cc := range c.Columns {
			b.WriteString(fmt.Sprintf("- %s: %d observed, %d imputed with mean %.4g; range %.4g..%.4g\n", cc.Column, cc.Observed, cc.Imputed, cc.Mean, cc.Min, cc.Max))
		}
		b.WriteString(fmt.Sprintf("- degenerate range policy: %s\n", a.Degenerate))
	}

	b.WriteString("\n[RISK CLASSIFICATION]\n")
	b.WriteString(fmt.Sprintf("Rule: Critical when %s > %g and %s > %g, otherwise Stable\n",
		dataset.ColDiseaseScoreNormalized, a.Thresholds.DiseaseThreshold, dataset.ColBMINormalized, a.Thresholds.BMIThreshold))
	b.WriteString(fmt.Sprintf("- Critical: %d (%.1f%%)\n", a.Risk.Critical, a.Risk.CriticalShare()*100))
	b.WriteString(fmt.Sprintf("- Stable: %d\n", a.Risk.Stable))

	if len(a.Ages) > 0 {
		b.WriteString("\n[AGE DISTRIBUTION]\n")
		rows := make([][]string, len(a.Ages))
		for i, vc := range a.Ages {
			rows[i] = []string{strconv.FormatFloat(vc.Value, 'f', -1, 64), strconv.Itoa(vc.Count)}
		}
		writeMarkdownTable(&b, []string{dataset.ColAge, "count"}, rows)
	}

	if a.Profile != nil {
		b.WriteString("\n")
		b.WriteString(a.Profile.Markdown())
	}

	if a.Sample != nil && a.Sample.Len() > 0 {
		b.WriteString(fmt.Sprintf("\n[RANDOM SAMPLE] (n=%d, seed=%d)\n", a.Sample.Len(), a.SampleSeed))
		rows := make([][]string, a.Sample.Len())
		for i := range rows {
			rows[i] = a.Sample.Row(i).Strings()
		}
		writeMarkdownTable(&b, a.Sample.Columns(), rows)
	}

	if len(a.Warnings) > 0 {
		b.WriteString("\n[AUDIT NOTES]\n")
		for _, w := range a.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}
