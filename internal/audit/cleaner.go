package audit

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/healthaudit/internal/dataset"
)

// DegeneratePolicy decides what normalization does when a column's max equals its min.
type DegeneratePolicy int

const (
	// DegenerateError fails cleaning with *DegenerateRangeError.
	DegenerateError DegeneratePolicy = iota
	// DegenerateZero maps every row to 0.0.
	DegenerateZero
	// DegenerateNaN leaves every row without a value.
	DegenerateNaN
)

func (p DegeneratePolicy) String() string {
	switch p {
	case DegenerateZero:
		return "zero"
	case DegenerateNaN:
		return "nan"
	default:
		return "error"
	}
}

// ParseDegeneratePolicy maps the config spelling ("error", "zero", "nan") to a policy.
func ParseDegeneratePolicy(s string) (DegeneratePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error", "fail":
		return DegenerateError, nil
	case "zero", "0":
		return DegenerateZero, nil
	case "nan", "missing":
		return DegenerateNaN, nil
	default:
		return DegenerateError, fmt.Errorf("invalid degenerate_range policy: %s (use error, zero or nan)", s)
	}
}

// NormalizedSources are the columns that get a min-max scaled companion.
var NormalizedSources = []string{dataset.ColBMI, dataset.ColDiseaseScore}

// ColumnCleaning records what cleaning did to one base column.
type ColumnCleaning struct {
	Column   string  `json:"column"`
	Observed int     `json:"observed"`
	Imputed  int     `json:"imputed"`
	Mean     float64 `json:"mean"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// CleanReport summarizes a Clean call.
type CleanReport struct {
	RowsIn            int              `json:"rows_in"`
	RowsOut           int              `json:"rows_out"`
	DuplicatesRemoved int              `json:"duplicates_removed"`
	Columns           []ColumnCleaning `json:"columns"`
	// Degenerate lists normalized columns resolved by a non-error policy.
	Degenerate []string `json:"degenerate,omitempty"`
}

// Imputed returns the total number of filled cells.
func (r *CleanReport) Imputed() int {
	n := 0
	for _, c := range r.Columns {
		n += c.Imputed
	}
	return n
}

// Cleaner deduplicates rows, imputes missing base values with column means and
// appends min-max normalized BMI and disease score columns.
type Cleaner struct {
	Degenerate DegeneratePolicy
	Log        logrus.FieldLogger
}

// Clean cleans t with the default Cleaner.
func Clean(t *dataset.Table) (*dataset.Table, error) {
	return Cleaner{}.Clean(t)
}

// Clean returns a cleaned copy of t.
func (c Cleaner) Clean(t *dataset.Table) (*dataset.Table, error) {
	out, _, err := c.CleanWithReport(t)
	return out, err
}

// CleanWithReport returns a cleaned copy of t and what was changed.
func (c Cleaner) CleanWithReport(t *dataset.Table) (*dataset.Table, *CleanReport, error) {
	if err := t.Require(dataset.BaseColumns...); err != nil {
		return nil, nil, err
	}
	log := c.Log
	if log == nil {
		log = discard
	}

	out, removed := Deduplicate(t)
	rep := &CleanReport{RowsIn: t.Len(), RowsOut: out.Len(), DuplicatesRemoved: removed}
	log.WithFields(logrus.Fields{"rows": t.Len(), "duplicates": removed}).Debug("removed duplicate rows")

	for _, col := range dataset.BaseColumns {
		cells, _ := out.Column(col)
		vals, missing, err := observed(col, cells)
		if err != nil {
			return nil, nil, err
		}
		cc := ColumnCleaning{Column: col, Observed: len(vals), Imputed: missing}
		if len(vals) == 0 {
			if out.Len() > 0 {
				return nil, nil, &NoObservationsError{Column: col}
			}
			rep.Columns = append(rep.Columns, cc)
			continue
		}
		cc.Mean = mean(vals)
		if math.IsInf(cc.Mean, 0) || math.IsNaN(cc.Mean) {
			return nil, nil, &OverflowError{Column: col, Stat: "mean"}
		}
		if missing > 0 {
			filled := make([]dataset.Cell, len(cells))
			for i, cell := range cells {
				if cell.IsMissing() {
					filled[i] = dataset.Num(cc.Mean)
				} else {
					filled[i] = cell
				}
			}
			if out, err = out.WithColumn(col, filled); err != nil {
				return nil, nil, err
			}
			log.WithFields(logrus.Fields{"column": col, "imputed": missing, "mean": cc.Mean}).Debug("imputed missing values")
		}
		// Range is taken after imputation so the mean participates.
		all := vals
		if missing > 0 {
			all = append(all, cc.Mean)
		}
		cc.Min, cc.Max = bounds(all)
		rep.Columns = append(rep.Columns, cc)
	}

	for _, col := range NormalizedSources {
		var err error
		var degenerate bool
		out, degenerate, err = c.normalize(out, col)
		if err != nil {
			return nil, nil, err
		}
		if degenerate {
			rep.Degenerate = append(rep.Degenerate, dataset.NormalizedColumn(col))
			log.WithFields(logrus.Fields{"column": col, "policy": c.Degenerate.String()}).Warn("normalization range is degenerate")
		}
	}
	return out, rep, nil
}

// normalize writes <col>_normalized = (v - min) / (max - min) over an imputed column.
func (c Cleaner) normalize(t *dataset.Table, col string) (*dataset.Table, bool, error) {
	cells, err := t.Column(col)
	if err != nil {
		return nil, false, err
	}
	vals := make([]float64, len(cells))
	for i, cell := range cells {
		vals[i], _ = cell.Float()
	}
	name := dataset.NormalizedColumn(col)
	scaled := make([]dataset.Cell, len(vals))
	if len(vals) == 0 {
		out, err := t.WithColumn(name, scaled)
		return out, false, err
	}
	lo, hi := bounds(vals)
	span := hi - lo
	if math.IsInf(span, 0) {
		return nil, false, &OverflowError{Column: col, Stat: "range"}
	}
	degenerate := span == 0
	if degenerate {
		switch c.Degenerate {
		case DegenerateZero:
			for i := range scaled {
				scaled[i] = dataset.Num(0)
			}
		case DegenerateNaN:
			for i := range scaled {
				scaled[i] = dataset.Num(math.NaN())
			}
		default:
			return nil, true, &DegenerateRangeError{Column: col, Value: lo}
		}
	} else {
		for i, v := range vals {
			scaled[i] = dataset.Num((v - lo) / span)
		}
	}
	out, err := t.WithColumn(name, scaled)
	return out, degenerate, err
}

// Deduplicate drops exact duplicate rows, keeping the first occurrence and the
// order of survivors. It returns the new table and the number of rows removed.
func Deduplicate(t *dataset.Table) (*dataset.Table, int) {
	seen := make(map[string]struct{}, t.Len())
	keep := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		key := t.RowKey(i)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}
	return t.SelectRows(keep), t.Len() - len(keep)
}
