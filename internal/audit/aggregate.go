package audit

import (
	"math"
	"strconv"

	"github.com/aclements/go-moremath/stats"

	"github.com/KaramelBytes/healthaudit/internal/dataset"
)

// observed collects the finite numbers of a column in row order and counts
// the missing cells. Text or infinite values fail the column.
func observed(column string, cells []dataset.Cell) (vals []float64, missing int, err error) {
	vals = make([]float64, 0, len(cells))
	for i, c := range cells {
		switch c.Kind() {
		case dataset.KindMissing:
			missing++
		case dataset.KindNumber:
			v, _ := c.Float()
			if math.IsInf(v, 0) {
				return nil, 0, &NonNumericError{Column: column, Row: i, Value: strconv.FormatFloat(v, 'g', -1, 64)}
			}
			vals = append(vals, v)
		default:
			return nil, 0, &NonNumericError{Column: column, Row: i, Value: c.String()}
		}
	}
	return vals, missing, nil
}

// mean is the arithmetic mean of xs; NaN when xs is empty.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stats.Mean(xs)
}

// bounds returns the min and max of xs; NaN, NaN when xs is empty.
func bounds(xs []float64) (lo, hi float64) {
	if len(xs) == 0 {
		return math.NaN(), math.NaN()
	}
	return stats.Bounds(xs)
}
