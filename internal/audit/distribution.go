package audit

import (
	"sort"

	"github.com/KaramelBytes/healthaudit/internal/dataset"
)

// ValueCount is one entry of a frequency distribution.
type ValueCount struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// Distribution is a frequency count ordered ascending by value.
type Distribution []ValueCount

// Count returns the occurrences of v, zero if absent.
func (d Distribution) Count(v float64) int {
	i := sort.Search(len(d), func(i int) bool { return d[i].Value >= v })
	if i < len(d) && d[i].Value == v {
		return d[i].Count
	}
	return 0
}

// Total returns the number of counted cells.
func (d Distribution) Total() int {
	n := 0
	for _, vc := range d {
		n += vc.Count
	}
	return n
}

// FrequencyDistribution counts each distinct numeric value of column.
// Missing cells are not counted.
func FrequencyDistribution(t *dataset.Table, column string) (Distribution, error) {
	if err := t.Require(column); err != nil {
		return nil, err
	}
	cells, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	vals, _, err := observed(column, cells)
	if err != nil {
		return nil, err
	}
	counts := make(map[float64]int)
	for _, v := range vals {
		counts[v]++
	}
	out := make(Distribution, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out, nil
}

// AgeFrequencyDistribution is FrequencyDistribution over the age column.
func AgeFrequencyDistribution(t *dataset.Table) (Distribution, error) {
	return FrequencyDistribution(t, dataset.ColAge)
}
