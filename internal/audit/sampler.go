package audit

import (
	"fmt"
	"math/rand/v2"

	"github.com/KaramelBytes/healthaudit/internal/dataset"
)

// Sampling defaults used when the caller does not choose.
const (
	DefaultSampleSize = 20
	DefaultSeed       = 42
)

// Sample draws count rows uniformly without replacement. The generator is
// seeded per call, so equal (table, count, seed) inputs give equal output.
// Rows come back in the order they were drawn.
func Sample(t *dataset.Table, count int, seed int64) (*dataset.Table, error) {
	if err := t.Require(); err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: count=%d", ErrNegativeCount, count)
	}
	n := t.Len()
	if count > n {
		return nil, &InsufficientRowsError{Requested: count, Available: n}
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	// partial Fisher-Yates: idx[:count] is the draw order
	for i := 0; i < count; i++ {
		j := i + rng.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return t.SelectRows(idx[:count]), nil
}

// SamplePatients samples DefaultSampleSize rows with DefaultSeed.
func SamplePatients(t *dataset.Table) (*dataset.Table, error) {
	return Sample(t, DefaultSampleSize, DefaultSeed)
}
