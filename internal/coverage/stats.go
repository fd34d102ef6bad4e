package coverage

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// loadStats returns the mean and sample standard deviation of in-run loads across every
// candidate in the pool, idle ones included.
func loadStats(pool *Pool, ledger *Ledger) (mean, stddev float64) {
	if pool.Size() == 0 {
		return 0, 0
	}
	ids := make([]string, 0, pool.Size())
	for id := range pool.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	values := make([]float64, len(ids))
	for i, id := range ids {
		values[i] = float64(ledger.Load(id))
	}
	if len(values) < 2 {
		return values[0], 0
	}
	return stat.MeanStdDev(values, nil)
}
