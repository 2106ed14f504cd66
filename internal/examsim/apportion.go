package examsim

import (
	"math"
	"sort"
)

// Apportion splits total slots across domains in proportion to their
// weights using largest-remainder rounding. Leftover slots go to the largest
// fractional remainders, ties by domain id. Non-positive weights get 0. The
// targets always sum to total when any weight is positive.
func Apportion(weights map[string]float64, total int) map[string]int {
	out := make(map[string]int, len(weights))
	ids := make([]string, 0, len(weights))
	sum := 0.0
	for id, w := range weights {
		out[id] = 0
		if w > 0 {
			ids = append(ids, id)
			sum += w
		}
	}
	if sum <= 0 || total <= 0 {
		return out
	}
	sort.Strings(ids)

	remainders := make(map[string]float64, len(ids))
	assigned := 0
	for _, id := range ids {
		quota := weights[id] / sum * float64(total)
		floor := math.Floor(quota)
		out[id] = int(floor)
		remainders[id] = quota - floor
		assigned += int(floor)
	}

	sort.SliceStable(ids, func(i, j int) bool {
		return remainders[ids[i]] > remainders[ids[j]]
	})
	for i := 0; assigned < total; i++ {
		out[ids[i%len(ids)]]++
		assigned++
	}
	return out
}
