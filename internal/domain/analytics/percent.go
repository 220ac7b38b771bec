package analytics

import (
	"slices"

	"github.com/shopspring/decimal"
)

const quotaScale = 20 // decimal places kept for intermediate quotas

var hundred = decimal.NewFromInt(100)

// largestRemainder splits 100 among parts proportionally to weights, rounded to
// places decimals, so that the parts sum to exactly 100. Each part is first
// truncated; the missing units go to the parts with the largest remainders.
// Remainder ties go to the larger weight, then to the earlier index.
// A zero total assigns everything to fallback.
func largestRemainder(weights []float64, places int32, fallback int) []decimal.Decimal {
	out := make([]decimal.Decimal, len(weights))
	for i := range out {
		out[i] = decimal.Zero
	}

	w := make([]decimal.Decimal, len(weights))
	total := decimal.Zero
	for i, v := range weights {
		if v > 0 {
			w[i] = decimal.NewFromFloat(v)
		} else {
			w[i] = decimal.Zero
		}
		total = total.Add(w[i])
	}
	if total.IsZero() {
		out[fallback] = hundred
		return out
	}

	rem := make([]decimal.Decimal, len(weights))
	assigned := decimal.Zero
	for i := range w {
		quota := w[i].Mul(hundred).DivRound(total, quotaScale)
		out[i] = quota.Truncate(places)
		rem[i] = quota.Sub(out[i])
		assigned = assigned.Add(out[i])
	}

	unit := decimal.New(1, -places)
	missing := int(hundred.Sub(assigned).Div(unit).Round(0).IntPart())
	if missing <= 0 {
		return out
	}

	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		if c := rem[b].Cmp(rem[a]); c != 0 {
			return c
		}
		return w[b].Cmp(w[a])
	})
	for k := 0; k < missing; k++ {
		i := order[k%len(order)]
		out[i] = out[i].Add(unit)
	}
	return out
}
