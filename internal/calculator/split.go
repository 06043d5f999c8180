// Package calculator implements the split and settlement arithmetic.
// Everything here is pure: the service layer loads state, calls in, and
// persists the result.
package calculator

import (
	"fmt"
	"math"
)

// Round2 rounds a monetary amount to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ValidAmount reports whether v carries at most 2 decimal places.
func ValidAmount(v float64) bool {
	return math.Abs(v-Round2(v)) < 1e-9
}

// EqualSplit divides amount evenly across all participants.
// Shares are returned unrounded; rounding happens once, at settlement
// generation, so that re-splitting stays idempotent.
func EqualSplit(amount float64, participants []string) (map[string]float64, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}
	share := amount / float64(len(participants))
	shares := make(map[string]float64, len(participants))
	for _, p := range participants {
		shares[p] = share
	}
	return shares, nil
}

// ValidateCustomSplit checks that caller-supplied shares sum to the
// expense amount. The comparison is done at 2-decimal precision, so
// ordinary floating-point noise does not reject a valid split.
func ValidateCustomSplit(amount float64, shares map[string]float64) error {
	if len(shares) == 0 {
		return fmt.Errorf("splits required")
	}
	var total float64
	for _, v := range shares {
		total += v
	}
	if Round2(total) != Round2(amount) {
		return fmt.Errorf("split amounts do not sum to expense total: got %.2f, want %.2f", total, amount)
	}
	return nil
}
