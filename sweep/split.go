package sweep

import (
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
)

const (
	maxDestinations = 10

	// Tolerance on the percentage sum, matching what UIs produce after
	// float arithmetic on user input.
	percentTolerance = 0.01
)

// Destination is one recipient of a split claim.
type Destination struct {
	Address    solana.PublicKey
	Percentage float64 // 0-100
}

// ValidateDestinations enforces the destination-set contract: 1-10 entries,
// each percentage in (0, 100], summing to 100 within tolerance. The per-entry
// range check matters: a negative percentage would underflow the integer
// share allocation even when the sum still reads 100.
func ValidateDestinations(dests []Destination) error {
	if len(dests) == 0 {
		return fmt.Errorf("%w: at least one destination required", ErrInvalidDestinations)
	}
	if len(dests) > maxDestinations {
		return fmt.Errorf("%w: maximum %d destinations supported", ErrInvalidDestinations, maxDestinations)
	}

	var total float64
	for _, d := range dests {
		// Negated form so NaN fails too.
		if !(d.Percentage > 0 && d.Percentage <= 100) {
			return fmt.Errorf("%w: percentage %v out of range (0, 100]", ErrInvalidDestinations, d.Percentage)
		}
		total += d.Percentage
	}
	if math.Abs(total-100) > percentTolerance {
		return fmt.Errorf("%w: percentages sum to %v, must be 100", ErrInvalidDestinations, total)
	}
	return nil
}

// splitShares allocates an integer amount across destinations: each share is
// floor(amount * percentage / 100), except the last destination, which
// receives the exact remainder. The remainder rule is an observable policy -
// changing it changes what recipients receive.
//
// Percentages are quantized to basis points (0.01%) with half-away-from-zero
// rounding before the floor division, so 33.33 stays exactly 3333 bps despite
// float representation; anything finer than 0.01% rounds to the nearest
// basis point.
func splitShares(amount uint64, dests []Destination) []uint64 {
	shares := make([]uint64, len(dests))
	var allocated uint64

	for i, d := range dests {
		if i == len(dests)-1 {
			shares[i] = amount - allocated
			break
		}
		// Basis points keep the floor computation in integer arithmetic.
		bps := uint64(math.Round(d.Percentage * 100))
		share := mulDiv(amount, bps, 10_000)
		shares[i] = share
		allocated += share
	}
	return shares
}

// mulDiv computes a*b/d without intermediate uint64 overflow.
func mulDiv(a, b, d uint64) uint64 {
	hi := a / d
	lo := a % d
	return hi*b + lo*b/d
}
