package qdixon

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ogre-kun/outliers-calculator/internal/errors"
)

// statisticPlaces is the number of decimal places kept when dividing gaps.
const statisticPlaces = 28

// TestKind selects which end of the sample a statistic tests.
type TestKind int

const (
	// LowTest tests the minimum.
	LowTest TestKind = iota
	// HighTest tests the maximum.
	HighTest
)

func (k TestKind) String() string {
	if k == LowTest {
		return "low"
	}
	return "high"
}

// Regime is one index-selection rule, keyed on the last valid index of the
// sorted sample. Each quadruple (a, b, c, d) yields (x[a]-x[b]) / (x[c]-x[d]).
type Regime struct {
	Name string
	Low  [4]int
	High [4]int
}

// RegimeFor returns the regime applying to a sorted sample whose last index is last.
func RegimeFor(last int) (Regime, bool) {
	switch {
	case last > 3 && last <= 7:
		return Regime{Name: "r10", Low: [4]int{1, 0, last, 0}, High: [4]int{last, last - 1, last, 0}}, true
	case last >= 8 && last <= 10:
		return Regime{Name: "r11", Low: [4]int{1, 0, last - 1, 0}, High: [4]int{last, last - 1, last, 1}}, true
	case last >= 11 && last <= 13:
		return Regime{Name: "r21", Low: [4]int{2, 0, last - 1, 0}, High: [4]int{last, last - 2, last, 1}}, true
	case last >= 14 && last <= 30:
		return Regime{Name: "r22", Low: [4]int{2, 0, last - 2, 0}, High: [4]int{last, last - 2, last, 2}}, true
	}
	return Regime{}, false
}

// Testable reports whether a sample of length size has a defined regime.
func Testable(size int) bool {
	_, ok := RegimeFor(size - 1)
	return ok
}

// Indexes returns the positions used by the given test. Asking for an index
// set outside every regime is a programming error and panics.
func Indexes(kind TestKind, last int) [4]int {
	r, ok := RegimeFor(last)
	if !ok {
		panic(fmt.Sprintf("qdixon: no %s-test regime for last index %d", kind, last))
	}
	if kind == LowTest {
		return r.Low
	}
	return r.High
}

// Statistics computes the low and high Q statistics of a sample sorted ascending.
// A zero denominator is reported as DEGENERATE_COMPARISON.
func Statistics(sorted []decimal.Decimal) (low, high decimal.Decimal, err error) {
	last := len(sorted) - 1

	low, err = statistic(LowTest, sorted, last)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	high, err = statistic(HighTest, sorted, last)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return low, high, nil
}

func statistic(kind TestKind, sorted []decimal.Decimal, last int) (decimal.Decimal, error) {
	idx := Indexes(kind, last)
	num := sorted[idx[0]].Sub(sorted[idx[1]])
	den := sorted[idx[2]].Sub(sorted[idx[3]])
	if den.IsZero() {
		return decimal.Zero, errors.Newf(errors.DegenerateComparison,
			"%s statistic denominator x[%d]-x[%d] is zero for sample size %d", kind, idx[2], idx[3], len(sorted)).
			WithDetails(map[string]interface{}{
				"test":    kind.String(),
				"size":    len(sorted),
				"indexes": idx,
			})
	}
	return num.DivRound(den, statisticPlaces), nil
}
