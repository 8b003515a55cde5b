package qdixon

import (
	"github.com/shopspring/decimal"

	"github.com/ogre-kun/outliers-calculator/internal/errors"
)

// Result is the outcome of one Analyze call. It is read-only.
type Result struct {
	sample   []decimal.Decimal
	table    *CriticalTable
	critical decimal.Decimal
	outliers []decimal.Decimal
	trimmed  []decimal.Decimal
	steps    []TrimStep
	reason   StopReason
}

// Sample returns the input values in their original order.
func (r *Result) Sample() []decimal.Decimal { return cloneDecimals(r.sample) }

// Table returns the critical value table the analysis used.
func (r *Result) Table() *CriticalTable { return r.table }

// CriticalValue returns the critical value for the initial sample size.
func (r *Result) CriticalValue() decimal.Decimal { return r.critical }

// Outliers returns every removed value in removal order.
func (r *Result) Outliers() []decimal.Decimal { return cloneDecimals(r.outliers) }

// Trimmed returns the final sample, sorted ascending.
func (r *Result) Trimmed() []decimal.Decimal { return cloneDecimals(r.trimmed) }

// Steps returns the trimming rounds in chronological order.
func (r *Result) Steps() []TrimStep {
	out := make([]TrimStep, len(r.steps))
	copy(out, r.steps)
	return out
}

// Rounds is the number of rounds that removed something.
func (r *Result) Rounds() int { return len(r.steps) }

// StopReason reports why trimming ended.
func (r *Result) StopReason() StopReason { return r.reason }

// Mean returns the arithmetic mean of the trimmed sample.
func (r *Result) Mean() (decimal.Decimal, error) {
	return Mean(r.trimmed)
}

// RoundedMean is Mean rounded half-to-even to places decimal places.
func (r *Result) RoundedMean(places int32) (decimal.Decimal, error) {
	m, err := r.Mean()
	if err != nil {
		return decimal.Zero, err
	}
	return m.RoundBank(places), nil
}

// Mean averages values; an empty slice is EMPTY_TRIMMED_SAMPLE.
func Mean(values []decimal.Decimal) (decimal.Decimal, error) {
	if len(values) == 0 {
		return decimal.Zero, errors.Newf(errors.EmptyTrimmedSample, "cannot average an empty sample")
	}
	sum := decimal.Sum(values[0], values[1:]...)
	return sum.DivRound(decimal.NewFromInt(int64(len(values))), statisticPlaces), nil
}
