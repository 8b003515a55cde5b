package qdixon

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/ogre-kun/outliers-calculator/internal/errors"
)

// StopReason explains why trimming ended.
type StopReason string

const (
	// StopConverged means neither extreme met the critical value.
	StopConverged StopReason = "converged"
	// StopUntestable means the sample is too short for any regime (fewer
	// than 5 values). The first trimming round can already stop this way for
	// samples of 3 or 4; those return their input unchanged instead of failing.
	StopUntestable StopReason = "untestable"
)

// Analyze runs the Q-test repeatedly on sample until no extreme qualifies.
// A nil table selects DefaultTable. The input slice is not modified.
func Analyze(sample []decimal.Decimal, table *CriticalTable) (*Result, error) {
	if table == nil {
		table = DefaultTable()
	}

	n := len(sample)
	if n < MinSampleSize || n > MaxSampleSize {
		return nil, errors.Newf(errors.InvalidSampleSize,
			"sample must have between %d and %d values, got %d", MinSampleSize, MaxSampleSize, n).
			WithDetails(map[string]int{"size": n})
	}
	if !table.Covers(n) {
		return nil, missingCritical(table, n, 0)
	}
	initial, _ := table.Lookup(n)

	current := cloneDecimals(sample)
	slices.SortFunc(current, func(a, b decimal.Decimal) int { return a.Cmp(b) })

	var (
		outliers []decimal.Decimal
		steps    []TrimStep
		reason   StopReason
	)

	// Each non-terminal round removes at least one value, so this runs at most n times.
	for {
		size := len(current)
		critical, ok := table.Lookup(size)
		if !ok {
			return nil, missingCritical(table, size, len(steps)+1)
		}

		if !Testable(size) {
			reason = StopUntestable
			break
		}
		regime, _ := RegimeFor(size - 1)

		low, high, err := Statistics(current)
		if err != nil {
			return nil, err
		}

		lowOut := low.GreaterThanOrEqual(critical)
		highOut := high.GreaterThanOrEqual(critical)

		var (
			kind    StepKind
			removed []decimal.Decimal
			next    []decimal.Decimal
		)
		last := size - 1
		switch {
		case lowOut && highOut:
			kind = StepHighLow
			removed = []decimal.Decimal{current[0], current[last]}
			next = current[1:last]
		case lowOut:
			kind = StepLow
			removed = []decimal.Decimal{current[0]}
			next = current[1:]
		case highOut:
			kind = StepHigh
			removed = []decimal.Decimal{current[last]}
			next = current[:last]
		}
		if removed == nil {
			reason = StopConverged
			break
		}

		next = cloneDecimals(next)
		steps = append(steps, newTrimStep(kind, regime.Name, low, high, critical, removed, next))
		outliers = append(outliers, removed...)
		current = next
	}

	return &Result{
		sample:   cloneDecimals(sample),
		table:    table,
		critical: initial,
		outliers: outliers,
		trimmed:  current,
		steps:    steps,
		reason:   reason,
	}, nil
}

func missingCritical(table *CriticalTable, size, round int) error {
	msg := "critical value table %q has no entry for sample size %d"
	if round > 0 {
		msg += " (needed in trimming round %d)"
		return errors.Newf(errors.MissingCriticalValue, msg, table.Name(), size, round).
			WithDetails(map[string]interface{}{"size": size, "round": round, "table": table.Name()})
	}
	return errors.Newf(errors.MissingCriticalValue, msg, table.Name(), size).
		WithDetails(map[string]interface{}{"size": size, "table": table.Name()})
}
