// Package qdixon implements iterative outlier trimming with Dixon's Q-test.
//
// A run sorts a private copy of the sample, computes the low and high gap
// ratios for the current size, compares them with the tabulated critical
// value and removes the qualifying extremes. Rounds repeat until no extreme
// qualifies. Everything in this package is pure: no logging, no I/O, no
// shared mutable state, so independent analyses may run concurrently.
package qdixon

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ogre-kun/outliers-calculator/internal/errors"
)

const (
	// MinSampleSize is the smallest sample Analyze accepts.
	MinSampleSize = 3
	// MaxSampleSize is the largest sample Analyze accepts, regardless of table coverage.
	MaxSampleSize = 30

	// DefaultTableName identifies the built-in table.
	DefaultTableName = "default"
)

// TableEntry is one size/critical-value row of a CriticalTable.
type TableEntry struct {
	Size  int             `json:"size"`
	Value decimal.Decimal `json:"value"`
}

// CriticalTable maps sample size to a Q-test critical value.
// It is immutable once built.
type CriticalTable struct {
	name   string
	values map[int]decimal.Decimal
}

var defaultTable = &CriticalTable{
	name: DefaultTableName,
	values: map[int]decimal.Decimal{
		3:  decimal.RequireFromString("0.970"),
		4:  decimal.RequireFromString("0.829"),
		5:  decimal.RequireFromString("0.710"),
		6:  decimal.RequireFromString("0.628"),
		7:  decimal.RequireFromString("0.569"),
		8:  decimal.RequireFromString("0.608"),
		9:  decimal.RequireFromString("0.564"),
		10: decimal.RequireFromString("0.530"),
		11: decimal.RequireFromString("0.502"),
		12: decimal.RequireFromString("0.479"),
		13: decimal.RequireFromString("0.611"),
	},
}

// DefaultTable returns the built-in table covering sizes 3-13.
func DefaultTable() *CriticalTable {
	return defaultTable
}

// NewCriticalTable validates values and returns a table owning a copy of them.
func NewCriticalTable(name string, values map[int]decimal.Decimal) (*CriticalTable, error) {
	if len(values) == 0 {
		return nil, errors.Newf(errors.InvalidTable, "critical value table %q is empty", name)
	}

	one := decimal.NewFromInt(1)
	copied := make(map[int]decimal.Decimal, len(values))
	for size, v := range values {
		if size < MinSampleSize || size > MaxSampleSize {
			return nil, errors.Newf(errors.InvalidTable,
				"critical value table %q has size %d outside [%d,%d]", name, size, MinSampleSize, MaxSampleSize).
				WithDetails(map[string]int{"size": size})
		}
		if !v.IsPositive() || v.GreaterThan(one) {
			return nil, errors.Newf(errors.InvalidTable,
				"critical value for size %d must be in (0,1], got %s", size, v.String()).
				WithDetails(map[string]int{"size": size})
		}
		copied[size] = v
	}

	return &CriticalTable{name: name, values: copied}, nil
}

// Name returns the table's identifier.
func (t *CriticalTable) Name() string {
	return t.name
}

// Len returns the number of entries.
func (t *CriticalTable) Len() int {
	return len(t.values)
}

// Lookup returns the critical value for size.
func (t *CriticalTable) Lookup(size int) (decimal.Decimal, bool) {
	v, ok := t.values[size]
	return v, ok
}

// Covers reports whether the table has an entry for size.
func (t *CriticalTable) Covers(size int) bool {
	_, ok := t.values[size]
	return ok
}

// Sizes returns the covered sizes in ascending order.
func (t *CriticalTable) Sizes() []int {
	sizes := make([]int, 0, len(t.values))
	for size := range t.values {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)
	return sizes
}

// Entries returns the rows ordered by size.
func (t *CriticalTable) Entries() []TableEntry {
	sizes := t.Sizes()
	entries := make([]TableEntry, len(sizes))
	for i, size := range sizes {
		entries[i] = TableEntry{Size: size, Value: t.values[size]}
	}
	return entries
}

// With returns a new table with the entry for size added or replaced.
// The receiver is left untouched.
func (t *CriticalTable) With(size int, value decimal.Decimal) (*CriticalTable, error) {
	values := make(map[int]decimal.Decimal, len(t.values)+1)
	for k, v := range t.values {
		values[k] = v
	}
	values[size] = value

	name := t.name
	if name == DefaultTableName {
		name = "custom"
	}
	return NewCriticalTable(name, values)
}
