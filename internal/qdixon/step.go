package qdixon

import "github.com/shopspring/decimal"

// StepKind names the end(s) trimmed in a round.
type StepKind string

const (
	StepLow     StepKind = "low"
	StepHigh    StepKind = "high"
	StepHighLow StepKind = "high-low"
)

// TrimStep records one trimming round. Values are copied on construction
// and accessors return copies.
type TrimStep struct {
	kind     StepKind
	regime   string
	low      decimal.Decimal
	high     decimal.Decimal
	critical decimal.Decimal
	removed  []decimal.Decimal
	result   []decimal.Decimal
}

func newTrimStep(kind StepKind, regime string, low, high, critical decimal.Decimal, removed, result []decimal.Decimal) TrimStep {
	return TrimStep{
		kind:     kind,
		regime:   regime,
		low:      low,
		high:     high,
		critical: critical,
		removed:  cloneDecimals(removed),
		result:   cloneDecimals(result),
	}
}

// Kind returns which end(s) were trimmed.
func (s TrimStep) Kind() StepKind { return s.kind }

// Regime returns the index-selection rule used (r10, r11, r21 or r22).
func (s TrimStep) Regime() string { return s.regime }

// Low returns the low-end statistic computed this round.
func (s TrimStep) Low() decimal.Decimal { return s.low }

// High returns the high-end statistic computed this round.
func (s TrimStep) High() decimal.Decimal { return s.high }

// Critical returns the critical value compared against.
func (s TrimStep) Critical() decimal.Decimal { return s.critical }

// Removed returns the values removed this round, minimum first.
func (s TrimStep) Removed() []decimal.Decimal { return cloneDecimals(s.removed) }

// Result returns the sorted sample left after this round.
func (s TrimStep) Result() []decimal.Decimal { return cloneDecimals(s.result) }

// Size is the length of the sample after this round.
func (s TrimStep) Size() int { return len(s.result) }

// SizeBefore is the length of the sample this round tested.
func (s TrimStep) SizeBefore() int { return len(s.result) + len(s.removed) }

func cloneDecimals(in []decimal.Decimal) []decimal.Decimal {
	if in == nil {
		return nil
	}
	out := make([]decimal.Decimal, len(in))
	copy(out, in)
	return out
}
