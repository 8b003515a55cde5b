package qdixon

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	qerrors "github.com/ogre-kun/outliers-calculator/internal/errors"
)

var (
	setMixed = []string{"1.23", "4.56", "2.34", "7.89", "3.45", "-74.2", "9.12", "5.67", "1.23", "8.76", "6.54", "600.22", "701.22"}
	setWide  = []string{"0.87", "1.23", "1.53", "1.75", "2.14", "2.23", "2.65", "3.01", "3.42", "3.68", "4.11", "4.59", "5.02", "5.47", "5.89", "6.25", "6.84", "7.26", "7.69", "8.12"}
	setHigh  = []string{"4.2", "2.6", "1.7", "6.8", "3.9", "9.1", "5.5", "7.3", "8.2", "2.1", "5.7", "52.0"}
)

func equalDecimals(a, b []decimal.Decimal) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func TestAnalyze_MixedOutliers(t *testing.T) {
	res, err := Analyze(decimals(t, setMixed...), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Rounds() != 2 {
		t.Fatalf("Rounds() = %d, want 2", res.Rounds())
	}
	wantOutliers := decimals(t, "701.22", "-74.2", "600.22")
	if !equalDecimals(res.Outliers(), wantOutliers) {
		t.Errorf("Outliers() = %v, want %v", res.Outliers(), wantOutliers)
	}

	steps := res.Steps()
	if steps[0].Kind() != StepHigh {
		t.Errorf("steps[0].Kind() = %q, want %q", steps[0].Kind(), StepHigh)
	}
	if steps[0].Regime() != "r21" {
		t.Errorf("steps[0].Regime() = %q, want r21", steps[0].Regime())
	}
	if !steps[0].Critical().Equal(decimal.RequireFromString("0.611")) {
		t.Errorf("steps[0].Critical() = %s, want 0.611", steps[0].Critical())
	}
	if steps[1].Kind() != StepHighLow {
		t.Errorf("steps[1].Kind() = %q, want %q", steps[1].Kind(), StepHighLow)
	}
	if !equalDecimals(steps[1].Removed(), decimals(t, "-74.2", "600.22")) {
		t.Errorf("steps[1].Removed() = %v", steps[1].Removed())
	}
	if steps[1].Size() != 10 || steps[1].SizeBefore() != 12 {
		t.Errorf("steps[1] sizes = %d after / %d before, want 10 / 12", steps[1].Size(), steps[1].SizeBefore())
	}

	wantTrimmed := decimals(t, "1.23", "1.23", "2.34", "3.45", "4.56", "5.67", "6.54", "7.89", "8.76", "9.12")
	if !equalDecimals(res.Trimmed(), wantTrimmed) {
		t.Errorf("Trimmed() = %v, want %v", res.Trimmed(), wantTrimmed)
	}

	mean, err := res.Mean()
	if err != nil {
		t.Fatalf("Mean() error: %v", err)
	}
	if !mean.IsPositive() {
		t.Errorf("Mean() = %s, want > 0", mean)
	}
	if !mean.Equal(decimal.RequireFromString("5.079")) {
		t.Errorf("Mean() = %s, want 5.079", mean)
	}
	if res.StopReason() != StopConverged {
		t.Errorf("StopReason() = %q, want %q", res.StopReason(), StopConverged)
	}
	if !res.CriticalValue().Equal(decimal.RequireFromString("0.611")) {
		t.Errorf("CriticalValue() = %s, want 0.611", res.CriticalValue())
	}
}

func TestAnalyze_SingleHighOutlier(t *testing.T) {
	res, err := Analyze(decimals(t, setHigh...), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outliers := res.Outliers()
	if len(outliers) == 0 || !outliers[0].Equal(decimal.RequireFromString("52.0")) {
		t.Fatalf("Outliers() = %v, want first 52.0", outliers)
	}
	if len(outliers) != 1 {
		t.Errorf("len(Outliers()) = %d, want 1", len(outliers))
	}
	if len(res.Trimmed()) != 11 {
		t.Errorf("len(Trimmed()) = %d, want 11", len(res.Trimmed()))
	}

	mean, err := res.RoundedMean(3)
	if err != nil {
		t.Fatalf("RoundedMean() error: %v", err)
	}
	if !mean.Equal(decimal.RequireFromString("5.191")) {
		t.Errorf("RoundedMean(3) = %s, want 5.191", mean)
	}
}

func TestAnalyze_UncoveredSize(t *testing.T) {
	_, err := Analyze(decimals(t, setWide...), nil)
	if err == nil {
		t.Fatal("expected error for size 20 with the default table")
	}
	if !errors.Is(err, qerrors.ErrMissingCriticalValue) {
		t.Errorf("error = %v, want MISSING_CRITICAL_VALUE", err)
	}
}

func TestAnalyze_InvalidSampleSize(t *testing.T) {
	for _, n := range []int{0, 1, 2, 31, 40} {
		sample := make([]decimal.Decimal, n)
		for i := range sample {
			sample[i] = decimal.NewFromInt(int64(i))
		}

		_, err := Analyze(sample, nil)
		if !errors.Is(err, qerrors.ErrInvalidSampleSize) {
			t.Errorf("Analyze(size %d) error = %v, want INVALID_SAMPLE_SIZE", n, err)
		}
	}
}

func TestAnalyze_InvalidSizeCheckedBeforeTable(t *testing.T) {
	sample := make([]decimal.Decimal, 31)
	for i := range sample {
		sample[i] = decimal.NewFromInt(int64(i))
	}
	_, err := Analyze(sample, DefaultTable())
	if errors.Is(err, qerrors.ErrMissingCriticalValue) {
		t.Errorf("size 31 should report INVALID_SAMPLE_SIZE, got %v", err)
	}
}

func TestAnalyze_MissingValueMidRecursion(t *testing.T) {
	table, err := NewCriticalTable("only-six", map[int]decimal.Decimal{6: decimal.RequireFromString("0.628")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = Analyze(decimals(t, "1", "2", "3", "4", "5", "100"), table)
	if err == nil {
		t.Fatal("expected error when trimming reaches size 5")
	}
	if !errors.Is(err, qerrors.ErrMissingCriticalValue) {
		t.Errorf("error = %v, want MISSING_CRITICAL_VALUE", err)
	}

	var ae *qerrors.AnalysisError
	if !errors.As(err, &ae) {
		t.Fatal("error should be an AnalysisError")
	}
	details, ok := ae.Details.(map[string]interface{})
	if !ok {
		t.Fatalf("Details = %T, want map", ae.Details)
	}
	if details["size"] != 5 {
		t.Errorf("details[size] = %v, want 5", details["size"])
	}
	if details["round"] != 2 {
		t.Errorf("details[round] = %v, want 2", details["round"])
	}
}

func TestAnalyze_Untestable(t *testing.T) {
	tests := []struct {
		name   string
		sample []string
	}{
		{"three values", []string{"1", "2", "1000"}},
		{"four values", []string{"1", "2", "3", "1000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Analyze(decimals(t, tt.sample...), nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(res.Outliers()) != 0 {
				t.Errorf("Outliers() = %v, want none", res.Outliers())
			}
			if res.StopReason() != StopUntestable {
				t.Errorf("StopReason() = %q, want %q", res.StopReason(), StopUntestable)
			}
			if len(res.Trimmed()) != len(tt.sample) {
				t.Errorf("len(Trimmed()) = %d, want %d", len(res.Trimmed()), len(tt.sample))
			}
		})
	}
}

func TestAnalyze_FiveValues(t *testing.T) {
	// r10 at n=5: low = 1001/2000, high = 997/2000, both below 0.710.
	res, err := Analyze(decimals(t, "-1000", "1", "2", "3", "1000"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rounds() != 0 {
		t.Errorf("Rounds() = %d, want 0", res.Rounds())
	}

	// One high removal leaves four values, which no regime can test.
	res, err = Analyze(decimals(t, "-1000", "1", "1", "1", "1000000"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rounds() != 1 {
		t.Fatalf("Rounds() = %d, want 1", res.Rounds())
	}
	if res.Steps()[0].Kind() != StepHigh {
		t.Errorf("steps[0].Kind() = %q, want %q", res.Steps()[0].Kind(), StepHigh)
	}
	if res.StopReason() != StopUntestable {
		t.Errorf("StopReason() = %q, want %q", res.StopReason(), StopUntestable)
	}
}

func TestAnalyze_DegenerateSample(t *testing.T) {
	_, err := Analyze(decimals(t, "5", "5", "5", "5", "5", "5"), nil)
	if !errors.Is(err, qerrors.ErrDegenerateComparison) {
		t.Errorf("error = %v, want DEGENERATE_COMPARISON", err)
	}
}

func TestAnalyze_DuplicateOutliersRemovedByPosition(t *testing.T) {
	// n=12 (r21) removes one 100, n=11 (r11) removes the other.
	res, err := Analyze(decimals(t, "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "100", "100"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !equalDecimals(res.Outliers(), decimals(t, "100", "100")) {
		t.Errorf("Outliers() = %v, want [100 100]", res.Outliers())
	}
	if res.Rounds() != 2 {
		t.Errorf("Rounds() = %d, want 2", res.Rounds())
	}
	for i, s := range res.Steps() {
		if s.Kind() != StepHigh {
			t.Errorf("steps[%d].Kind() = %q, want %q", i, s.Kind(), StepHigh)
		}
	}
	if len(res.Trimmed()) != 10 {
		t.Errorf("len(Trimmed()) = %d, want 10", len(res.Trimmed()))
	}
}

func TestAnalyze_DoesNotModifyInput(t *testing.T) {
	sample := decimals(t, setMixed...)
	before := make([]decimal.Decimal, len(sample))
	copy(before, sample)

	res, err := Analyze(sample, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalDecimals(sample, before) {
		t.Error("Analyze modified its input")
	}
	if !equalDecimals(res.Sample(), before) {
		t.Error("Sample() should return the input in original order")
	}
}

func TestResult_AccessorsReturnCopies(t *testing.T) {
	res, err := Analyze(decimals(t, setMixed...), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := res.Outliers()
	out[0] = decimal.Zero
	trimmed := res.Trimmed()
	trimmed[0] = decimal.NewFromInt(-1)
	removed := res.Steps()[0].Removed()
	removed[0] = decimal.Zero

	if res.Outliers()[0].IsZero() {
		t.Error("Outliers() exposed internal state")
	}
	if res.Trimmed()[0].IsNegative() {
		t.Error("Trimmed() exposed internal state")
	}
	if res.Steps()[0].Removed()[0].IsZero() {
		t.Error("TrimStep.Removed() exposed internal state")
	}
}

func TestMean_Empty(t *testing.T) {
	_, err := Mean(nil)
	if !errors.Is(err, qerrors.ErrEmptyTrimmedSample) {
		t.Errorf("Mean(nil) error = %v, want EMPTY_TRIMMED_SAMPLE", err)
	}
}

// randomSample draws n values with two decimal places. Values come from a
// wide range so repeated extremes are rare; callers skip degenerate draws.
func randomSample(rng *rand.Rand, n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		v := rng.Int63n(200000) - 100000
		if rng.Intn(6) == 0 {
			v *= 50
		}
		out[i] = decimal.New(v, -2)
	}
	return out
}

func TestAnalyze_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 500; iter++ {
		n := MinSampleSize + rng.Intn(11) // 3..13
		sample := randomSample(rng, n)

		res, err := Analyze(sample, nil)
		if errors.Is(err, qerrors.ErrDegenerateComparison) {
			continue
		}
		if err != nil {
			t.Fatalf("Analyze(%v) unexpected error: %v", sample, err)
		}

		// Bounded output
		if len(res.Trimmed()) > n {
			t.Fatalf("len(Trimmed()) = %d > %d", len(res.Trimmed()), n)
		}
		if len(res.Trimmed())+len(res.Outliers()) != n {
			t.Fatalf("trimmed + outliers = %d, want %d", len(res.Trimmed())+len(res.Outliers()), n)
		}

		// Monotonic step sizes
		prev := n
		for i, s := range res.Steps() {
			if s.SizeBefore() != prev {
				t.Fatalf("steps[%d].SizeBefore() = %d, want %d", i, s.SizeBefore(), prev)
			}
			if s.Size() >= prev {
				t.Fatalf("steps[%d].Size() = %d, not below %d", i, s.Size(), prev)
			}
			prev = s.Size()
		}

		// Idempotence: a trimmed sample is a fixed point
		again, err := Analyze(res.Trimmed(), nil)
		if err != nil {
			t.Fatalf("re-analysing trimmed sample: %v", err)
		}
		if len(again.Outliers()) != 0 {
			t.Fatalf("re-analysis removed %v from %v", again.Outliers(), res.Trimmed())
		}

		// Determinism under input order
		shuffled := make([]decimal.Decimal, n)
		copy(shuffled, sample)
		rng.Shuffle(n, func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		other, err := Analyze(shuffled, nil)
		if err != nil {
			t.Fatalf("Analyze(shuffled) error: %v", err)
		}
		if !equalDecimals(res.Outliers(), other.Outliers()) {
			t.Fatalf("Outliers differ by input order: %v vs %v", res.Outliers(), other.Outliers())
		}
		if !equalDecimals(res.Trimmed(), other.Trimmed()) {
			t.Fatalf("Trimmed differs by input order")
		}
		if res.Rounds() != other.Rounds() {
			t.Fatalf("Rounds differ by input order: %d vs %d", res.Rounds(), other.Rounds())
		}
		for i, s := range res.Steps() {
			o := other.Steps()[i]
			if s.Kind() != o.Kind() || !s.Low().Equal(o.Low()) || !s.High().Equal(o.High()) {
				t.Fatalf("steps[%d] differ by input order", i)
			}
		}
	}
}

func TestAnalyze_Concurrent(t *testing.T) {
	sample := decimals(t, setMixed...)
	want, err := Analyze(sample, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Analyze(sample, nil)
			if err != nil {
				errs <- err.Error()
				return
			}
			if !equalDecimals(got.Outliers(), want.Outliers()) {
				errs <- "outliers differ"
			}
		}()
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
}
