package output

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ogre-kun/outliers-calculator/internal/qdixon"
)

// DefaultMeanPlaces matches the three-place rounding of the trimmed mean.
const DefaultMeanPlaces = 3

// plotAveragePlaces is the rounding of the averages drawn on the plot.
const plotAveragePlaces = 2

// Report is the presentation model of one analysis.
type Report struct {
	Run           *RunInfo  `json:"run,omitempty"`
	Table         string    `json:"table"`
	SampleSize    int       `json:"sampleSize"`
	Sample        []string  `json:"sample"`
	Sorted        []string  `json:"sorted"`
	CriticalValue string    `json:"criticalValue"`
	Outliers      []string  `json:"outliers"`
	Trimmed       []string  `json:"trimmed"`
	TrimmedSize   int       `json:"trimmedSize"`
	Mean          string    `json:"mean"`
	MeanPlaces    int32     `json:"meanPlaces"`
	Rounds        int       `json:"rounds"`
	StopReason    string    `json:"stopReason"`
	Steps         []StepRow `json:"steps"`
	Plot          Plot      `json:"plot"`
}

// RunInfo identifies a recorded run. It is empty for ad-hoc analyses.
type RunInfo struct {
	ID         string    `json:"id"`
	RecordedAt time.Time `json:"recordedAt"`
}

// StepRow is one trimming round as displayed.
type StepRow struct {
	Round      int      `json:"round"`
	Kind       string   `json:"kind"`
	Regime     string   `json:"regime"`
	SizeBefore int      `json:"sizeBefore"`
	SizeAfter  int      `json:"sizeAfter"`
	Low        string   `json:"low"`
	High       string   `json:"high"`
	Critical   string   `json:"critical"`
	Removed    []string `json:"removed"`
	Result     []string `json:"result"`
}

// Plot holds scatter data: every input value sorted ascending and numbered
// from 1, flagged as outlier or retained, plus the two averages.
type Plot struct {
	Points          []PlotPoint `json:"points"`
	OriginalAverage string      `json:"originalAverage"`
	TrimmedAverage  string      `json:"trimmedAverage"`
}

// PlotPoint is one scatter point.
type PlotPoint struct {
	Position int    `json:"position"`
	Value    string `json:"value"`
	Outlier  bool   `json:"outlier"`
}

// BuildReport converts res into a Report with the mean rounded to meanPlaces.
func BuildReport(res *qdixon.Result, meanPlaces int32) (*Report, error) {
	mean, err := res.Mean()
	if err != nil {
		return nil, err
	}

	sample := res.Sample()
	sorted := make([]decimal.Decimal, len(sample))
	copy(sorted, sample)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	r := &Report{
		Table:         res.Table().Name(),
		SampleSize:    len(sample),
		Sample:        FormatValues(sample),
		Sorted:        FormatValues(sorted),
		CriticalValue: FormatCritical(res.CriticalValue()),
		Outliers:      FormatValues(res.Outliers()),
		Trimmed:       FormatValues(res.Trimmed()),
		TrimmedSize:   len(res.Trimmed()),
		Mean:          FormatRounded(mean, meanPlaces),
		MeanPlaces:    meanPlaces,
		Rounds:        res.Rounds(),
		StopReason:    string(res.StopReason()),
		Steps:         make([]StepRow, 0, res.Rounds()),
	}

	for i, s := range res.Steps() {
		r.Steps = append(r.Steps, StepRow{
			Round:      i + 1,
			Kind:       string(s.Kind()),
			Regime:     s.Regime(),
			SizeBefore: s.SizeBefore(),
			SizeAfter:  s.Size(),
			Low:        FormatStatistic(s.Low()),
			High:       FormatStatistic(s.High()),
			Critical:   FormatCritical(s.Critical()),
			Removed:    FormatValues(s.Removed()),
			Result:     FormatValues(s.Result()),
		})
	}

	plot, err := buildPlot(res.Outliers(), res.Trimmed())
	if err != nil {
		return nil, err
	}
	r.Plot = plot

	return r, nil
}

func buildPlot(outliers, trimmed []decimal.Decimal) (Plot, error) {
	type point struct {
		value   decimal.Decimal
		outlier bool
	}

	all := make([]point, 0, len(outliers)+len(trimmed))
	values := make([]decimal.Decimal, 0, len(outliers)+len(trimmed))
	for _, v := range outliers {
		all = append(all, point{value: v, outlier: true})
		values = append(values, v)
	}
	for _, v := range trimmed {
		all = append(all, point{value: v})
		values = append(values, v)
	}

	originalAvg, err := qdixon.Mean(values)
	if err != nil {
		return Plot{}, err
	}
	trimmedAvg, err := qdixon.Mean(trimmed)
	if err != nil {
		return Plot{}, err
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].value.LessThan(all[j].value) })

	points := make([]PlotPoint, len(all))
	for i, p := range all {
		points[i] = PlotPoint{Position: i + 1, Value: FormatValue(p.value), Outlier: p.outlier}
	}

	return Plot{
		Points:          points,
		OriginalAverage: FormatRounded(originalAvg, plotAveragePlaces),
		TrimmedAverage:  FormatRounded(trimmedAvg, plotAveragePlaces),
	}, nil
}
