package aggregation

import (
	"math"

	"cytodash/domain/cytokine"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/guregu/null.v3"
)

// Mean is the chart reducer: arithmetic mean, null for an empty subset
func Mean(values []float64) null.Float {
	return reduce(values, stats.Mean)
}

// Max is the secondary reducer used by the summary display
func Max(values []float64) null.Float {
	return reduce(values, stats.Max)
}

func reduce(values []float64, fn func(stats.Float64Data) (float64, error)) null.Float {
	if len(values) == 0 {
		return null.Float{}
	}
	v, err := fn(values)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

// Describe summarizes one (timepoint, cohort) subset. values holds only
// non-absent concentrations; missing counts the absent ones.
func Describe(values []float64, missing int) cytokine.GroupStats {
	gs := cytokine.GroupStats{
		N:       len(values),
		Missing: missing,
		Mean:    Mean(values),
		Max:     Max(values),
		Min:     reduce(values, stats.Min),
		Median:  reduce(values, stats.Median),
	}
	if len(values) >= 2 {
		if sd := stat.StdDev(values, nil); !math.IsNaN(sd) {
			gs.StdDev = null.FloatFrom(sd)
		}
	}
	return gs
}
