// Package aggregation reduces Measurements to per-timepoint cohort summaries.
// Every function here is pure: no state, no mutation of its inputs.
package aggregation

import (
	"cytodash/domain/cytokine"
	"cytodash/domain/taxonomy"
)

// subset holds one (timepoint, cohort) partition
type subset struct {
	values  []float64
	missing int
}

type partition map[cytokine.Timepoint]map[cytokine.Cohort]*subset

// partitionFor groups the analyte's measurements by timepoint and cohort
func partitionFor(measurements []cytokine.Measurement, analyte string) partition {
	p := make(partition)
	for _, m := range measurements {
		if m.Analyte != analyte {
			continue
		}
		byCohort, ok := p[m.Timepoint]
		if !ok {
			byCohort = make(map[cytokine.Cohort]*subset, 2)
			p[m.Timepoint] = byCohort
		}
		s, ok := byCohort[m.Cohort]
		if !ok {
			s = &subset{}
			byCohort[m.Cohort] = s
		}
		if m.IsAbsent() {
			s.missing++
			continue
		}
		s.values = append(s.values, m.Value.Float64)
	}
	return p
}

func (p partition) get(tp cytokine.Timepoint, c cytokine.Cohort) subset {
	if s, ok := p[tp][c]; ok {
		return *s
	}
	return subset{}
}

// Aggregate builds the chart series for one analyte: for each timepoint, in
// the given order, the mean of the non-absent HC and AD/MCI values, or null
// when a cohort has none.
func Aggregate(measurements []cytokine.Measurement, analyte string, timepoints []cytokine.Timepoint) cytokine.AggregatedSeries {
	p := partitionFor(measurements, analyte)

	series := cytokine.AggregatedSeries{
		Analyte:     analyte,
		DisplayName: taxonomy.DisplayName(analyte),
		Points:      make([]cytokine.SeriesPoint, 0, len(timepoints)),
	}
	for _, tp := range timepoints {
		series.Points = append(series.Points, cytokine.SeriesPoint{
			Timepoint: tp,
			Label:     tp.Label(),
			HCMean:    Mean(p.get(tp, cytokine.HealthyControl).values),
			ADMCIMean: Mean(p.get(tp, cytokine.ADMCI).values),
		})
	}
	return series
}

// Summarize computes the summary-statistics table for one analyte over the
// same subsets Aggregate uses.
func Summarize(measurements []cytokine.Measurement, analyte string, timepoints []cytokine.Timepoint) []cytokine.TimepointStats {
	p := partitionFor(measurements, analyte)

	out := make([]cytokine.TimepointStats, 0, len(timepoints))
	for _, tp := range timepoints {
		hc := p.get(tp, cytokine.HealthyControl)
		ad := p.get(tp, cytokine.ADMCI)
		out = append(out, cytokine.TimepointStats{
			Timepoint: tp,
			Label:     tp.Label(),
			HC:        Describe(hc.values, hc.missing),
			ADMCI:     Describe(ad.values, ad.missing),
		})
	}
	return out
}
