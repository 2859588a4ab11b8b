// Package dashboard serves read-only views over one ingested Dataset.
package dashboard

import (
	"slices"
	"sync"

	"cytodash/domain/core"
	"cytodash/domain/cytokine"
	"cytodash/domain/taxonomy"
	"cytodash/internal"
	"cytodash/internal/aggregation"

	"golang.org/x/sync/singleflight"
)

// preferredAnalytes are selected on first view, in order, when present
var preferredAnalytes = []string{"IL-6 (57)", "TNFa (75)", "IL-10 (27)"}

// Service answers the dashboard's queries. The Dataset and Taxonomy it holds
// are never mutated, so a Service is safe for concurrent use.
type Service struct {
	dataset  *cytokine.Dataset
	taxonomy *taxonomy.Taxonomy
	logger   *internal.Logger

	mu     sync.RWMutex
	series map[string]cytokine.AggregatedSeries
	stats  map[string][]cytokine.TimepointStats
	group  singleflight.Group
}

// New creates a Service over an ingested dataset
func New(dataset *cytokine.Dataset, tax *taxonomy.Taxonomy, logger *internal.Logger) *Service {
	if tax == nil {
		tax = taxonomy.Default()
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Service{
		dataset:  dataset,
		taxonomy: tax,
		logger:   logger,
		series:   make(map[string]cytokine.AggregatedSeries),
		stats:    make(map[string][]cytokine.TimepointStats),
	}
}

// Dataset returns the underlying dataset
func (s *Service) Dataset() *cytokine.Dataset {
	return s.dataset
}

// Timepoints returns the ingested timepoints in ascending order
func (s *Service) Timepoints() []cytokine.Timepoint {
	return slices.Clone(s.dataset.Timepoints)
}

// Analytes returns the analyte keys in header order
func (s *Service) Analytes() []string {
	return slices.Clone(s.dataset.Analytes)
}

// Taxonomy returns the functional grouping in use
func (s *Service) Taxonomy() *taxonomy.Taxonomy {
	return s.taxonomy
}

// Categories lists the selectable categories: "All" followed by the groups
func (s *Service) Categories() []string {
	return append([]string{taxonomy.CategoryAll}, s.taxonomy.Names()...)
}

// CategoryOf returns the group an analyte belongs to
func (s *Service) CategoryOf(analyte string) string {
	return s.taxonomy.CategoryOf(analyte)
}

// FilterAnalytes applies the category and search filters to the ingested analytes
func (s *Service) FilterAnalytes(category, search string) []string {
	return aggregation.FilterAnalytes(s.dataset.Analytes, s.taxonomy, category, search)
}

// Series returns the per-timepoint cohort means for an analyte.
// Results are computed once per analyte; concurrent first callers share the work.
func (s *Service) Series(analyte string) (cytokine.AggregatedSeries, error) {
	if !s.dataset.HasAnalyte(analyte) {
		return cytokine.AggregatedSeries{}, core.NewAnalyteNotFoundError(analyte)
	}

	s.mu.RLock()
	cached, ok := s.series[analyte]
	s.mu.RUnlock()
	if ok {
		return cloneSeries(cached), nil
	}

	v, _, _ := s.group.Do("series:"+analyte, func() (interface{}, error) {
		series := aggregation.Aggregate(s.dataset.Measurements, analyte, s.dataset.Timepoints)
		series.Category = s.taxonomy.CategoryOf(analyte)

		s.mu.Lock()
		s.series[analyte] = series
		s.mu.Unlock()

		s.logger.Debug("[Dashboard] aggregated %s over %d timepoints", analyte, len(series.Points))
		return series, nil
	})
	return cloneSeries(v.(cytokine.AggregatedSeries)), nil
}

// Stats returns the summary statistics table for an analyte
func (s *Service) Stats(analyte string) ([]cytokine.TimepointStats, error) {
	if !s.dataset.HasAnalyte(analyte) {
		return nil, core.NewAnalyteNotFoundError(analyte)
	}

	s.mu.RLock()
	cached, ok := s.stats[analyte]
	s.mu.RUnlock()
	if ok {
		return slices.Clone(cached), nil
	}

	v, _, _ := s.group.Do("stats:"+analyte, func() (interface{}, error) {
		stats := aggregation.Summarize(s.dataset.Measurements, analyte, s.dataset.Timepoints)

		s.mu.Lock()
		s.stats[analyte] = stats
		s.mu.Unlock()
		return stats, nil
	})
	return slices.Clone(v.([]cytokine.TimepointStats)), nil
}

// cloneSeries copies the points so callers cannot write into the memo
func cloneSeries(series cytokine.AggregatedSeries) cytokine.AggregatedSeries {
	series.Points = slices.Clone(series.Points)
	return series
}

// DefaultAnalyte picks the analyte shown before the user chooses one
func (s *Service) DefaultAnalyte() string {
	for _, a := range preferredAnalytes {
		if s.dataset.HasAnalyte(a) {
			return a
		}
	}
	if len(s.dataset.Analytes) > 0 {
		return s.dataset.Analytes[0]
	}
	return ""
}
