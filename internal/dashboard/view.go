package dashboard

import (
	"time"

	"cytodash/domain/core"
	"cytodash/domain/cytokine"
	"cytodash/domain/taxonomy"
)

// ViewState is what the user has selected on the dashboard
type ViewState struct {
	Analyte  string `json:"analyte" form:"analyte"`
	Category string `json:"category" form:"category"`
	Search   string `json:"search" form:"q"`
	LogScale bool   `json:"logScale" form:"log"`
}

// View is a resolved ViewState: the analyte list after filtering and the
// data for the selected analyte, if any.
type View struct {
	Category    string                     `json:"category"`
	Search      string                     `json:"search"`
	LogScale    bool                       `json:"logScale"`
	Analytes    []string                   `json:"analytes"`
	Selected    string                     `json:"selected"`
	DisplayName string                     `json:"displayName,omitempty"`
	Group       string                     `json:"group,omitempty"`
	Series      *cytokine.AggregatedSeries `json:"series"`
	Stats       []cytokine.TimepointStats  `json:"stats"`
}

// View resolves a ViewState. An empty category means "All". The selected
// analyte is the requested one when it survives the filters, otherwise the
// preferred default when it does, otherwise the first remaining analyte.
func (s *Service) View(state ViewState) View {
	category := state.Category
	if category == "" {
		category = taxonomy.CategoryAll
	}

	v := View{
		Category: category,
		Search:   state.Search,
		LogScale: state.LogScale,
		Analytes: s.FilterAnalytes(category, state.Search),
		Stats:    []cytokine.TimepointStats{},
	}

	v.Selected = pick(v.Analytes, state.Analyte, s.DefaultAnalyte())
	if v.Selected == "" {
		return v
	}

	series, err := s.Series(v.Selected)
	if err != nil {
		return v
	}
	stats, err := s.Stats(v.Selected)
	if err != nil {
		return v
	}

	v.DisplayName = series.DisplayName
	v.Group = series.Category
	v.Series = &series
	v.Stats = stats
	return v
}

func pick(candidates []string, preferred ...string) string {
	for _, p := range preferred {
		if p == "" {
			continue
		}
		for _, c := range candidates {
			if c == p {
				return c
			}
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}

// Overview describes the loaded dataset for the footer and the CLI
type Overview struct {
	DatasetID     core.DatasetID       `json:"datasetId"`
	Source        string               `json:"source"`
	Fingerprint   string               `json:"fingerprint"`
	LoadedAt      time.Time            `json:"loadedAt"`
	Patients      int                  `json:"patients"`
	Measurements  int                  `json:"measurements"`
	Analytes      int                  `json:"analytes"`
	Timepoints    []cytokine.Timepoint `json:"timepoints"`
	Categories    int                  `json:"categories"`
	Uncategorized int                  `json:"uncategorized"`
	Stats         cytokine.IngestStats `json:"stats"`
}

// Overview summarizes the dataset
func (s *Service) Overview() Overview {
	patients := make(map[string]struct{})
	for _, m := range s.dataset.Measurements {
		patients[m.PatientID] = struct{}{}
	}

	uncategorized := 0
	for _, a := range s.dataset.Analytes {
		if s.taxonomy.CategoryOf(a) == taxonomy.Uncategorized {
			uncategorized++
		}
	}

	return Overview{
		DatasetID:     s.dataset.ID,
		Source:        s.dataset.Source,
		Fingerprint:   s.dataset.Fingerprint.Short(),
		LoadedAt:      s.dataset.LoadedAt,
		Patients:      len(patients),
		Measurements:  len(s.dataset.Measurements),
		Analytes:      len(s.dataset.Analytes),
		Timepoints:    s.Timepoints(),
		Categories:    len(s.taxonomy.Names()),
		Uncategorized: uncategorized,
		Stats:         s.dataset.Stats,
	}
}
