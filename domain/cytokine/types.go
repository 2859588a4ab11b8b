package cytokine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"cytodash/domain/core"

	"gopkg.in/guregu/null.v3"
)

// Cohort identifies which arm of the study a patient belongs to
type Cohort string

const (
	HealthyControl Cohort = "HealthyControl"
	ADMCI          Cohort = "ADMCI"
)

// Source labels as they appear in the Group column
const (
	LabelHealthyControl = "HC"
	LabelADMCI          = "AD/MCI"
)

// Cohorts lists the cohorts in display order
var Cohorts = []Cohort{HealthyControl, ADMCI}

// ParseCohort maps a Group cell onto a Cohort. Surrounding whitespace is ignored.
func ParseCohort(label string) (Cohort, bool) {
	switch strings.TrimSpace(label) {
	case LabelHealthyControl:
		return HealthyControl, true
	case LabelADMCI:
		return ADMCI, true
	}
	return "", false
}

// Label returns the source label for the cohort
func (c Cohort) Label() string {
	switch c {
	case HealthyControl:
		return LabelHealthyControl
	case ADMCI:
		return LabelADMCI
	}
	return string(c)
}

// Timepoint is a sampling time expressed as an hour offset from baseline
type Timepoint float64

// ParseTimepoint accepts plain numbers and the "Hr3" form used on chart axes.
func ParseTimepoint(s string) (Timepoint, error) {
	clean := strings.TrimSpace(s)
	if len(clean) > 2 && strings.EqualFold(clean[:2], "hr") {
		clean = strings.TrimSpace(clean[2:])
	}
	if clean == "" {
		return 0, fmt.Errorf("empty timepoint")
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timepoint %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid timepoint %q: not finite", s)
	}
	return Timepoint(f), nil
}

// Hours returns the timepoint as a plain float
func (t Timepoint) Hours() float64 { return float64(t) }

// Label renders the timepoint the way the chart axis shows it, e.g. "Hr3"
func (t Timepoint) Label() string {
	return "Hr" + strconv.FormatFloat(float64(t), 'f', -1, 64)
}

// Measurement is one analyte observation for one patient at one timepoint
type Measurement struct {
	PatientID string     `json:"patientId"`
	Cohort    Cohort     `json:"cohort"`
	Timepoint Timepoint  `json:"timepoint"`
	Analyte   string     `json:"analyte"`
	Value     null.Float `json:"value"`          // invalid when the cell was empty or not a number
	Raw       string     `json:"raw,omitempty"` // original text kept when the cell yielded no value
}

// IsAbsent reports whether the measurement carries no concentration
func (m Measurement) IsAbsent() bool {
	return !m.Value.Valid
}

// IngestStats counts what happened to the input while it was normalized
type IngestStats struct {
	Rows        int `json:"rows"`
	DroppedRows int `json:"droppedRows"`
	AbsentCells int `json:"absentCells"`
	TextCells   int `json:"textCells"`
}

// Dataset is the immutable result of one ingestion
type Dataset struct {
	ID           core.DatasetID `json:"id"`
	Source       string         `json:"source"`
	Fingerprint  core.Hash      `json:"fingerprint"`
	LoadedAt     time.Time      `json:"loadedAt"`
	Measurements []Measurement  `json:"-"`
	Timepoints   []Timepoint    `json:"timepoints"`
	Analytes     []string       `json:"analytes"`
	Stats        IngestStats    `json:"stats"`
}

// HasAnalyte reports whether the analyte column was present in the input
func (d *Dataset) HasAnalyte(analyte string) bool {
	for _, a := range d.Analytes {
		if a == analyte {
			return true
		}
	}
	return false
}

// SeriesPoint is one timepoint of an AggregatedSeries
type SeriesPoint struct {
	Timepoint Timepoint  `json:"timepoint"`
	Label     string     `json:"label"`
	HCMean    null.Float `json:"hcMean"`
	ADMCIMean null.Float `json:"admciMean"`
}

// Mean returns the cohort's mean at this point
func (p SeriesPoint) Mean(c Cohort) null.Float {
	if c == ADMCI {
		return p.ADMCIMean
	}
	return p.HCMean
}

// AggregatedSeries holds per-timepoint cohort means for one analyte,
// ordered by ascending timepoint.
type AggregatedSeries struct {
	Analyte     string        `json:"analyte"`
	DisplayName string        `json:"displayName"`
	Category    string        `json:"category"`
	Points      []SeriesPoint `json:"points"`
}

// GroupStats summarizes the non-absent values of one (timepoint, cohort) subset.
// Every statistic is null when N is zero; StdDev needs at least two values.
type GroupStats struct {
	N       int        `json:"n"`
	Missing int        `json:"missing"`
	Mean    null.Float `json:"mean"`
	Max     null.Float `json:"max"`
	Min     null.Float `json:"min"`
	Median  null.Float `json:"median"`
	StdDev  null.Float `json:"stdDev"`
}

// TimepointStats pairs both cohorts' summaries at one timepoint
type TimepointStats struct {
	Timepoint Timepoint  `json:"timepoint"`
	Label     string     `json:"label"`
	HC        GroupStats `json:"hc"`
	ADMCI     GroupStats `json:"admci"`
}

// For returns the stats of the given cohort
func (s TimepointStats) For(c Cohort) GroupStats {
	if c == ADMCI {
		return s.ADMCI
	}
	return s.HC
}
