// Package ingestion validates a decoded measurement table and explodes it
// into typed Measurement records.
package ingestion

import (
	"slices"
	"strings"

	"cytodash/domain/core"
	"cytodash/domain/cytokine"
	"cytodash/internal"
	"cytodash/ports"
)

// Identity column names; matched case-insensitively after trimming
const (
	ColumnPatient   = "PATIENT"
	ColumnGroup     = "Group"
	ColumnTimepoint = "Timepoint"
)

var identityColumns = []string{ColumnPatient, ColumnGroup, ColumnTimepoint}

// Result is the normalized content of one table
type Result struct {
	Measurements []cytokine.Measurement
	Timepoints   []cytokine.Timepoint
	Analytes     []string
	Stats        cytokine.IngestStats
}

// header is the validated column layout
type header struct {
	patient, group, timepoint int
	analytes                  []string
	analyteCols               []int
}

// Normalizer turns a Table into Measurements
type Normalizer struct {
	coercer *CellCoercer
	logger  *internal.Logger
}

// NewNormalizer creates a normalizer
func NewNormalizer(config CoercionConfig, logger *internal.Logger) *Normalizer {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Normalizer{coercer: NewCellCoercer(config), logger: logger}
}

// Normalize validates the header, then emits one Measurement per
// (row, analyte column). Header problems and unknown cohort labels are fatal;
// rows whose timepoint does not parse are dropped.
func (n *Normalizer) Normalize(table *ports.Table) (*Result, error) {
	if table == nil || len(table.Headers) == 0 {
		return nil, core.NewHeaderError("", "missing header row")
	}

	h, err := parseHeader(table.Headers)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Analytes:     h.analytes,
		Timepoints:   []cytokine.Timepoint{},
		Measurements: make([]cytokine.Measurement, 0, len(table.Rows)*len(h.analytes)),
	}
	seen := make(map[cytokine.Timepoint]bool)

	for i, row := range table.Rows {
		rowNum := i + 1
		cell := func(col int) string {
			if col < len(row) {
				return row[col]
			}
			return ""
		}

		tp, err := cytokine.ParseTimepoint(cell(h.timepoint))
		if err != nil {
			n.logger.Warn("[Ingest] dropping row %d: %v", rowNum, err)
			res.Stats.DroppedRows++
			continue
		}

		label := cell(h.group)
		cohort, ok := cytokine.ParseCohort(label)
		if !ok {
			return nil, core.NewRowError(rowNum, table.Headers[h.group], strings.TrimSpace(label),
				"cohort label must be "+cytokine.LabelHealthyControl+" or "+cytokine.LabelADMCI)
		}

		patient := strings.TrimSpace(cell(h.patient))
		for k, col := range h.analyteCols {
			c := n.coercer.Coerce(cell(col))
			switch c.Kind {
			case CellAbsent:
				res.Stats.AbsentCells++
			case CellText:
				res.Stats.TextCells++
				res.Stats.AbsentCells++
			}
			res.Measurements = append(res.Measurements, cytokine.Measurement{
				PatientID: patient,
				Cohort:    cohort,
				Timepoint: tp,
				Analyte:   h.analytes[k],
				Value:     c.Value,
				Raw:       c.Raw,
			})
		}

		if !seen[tp] {
			seen[tp] = true
			res.Timepoints = append(res.Timepoints, tp)
		}
		res.Stats.Rows++
	}

	// numeric, not lexical
	slices.Sort(res.Timepoints)

	return res, nil
}

// parseHeader locates the identity columns and collects analyte names in header order
func parseHeader(headers []string) (*header, error) {
	h := &header{patient: -1, group: -1, timepoint: -1}
	seenAnalyte := make(map[string]bool)

	for j, raw := range headers {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}

		if slot := identitySlot(h, name); slot != nil {
			if *slot >= 0 {
				return nil, core.NewHeaderError(name, "identity column appears more than once")
			}
			*slot = j
			continue
		}

		if seenAnalyte[name] {
			return nil, core.NewHeaderError(name, "duplicate analyte column")
		}
		seenAnalyte[name] = true
		h.analytes = append(h.analytes, name)
		h.analyteCols = append(h.analyteCols, j)
	}

	for _, required := range identityColumns {
		if *identitySlot(h, required) < 0 {
			return nil, core.NewHeaderError(required, "required column missing")
		}
	}

	return h, nil
}

func identitySlot(h *header, name string) *int {
	switch {
	case strings.EqualFold(name, ColumnPatient):
		return &h.patient
	case strings.EqualFold(name, ColumnGroup):
		return &h.group
	case strings.EqualFold(name, ColumnTimepoint):
		return &h.timepoint
	}
	return nil
}
