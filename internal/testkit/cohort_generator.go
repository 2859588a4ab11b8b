package testkit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"strconv"

	"github.com/xuri/excelize/v2"
	"gopkg.in/guregu/null.v3"
)

// CohortConfig configures the synthetic cohort generator
type CohortConfig struct {
	HCPatients    int       `json:"hc_patients"`
	ADMCIPatients int       `json:"admci_patients"`
	Timepoints    []float64 `json:"timepoints"`
	Analytes      []string  `json:"analytes"`
	MissingRate   float64   `json:"missing_rate"`
	Seed          int64     `json:"seed"`
}

// DefaultCohortConfig mirrors the shape of the serum study: seven patients per
// cohort sampled at hours 0, 1, 3 and 5.
func DefaultCohortConfig() CohortConfig {
	return CohortConfig{
		HCPatients:    7,
		ADMCIPatients: 7,
		Timepoints:    []float64{0, 1, 3, 5},
		Analytes:      []string{"IL-6 (57)", "TNFa (75)", "IL-10 (27)", "EGF (12)", "MCP-1 (67)", "sCD40L (38)"},
		MissingRate:   0.1,
		Seed:          42,
	}
}

// Row is one generated (patient, timepoint) line
type Row struct {
	Patient   string
	Group     string
	Timepoint float64
	Values    []null.Float
}

// CohortGenerator produces a reproducible measurement table
type CohortGenerator struct {
	config CohortConfig
	rows   []Row
}

// NewCohortGenerator generates the rows up front so every accessor sees the same table
func NewCohortGenerator(config CohortConfig) *CohortGenerator {
	g := &CohortGenerator{config: config}
	rng := rand.New(rand.NewSource(config.Seed))

	baselines := make([]float64, len(config.Analytes))
	for i := range baselines {
		baselines[i] = 5 + rng.Float64()*95
	}

	emit := func(prefix, group string, count int, drift float64) {
		for p := 1; p <= count; p++ {
			patient := fmt.Sprintf("%s%02d", prefix, p)
			for _, tp := range config.Timepoints {
				row := Row{Patient: patient, Group: group, Timepoint: tp, Values: make([]null.Float, len(config.Analytes))}
				for a, base := range baselines {
					if rng.Float64() < config.MissingRate {
						continue
					}
					v := base * (1 + drift*tp) * math.Exp(rng.NormFloat64()*0.25)
					row.Values[a] = null.FloatFrom(math.Round(v*100) / 100)
				}
				g.rows = append(g.rows, row)
			}
		}
	}
	emit("HC", "HC", config.HCPatients, 0.02)
	emit("AD", "AD/MCI", config.ADMCIPatients, 0.12)

	return g
}

// Config returns the generator configuration
func (g *CohortGenerator) Config() CohortConfig {
	return g.config
}

// Rows returns the generated rows in file order
func (g *CohortGenerator) Rows() []Row {
	return g.rows
}

// Records renders header plus rows as string cells; absent values are empty
func (g *CohortGenerator) Records() [][]string {
	header := append([]string{"PATIENT", "Group", "Timepoint"}, g.config.Analytes...)
	records := [][]string{header}
	for _, row := range g.rows {
		rec := []string{row.Patient, row.Group, strconv.FormatFloat(row.Timepoint, 'f', -1, 64)}
		for _, v := range row.Values {
			if v.Valid {
				rec = append(rec, strconv.FormatFloat(v.Float64, 'f', -1, 64))
			} else {
				rec = append(rec, "")
			}
		}
		records = append(records, rec)
	}
	return records
}

// CSV renders the table as comma-separated text
func (g *CohortGenerator) CSV() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.WriteAll(g.Records())
	return buf.Bytes()
}

// XLSX renders the table as a single-sheet workbook
func (g *CohortGenerator) XLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, rec := range g.Records() {
		cells := make([]interface{}, len(rec))
		for j, c := range rec {
			cells[j] = c
		}
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow("Sheet1", axis, &cells); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExpectedMean computes the cohort mean the slow way, for cross-checking aggregation
func (g *CohortGenerator) ExpectedMean(analyte string, timepoint float64, group string) null.Float {
	col := -1
	for i, a := range g.config.Analytes {
		if a == analyte {
			col = i
		}
	}
	if col < 0 {
		return null.Float{}
	}

	sum, n := 0.0, 0
	for _, row := range g.rows {
		if row.Group != group || row.Timepoint != timepoint || !row.Values[col].Valid {
			continue
		}
		sum += row.Values[col].Float64
		n++
	}
	if n == 0 {
		return null.Float{}
	}
	return null.FloatFrom(sum / float64(n))
}
