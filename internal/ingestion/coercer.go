package ingestion

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/guregu/null.v3"
)

// CellKind records how a raw cell was typed
type CellKind int

const (
	CellAbsent CellKind = iota
	CellNumeric
	CellText
)

// Cell is one coerced analyte cell
type Cell struct {
	Kind  CellKind
	Value null.Float
	Raw   string
}

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	// ZeroAsMissing treats a literal zero concentration as "not detected".
	// Off by default: zero is a valid measurement.
	ZeroAsMissing bool `json:"zero_as_missing"`
}

// CellCoercer types raw cells deterministically: numeric when the text is a
// finite number, text otherwise, absent when empty.
type CellCoercer struct {
	config CoercionConfig
}

// NewCellCoercer creates a coercer with the given config
func NewCellCoercer(config CoercionConfig) *CellCoercer {
	return &CellCoercer{config: config}
}

var thousandsGrouped = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// Coerce types one cell
func (c *CellCoercer) Coerce(raw string) Cell {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return Cell{Kind: CellAbsent}
	}

	f, ok := parseNumeric(clean)
	if !ok {
		return Cell{Kind: CellText, Raw: clean}
	}
	if f == 0 && c.config.ZeroAsMissing {
		return Cell{Kind: CellAbsent, Raw: clean}
	}
	return Cell{Kind: CellNumeric, Value: null.FloatFrom(f)}
}

// parseNumeric accepts plain and scientific notation plus "1,234.5" grouping.
// NaN and infinities are not numbers here.
func parseNumeric(s string) (float64, bool) {
	if thousandsGrouped.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
