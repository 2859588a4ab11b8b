// Package tabular decodes raw table bytes (CSV-like text, XLSX workbooks or
// JSON records) into a header plus rows of raw cells.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cytodash/domain/core"
	"cytodash/internal"
	"cytodash/ports"

	"github.com/csimplestring/go-csv/detector"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// zip local file header; every .xlsx starts with it
var xlsxMagic = []byte("PK\x03\x04")

// allowed delimiters; anything else the detector proposes falls back to comma
var allowedDelimiters = map[rune]bool{',': true, '\t': true, ';': true}

// Options tunes decoding
type Options struct {
	// Sheet selects the worksheet of an XLSX workbook; empty means the first sheet
	Sheet string
	// Delimiter forces a CSV delimiter; zero means detect
	Delimiter rune
	// DataPath locates the records inside a JSON document, e.g. "data.rows";
	// empty means the document root
	DataPath string
}

// Decoder handles delimited text, XLSX workbooks and JSON records
type Decoder struct {
	opts   Options
	logger *internal.Logger
}

var _ ports.TableDecoder = (*Decoder)(nil)

// NewDecoder creates a decoder
func NewDecoder(opts Options, logger *internal.Logger) *Decoder {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Decoder{opts: opts, logger: logger}
}

// Decode inspects the payload and dispatches to the XLSX, JSON or CSV reader
func (d *Decoder) Decode(data []byte) (*ports.Table, error) {
	switch {
	case bytes.HasPrefix(data, xlsxMagic):
		return d.decodeXLSX(data)
	case looksLikeJSON(data):
		return d.decodeJSON(data)
	}
	return d.decodeCSV(data)
}

// decodeCSV reads delimited UTF-8 text
func (d *Decoder) decodeCSV(data []byte) (*ports.Table, error) {
	start := time.Now()

	text, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, core.NewHeaderError("", fmt.Sprintf("input is not valid UTF-8 text: %v", err))
	}

	delim := d.opts.Delimiter
	if delim == 0 {
		delim = DetectDelimiter(text)
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, core.NewRowError(nextDataRow(rows), "", "", pe.Err.Error())
			}
			return nil, core.NewHeaderError("", err.Error())
		}
		rows = append(rows, record)
	}

	d.logger.Debug("[Tabular] CSV read in %.2fms (%d records, delimiter %q)",
		float64(time.Since(start).Nanoseconds())/1e6, len(rows), delim)

	return processRows(rows), nil
}

// decodeXLSX reads the configured sheet of a workbook
func (d *Decoder) decodeXLSX(data []byte) (*ports.Table, error) {
	start := time.Now()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, core.NewHeaderError("", fmt.Sprintf("failed to open workbook: %v", err))
	}
	defer f.Close()

	sheet := d.opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, core.NewHeaderError("", "workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, core.NewHeaderError("", fmt.Sprintf("failed to read sheet %q: %v", sheet, err))
	}

	d.logger.Debug("[Tabular] sheet %q read in %.2fms (%d rows)",
		sheet, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	return processRows(rows), nil
}

// processRows trims headers, skips blank lines and pads short rows to the header width
func processRows(rows [][]string) *ports.Table {
	table := &ports.Table{}

	i := 0
	for ; i < len(rows); i++ {
		if !isBlank(rows[i]) {
			break
		}
	}
	if i == len(rows) {
		return table
	}

	headerRow := rows[i]
	table.Headers = make([]string, len(headerRow))
	for j, header := range headerRow {
		table.Headers[j] = strings.TrimSpace(header)
	}

	width := len(table.Headers)
	for _, row := range rows[i+1:] {
		if isBlank(row) {
			continue
		}
		cells := make([]string, width)
		copy(cells, row)
		table.Rows = append(table.Rows, cells)
	}

	return table
}

// nextDataRow is the 1-based data row index processRows will give the next
// record, or 0 while no header has been read.
func nextDataRow(rows [][]string) int {
	n := 0
	for _, row := range rows {
		if !isBlank(row) {
			n++
		}
	}
	return n
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// DetectDelimiter returns the most likely delimiter of CSV-like text,
// defaulting to comma. When the detector proposes several candidates the one
// occurring most often in the header line wins.
func DetectDelimiter(text []byte) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(bytes.NewReader(text), '"')

	header := text
	if nl := bytes.IndexByte(text, '\n'); nl >= 0 {
		header = text[:nl]
	}

	best, bestCount := ',', 0
	for _, candidate := range delimiters {
		if candidate == "" {
			continue
		}
		r := []rune(candidate)[0]
		if !allowedDelimiters[r] {
			continue
		}
		if n := bytes.Count(header, []byte(string(r))); n > bestCount {
			best, bestCount = r, n
		}
	}
	return best
}
