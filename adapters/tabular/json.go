package tabular

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"cytodash/domain/core"
	"cytodash/ports"

	"github.com/tidwall/gjson"
)

var utf8BOM = []byte("\xef\xbb\xbf")

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, utf8BOM), " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{')
}

// decodeJSON reads records from a JSON document. The records are either an
// array of objects, whose keys become the header in first-seen order, or an
// array of arrays whose first element is the header row.
func (d *Decoder) decodeJSON(data []byte) (*ports.Table, error) {
	start := time.Now()
	data = bytes.TrimPrefix(data, utf8BOM)

	if !gjson.ValidBytes(data) {
		return nil, core.NewHeaderError("", "input is not a valid JSON document")
	}

	result := gjson.ParseBytes(data)
	if d.opts.DataPath != "" {
		result = result.Get(d.opts.DataPath)
	}
	if !result.Exists() {
		return nil, core.NewHeaderError("", fmt.Sprintf("data path %q not found in document", d.opts.DataPath))
	}

	var records []gjson.Result
	switch {
	case result.IsArray():
		records = result.Array()
	case result.IsObject():
		records = []gjson.Result{result}
	default:
		return nil, core.NewHeaderError("", fmt.Sprintf("data path %q is not an array or object", d.opts.DataPath))
	}

	var rows [][]string
	var err error
	if len(records) > 0 && records[0].IsArray() {
		rows, err = arrayRows(records)
	} else {
		rows, err = objectRows(records)
	}
	if err != nil {
		return nil, err
	}

	d.logger.Debug("[Tabular] JSON read in %.2fms (%d records)",
		float64(time.Since(start).Nanoseconds())/1e6, len(records))

	return processRows(rows), nil
}

func arrayRows(records []gjson.Result) ([][]string, error) {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		if !rec.IsArray() {
			return nil, core.NewRowError(nextDataRow(rows), "", "", "record is not an array")
		}
		var row []string
		rec.ForEach(func(_, v gjson.Result) bool {
			row = append(row, cellText(v))
			return true
		})
		rows = append(rows, row)
	}
	return rows, nil
}

func objectRows(records []gjson.Result) ([][]string, error) {
	var headers []string
	index := make(map[string]int)

	// every object is a data row; empty ones are skipped like blank lines
	dataRows := 0
	for _, rec := range records {
		if !rec.IsObject() {
			return nil, core.NewRowError(dataRows+1, "", "", "record is not an object")
		}
		blank := true
		rec.ForEach(func(k, v gjson.Result) bool {
			if _, ok := index[k.String()]; !ok {
				index[k.String()] = len(headers)
				headers = append(headers, k.String())
			}
			if strings.TrimSpace(cellText(v)) != "" {
				blank = false
			}
			return true
		})
		if !blank {
			dataRows++
		}
	}

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, headers)
	for _, rec := range records {
		row := make([]string, len(headers))
		rec.ForEach(func(k, v gjson.Result) bool {
			row[index[k.String()]] = cellText(v)
			return true
		})
		rows = append(rows, row)
	}
	return rows, nil
}

// cellText keeps numbers in their source spelling so coercion sees what the file had
func cellText(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.Number:
		return v.Raw
	}
	return v.String()
}
