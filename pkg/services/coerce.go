package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/adlens-io/adlens-engine/pkg/tabular"
)

// rowValueError marks a per-row data problem (bad number, bad date). The
// importer skips such rows; any other error aborts the import.
type rowValueError struct {
	col string
	val string
	msg string
}

func (e *rowValueError) Error() string {
	return fmt.Sprintf("column %s: %s %q", e.col, e.msg, e.val)
}

// dateLayouts are the accepted spreadsheet date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
}

// parseDateField reads a date cell. Empty cells yield nil; a non-empty cell
// that matches no known layout is a row error.
func parseDateField(row tabular.Row, col string) (*time.Time, error) {
	raw, ok := row.Get(col)
	if !ok {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, &rowValueError{col: col, val: raw, msg: "unparseable date"}
}

// parseIntField reads an integer cell. Empty cells yield nil. Thousands
// separators are tolerated; spreadsheet exports sometimes emit "1,234" or a
// float rendering like "1234.0".
func parseIntField(row tabular.Row, col string) (*int64, error) {
	raw, ok := row.Get(col)
	if !ok {
		return nil, nil
	}
	cleaned := strings.ReplaceAll(raw, ",", "")
	if v, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		return &v, nil
	}
	if f, err := strconv.ParseFloat(cleaned, 64); err == nil && isFinite(f) {
		v := int64(f)
		return &v, nil
	}
	return nil, &rowValueError{col: col, val: raw, msg: "unparseable integer"}
}

// parseFloatField reads a numeric cell. Empty cells yield nil. Thousands
// separators and a trailing percent sign are tolerated.
func parseFloatField(row tabular.Row, col string) (*float64, error) {
	raw, ok := row.Get(col)
	if !ok {
		return nil, nil
	}
	cleaned := strings.ReplaceAll(raw, ",", "")
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.TrimSpace(cleaned)
	if v, err := strconv.ParseFloat(cleaned, 64); err == nil && isFinite(v) {
		return &v, nil
	}
	return nil, &rowValueError{col: col, val: raw, msg: "unparseable number"}
}

// isFinite rejects the NaN and Inf spellings strconv accepts; a non-finite
// measure would poison every sum and mean downstream.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
