// Package tabular parses uploaded spreadsheet files (CSV, XLS, XLSX) into a
// stream of rows keyed by slugged header names. Readers surface one row at a
// time so memory stays bounded regardless of file size.
package tabular

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/adlens-io/adlens-engine/pkg/apperrors"
)

// Format identifies a supported spreadsheet file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLS  Format = "xls"
	FormatXLSX Format = "xlsx"
)

// DetectFormat maps a filename extension to a Format.
// Returns apperrors.ErrUnsupportedFormat for anything else.
func DetectFormat(filename string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "csv":
		return FormatCSV, nil
	case "xls":
		return FormatXLS, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFormat, ext)
	}
}

// Row is one data row keyed by slugged header name. Cells beyond the header
// width are dropped; missing cells are present with an empty value.
type Row map[string]string

// Get returns the trimmed cell value for a column and whether it is non-empty.
func (r Row) Get(col string) (string, bool) {
	v, ok := r[col]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Reader streams data rows from a spreadsheet. The first file row is consumed
// as the header row at open time and is never emitted as data.
type Reader interface {
	// Headers returns the slugged header names in file order.
	Headers() []string
	// Next returns the next data row, or io.EOF when the sheet is exhausted.
	Next() (Row, error)
	// Close releases any resources held by the reader.
	Close() error
}

// Open creates a Reader for the given format over r.
// Fails with apperrors.ErrEmptyFile when the sheet has no rows at all.
func Open(r io.Reader, format Format) (Reader, error) {
	switch format {
	case FormatCSV:
		return newCSVReader(r)
	case FormatXLSX:
		return newXLSXReader(r)
	case FormatXLS:
		return newXLSReader(r)
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFormat, format)
	}
}

// makeRow zips headers with cells into a Row. Extra cells are dropped,
// missing trailing cells become empty strings.
func makeRow(headers []string, cells []string) Row {
	row := make(Row, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		if i < len(cells) {
			row[h] = cells[i]
		} else {
			row[h] = ""
		}
	}
	return row
}

// slugHeaders applies Slug to every header cell.
func slugHeaders(cells []string) []string {
	headers := make([]string, len(cells))
	for i, c := range cells {
		headers[i] = Slug(c)
	}
	return headers
}
