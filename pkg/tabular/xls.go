package tabular

import (
	"bytes"
	"fmt"
	"io"

	"github.com/extrame/xls"

	"github.com/adlens-io/adlens-engine/pkg/apperrors"
)

// xlsReader reads rows from the first sheet of a legacy BIFF (.xls) workbook.
// The library loads the workbook structure up front; rows are still surfaced
// one at a time through the Reader contract.
type xlsReader struct {
	sheet   *xls.WorkSheet
	headers []string
	next    int
}

func newXLSReader(r io.Reader) (Reader, error) {
	// The BIFF parser needs random access; spool the stream into memory.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read xls stream: %w", err)
	}

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls workbook: %w", err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, apperrors.ErrEmptyFile
	}

	headerRow := sheet.Row(0)
	if headerRow == nil {
		return nil, apperrors.ErrEmptyFile
	}

	cells := make([]string, headerRow.LastCol())
	for i := range cells {
		cells[i] = headerRow.Col(i)
	}

	return &xlsReader{sheet: sheet, headers: slugHeaders(cells), next: 1}, nil
}

func (x *xlsReader) Headers() []string {
	return x.headers
}

func (x *xlsReader) Next() (Row, error) {
	for x.next <= int(x.sheet.MaxRow) {
		row := x.sheet.Row(x.next)
		x.next++
		if row == nil {
			continue
		}
		cells := make([]string, row.LastCol())
		for i := range cells {
			cells[i] = row.Col(i)
		}
		return makeRow(x.headers, cells), nil
	}
	return nil, io.EOF
}

func (x *xlsReader) Close() error {
	return nil
}

var _ Reader = (*xlsReader)(nil)
