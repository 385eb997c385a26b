package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/adlens-io/adlens-engine/pkg/apperrors"
)

// xlsxReader streams rows from the first sheet of an XLSX workbook using
// excelize's row iterator, so large files are not materialized in memory.
type xlsxReader struct {
	file    *excelize.File
	rows    *excelize.Rows
	headers []string
}

func newXLSXReader(r io.Reader) (Reader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx workbook: %w", err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, apperrors.ErrEmptyFile
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to iterate sheet %q: %w", sheets[0], err)
	}

	if !rows.Next() {
		_ = rows.Close()
		_ = f.Close()
		return nil, apperrors.ErrEmptyFile
	}
	headerCells, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		_ = f.Close()
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	return &xlsxReader{file: f, rows: rows, headers: slugHeaders(headerCells)}, nil
}

func (x *xlsxReader) Headers() []string {
	return x.headers
}

func (x *xlsxReader) Next() (Row, error) {
	if !x.rows.Next() {
		if err := x.rows.Error(); err != nil {
			return nil, fmt.Errorf("failed to advance xlsx row: %w", err)
		}
		return nil, io.EOF
	}
	cells, err := x.rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read xlsx row: %w", err)
	}
	return makeRow(x.headers, cells), nil
}

func (x *xlsxReader) Close() error {
	if err := x.rows.Close(); err != nil {
		_ = x.file.Close()
		return err
	}
	return x.file.Close()
}

var _ Reader = (*xlsxReader)(nil)
