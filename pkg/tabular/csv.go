package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/adlens-io/adlens-engine/pkg/apperrors"
)

// csvReader streams rows from a CSV file.
type csvReader struct {
	r       *csv.Reader
	headers []string
}

func newCSVReader(r io.Reader) (Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows are tolerated; makeRow pads/drops
	cr.TrimLeadingSpace = true

	record, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	return &csvReader{r: cr, headers: slugHeaders(record)}, nil
}

func (c *csvReader) Headers() []string {
	return c.headers
}

func (c *csvReader) Next() (Row, error) {
	record, err := c.r.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv row: %w", err)
	}
	return makeRow(c.headers, record), nil
}

func (c *csvReader) Close() error {
	return nil
}

var _ Reader = (*csvReader)(nil)
