package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

const (
	CSVFilename    = "registered_users.csv"
	CSVContentType = "text/csv; charset=utf-8"
)

// WriteCSV writes the same header and rows as WriteXLSX in CSV form.
func WriteCSV(w io.Writer, rows []FlatRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row.Values()); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
