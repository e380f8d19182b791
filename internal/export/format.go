package export

import (
	"fmt"
	"io"
	"strings"
)

// Format selects a file export encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "xlsx", "excel" or "csv", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

func (f Format) Filename() string {
	if f == FormatCSV {
		return CSVFilename
	}
	return XLSXFilename
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return CSVContentType
	}
	return XLSXContentType
}

// Write encodes rows to w in this format.
func (f Format) Write(w io.Writer, rows []FlatRow) error {
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, rows)
	case FormatCSV:
		return WriteCSV(w, rows)
	default:
		return fmt.Errorf("unsupported export format %q", string(f))
	}
}
