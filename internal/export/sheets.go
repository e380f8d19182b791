package export

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// DefaultSheetsTab is the tab the mirror overwrites when none is configured.
const DefaultSheetsTab = "Registrants"

// SheetsMirror overwrites one tab of a Google spreadsheet with the export.
type SheetsMirror struct {
	srv           *sheetsv4.Service
	spreadsheetID string
	tab           string
}

// NewSheetsMirror builds a mirror from a service-account credentials file.
func NewSheetsMirror(ctx context.Context, credentialsPath, spreadsheetID, tab string) (*SheetsMirror, error) {
	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	return NewSheetsMirrorWithOptions(ctx, spreadsheetID, tab,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	)
}

// NewSheetsMirrorWithOptions builds a mirror with explicit client options.
func NewSheetsMirrorWithOptions(ctx context.Context, spreadsheetID, tab string, opts ...option.ClientOption) (*SheetsMirror, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if tab == "" {
		tab = DefaultSheetsTab
	}
	srv, err := sheetsv4.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsMirror{srv: srv, spreadsheetID: spreadsheetID, tab: tab}, nil
}

func (m *SheetsMirror) SpreadsheetID() string { return m.spreadsheetID }

// Sync clears the tab and writes the header followed by rows.
func (m *SheetsMirror) Sync(ctx context.Context, rows []FlatRow) error {
	_, err := m.srv.Spreadsheets.Values.
		Clear(m.spreadsheetID, m.tab+"!A:Z", &sheetsv4.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("clear sheet %s: %w", m.tab, err)
	}

	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, toCells(Columns))
	for _, row := range rows {
		values = append(values, row.Cells())
	}
	vr := &sheetsv4.ValueRange{Values: values}
	_, err = m.srv.Spreadsheets.Values.
		Update(m.spreadsheetID, m.tab+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write sheet %s: %w", m.tab, err)
	}
	return nil
}
