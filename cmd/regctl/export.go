package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"regdesk/internal/app"
	"regdesk/internal/export"
	"regdesk/internal/platform/config"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every registrant to an xlsx or csv file",
		Long: `Export the registrant collection using the same formatter as the
HTTP export endpoints. Reads from DATABASE_URL.

Examples:
  regctl export --out registered_users.xlsx
  regctl export --format csv --out -`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}
	cmd.Flags().StringP("format", "f", "xlsx", "output format (xlsx, csv)")
	cmd.Flags().StringP("out", "o", "", "output file, - for stdout (default: the export's filename)")
	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	rawFormat, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for export")
	}
	cfg.Sheets = config.Sheets{}

	a, err := app.New(cmd.Context(), cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // process exits right after

	file, err := a.Service.Export(cmd.Context(), format)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = file.Filename
	}
	if err := writeExport(cmd.OutOrStdout(), out, file.Body); err != nil {
		return err
	}
	if out != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d registrants to %s\n", file.Rows, out)
	}
	return nil
}

func writeExport(stdout io.Writer, path string, body []byte) error {
	if path == "-" {
		_, err := stdout.Write(body)
		return err
	}
	return os.WriteFile(path, body, 0o600)
}
