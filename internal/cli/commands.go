package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/mrmbilling/royalty-ledger/internal/service"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(recalcCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(exportCmd)

	recalcCmd.Flags().String("client", "", "Only repair this client")
	digestCmd.Flags().Bool("dry-run", false, "Print the digest instead of mailing it")
	exportCmd.Flags().String("format", "xlsx", "Output format: csv or xlsx")
	exportCmd.Flags().StringP("out", "o", "", "Output path, - for stdout (default: royalty-ledger-<year>.<format>)")
	exportCmd.Flags().Bool("archive", false, "Upload the workbook to the archive bucket and print a download link")
}

// ─── import ─────────────────────────────────────────────────────────────────

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import clients and entries from an Excel workbook",
	Long: `Reads the Clients and Entries sheets of FILE. Entries are saved in month
order per client so every carry-forward settles. Failing rows are reported
and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	fy, err := financialYearFlag(cmd)
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return withLedger(cmd, func(l *ledger) error {
		result, err := l.imports.Import(cmd.Context(), f, fy)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, c := range result.Clients {
			if c.Status == service.BulkStatusFailed {
				fmt.Fprintf(out, "client %s: %s\n", c.ClientID, c.Error)
			}
		}
		for _, row := range result.Entries {
			if row.Status == service.ImportStatusFailed {
				fmt.Fprintf(out, "row %d (%s %s): %s\n", row.Row, row.ClientID, row.Month, row.Error)
			}
			for _, w := range row.Warnings {
				fmt.Fprintf(out, "row %d (%s %s): warning: %s\n", row.Row, row.ClientID, row.Month, w)
			}
		}
		fmt.Fprintf(out, "clients: %d, entries saved: %d, failed: %d, warnings: %d\n",
			len(result.Clients), result.SavedCount, result.FailedCount, result.WarningCount)
		return nil
	})
}

// ─── recalc ─────────────────────────────────────────────────────────────────

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Recompute stored entries and repair broken carry-forward chains",
	Args:  cobra.NoArgs,
	RunE:  runRecalc,
}

func runRecalc(cmd *cobra.Command, args []string) error {
	fy, err := financialYearFlag(cmd)
	if err != nil {
		return err
	}
	clientID, _ := cmd.Flags().GetString("client")

	return withLedger(cmd, func(l *ledger) error {
		var results []*service.RecalculateResult
		if clientID != "" {
			res, err := l.royalty.RecalculateClient(cmd.Context(), clientID, fy)
			if err != nil {
				return err
			}
			results = append(results, res)
		} else {
			results, err = l.royalty.RecalculateAll(cmd.Context(), fy)
			if err != nil {
				return err
			}
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CLIENT\tRECOMPUTED\tCASCADED")
		for _, res := range results {
			fmt.Fprintf(w, "%s\t%d\t%d\n", res.ClientID, res.Recomputed, len(res.Cascaded))
		}
		return w.Flush()
	})
}

// ─── digest ─────────────────────────────────────────────────────────────────

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Mail the outstanding-balance digest now",
	Args:  cobra.NoArgs,
	RunE:  runDigest,
}

func runDigest(cmd *cobra.Command, args []string) error {
	fy, err := financialYearFlag(cmd)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	return withLedger(cmd, func(l *ledger) error {
		if dryRun {
			rendered, err := l.digests.Build(cmd.Context(), fy)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rendered.Subject)
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprint(cmd.OutOrStdout(), rendered.Text)
			return nil
		}

		rendered, err := l.digests.Send(cmd.Context(), fy)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "digest sent: %d clients, total %s\n",
			len(rendered.Digest.Lines), service.FormatINR(rendered.Digest.GrandTotal))
		return nil
	})
}

// ─── export ─────────────────────────────────────────────────────────────────

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a financial year to CSV or Excel",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	raw, err := financialYearFlag(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if format != "csv" && format != "xlsx" {
		return fmt.Errorf("unknown format %q, expected csv or xlsx", format)
	}
	outPath, _ := cmd.Flags().GetString("out")
	archive, _ := cmd.Flags().GetBool("archive")

	return withLedger(cmd, func(l *ledger) error {
		ctx := cmd.Context()
		fy, err := l.exports.ResolveFinancialYear(ctx, raw)
		if err != nil {
			return err
		}

		if archive {
			res, err := l.exports.Archive(ctx, fy)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "archived %s\n%s\n", res.Key, res.URL)
			return nil
		}

		var buf bytes.Buffer
		if format == "csv" {
			err = l.exports.WriteCSV(ctx, &buf, fy)
		} else {
			err = l.exports.WriteXLSX(ctx, &buf, fy)
		}
		if err != nil {
			return err
		}

		if outPath == "-" {
			_, err = io.Copy(cmd.OutOrStdout(), &buf)
			return err
		}
		if outPath == "" {
			outPath = l.exports.Filename(fy, format)
		}
		if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
		return nil
	})
}
