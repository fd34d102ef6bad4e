package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-coverage-api/internal/dto"
	"github.com/noah-isme/sma-coverage-api/internal/service"
	"github.com/noah-isme/sma-coverage-api/pkg/storage"
)

const dateLayout = "2006-01-02"

func (r *root) runCommand() *cobra.Command {
	var (
		date   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the coverage engine for a date",
		Long: `Run the coverage engine for a date and store the assignments.

Examples:
  coverage run --date 2024-09-02
  coverage run --date 2024-09-02 --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := r.open(cmd.Context())
			defer release()
			if err != nil {
				return err
			}

			result, err := svc.Run(cmd.Context(), dto.RunCoverageRequest{Date: date, DryRun: dryRun})
			if err != nil {
				return fmt.Errorf("coverage run failed: %w", err)
			}
			printRun(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", time.Now().Format(dateLayout), "school day (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute without saving")
	return cmd
}

func (r *root) showCommand() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored coverage sheet for a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := r.open(cmd.Context())
			defer release()
			if err != nil {
				return err
			}

			sheet, _, err := svc.Get(cmd.Context(), date)
			if err != nil {
				return fmt.Errorf("load coverage: %w", err)
			}
			printSheet(cmd.OutOrStdout(), sheet)
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", time.Now().Format(dateLayout), "school day (YYYY-MM-DD)")
	return cmd
}

func (r *root) exportCommand() *cobra.Command {
	var (
		date   string
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stored coverage sheet as CSV or PDF",
		Long: `Export the stored coverage sheet for a date.

Examples:
  coverage export --date 2024-09-02 --format pdf
  coverage export --date 2024-09-02 --format csv --out /tmp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := r.open(cmd.Context())
			defer release()
			if err != nil {
				return err
			}

			file, err := svc.Export(cmd.Context(), date, format)
			if err != nil {
				return fmt.Errorf("export coverage: %w", err)
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(file.Body)
				return err
			}
			store, err := storage.NewLocalStorage(out)
			if err != nil {
				return err
			}
			target, err := store.Save(file.Filename, file.Body)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", target, len(file.Body))
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", time.Now().Format(dateLayout), "school day (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&format, "format", "f", service.ExportFormatCSV, "csv or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory, or - for stdout")
	return cmd
}

func printRun(w io.Writer, result *dto.CoverageRunResponse) {
	if result.DryRun {
		fmt.Fprintf(w, "Coverage for %s (dry run)\n", result.Date)
	} else {
		fmt.Fprintf(w, "Coverage for %s (run %s)\n", result.Date, result.RunID)
	}
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, res := range result.Results {
		candidate := res.CandidateName
		if candidate == "" {
			candidate = "-"
		}
		fmt.Fprintf(w, "  %-20s %-5s %-20s %-18s\n", res.AbsentStaffName, res.PeriodLabel, candidate, res.Type)
	}
	fmt.Fprintln(w, strings.Repeat("-", 72))
	fmt.Fprintf(w, "  Absences: %d  Covered: %d  Uncovered: %d  Candidates evaluated: %d\n",
		result.Meta.AbsencesProcessed,
		result.Meta.CoveredPeriods,
		result.Meta.UncoveredPeriods,
		result.Meta.TotalCandidatesEvaluated,
	)
}

func printSheet(w io.Writer, sheet *dto.CoverageSheet) {
	fmt.Fprintf(w, "Coverage sheet for %s\n", sheet.Date)
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, row := range sheet.Rows {
		candidate := row.CandidateName
		if candidate == "" {
			candidate = "-"
		}
		fmt.Fprintf(w, "  %-20s %-5s %-20s %-10s\n", row.StaffName, row.PeriodLabel, candidate, row.Status)
	}
	fmt.Fprintln(w, strings.Repeat("-", 72))
	fmt.Fprintf(w, "  Covered: %d  Uncovered: %d\n", sheet.Covered, sheet.Uncovered)
}
