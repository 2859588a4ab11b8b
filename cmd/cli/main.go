package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"cytodash/domain/taxonomy"
	"cytodash/internal"
	"cytodash/internal/chart"
	"cytodash/internal/config"
	"cytodash/internal/container"
	"cytodash/internal/dashboard"
	"cytodash/internal/report"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/guregu/null.v3"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags override the environment configuration for one invocation
type globalFlags struct {
	data          string
	sheet         string
	dataPath      string
	taxonomyFile  string
	zeroAsMissing bool
	logLevel      string
}

func newRootCmd(out io.Writer) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "cytodash-cli",
		Short:         "Inspect a serum cytokine measurement table from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.data, "data", "", "Measurement table path or URL (default $DATA_FILE)")
	pf.StringVar(&flags.sheet, "sheet", "", "XLSX sheet name (default $DATA_SHEET or the first sheet)")
	pf.StringVar(&flags.dataPath, "data-path", "", "Path to the records inside a JSON document (default $DATA_PATH)")
	pf.StringVar(&flags.taxonomyFile, "taxonomy", "", "YAML file overriding the functional groups (default $TAXONOMY_FILE)")
	pf.BoolVar(&flags.zeroAsMissing, "zero-as-missing", false, "Treat literal zero concentrations as missing")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: error, warn, info, debug, trace (default $LOG_LEVEL)")

	rootCmd.AddCommand(
		newAnalytesCmd(flags),
		newSeriesCmd(flags),
		newReportCmd(flags),
		newChartCmd(flags),
		newOverviewCmd(flags),
	)

	return rootCmd
}

// loadService reads configuration, applies flag overrides and ingests the table
func loadService(ctx context.Context, cmd *cobra.Command, flags *globalFlags) (*dashboard.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("data") {
		cfg.Data.File = flags.data
	}
	if fs.Changed("sheet") {
		cfg.Data.Sheet = flags.sheet
	}
	if fs.Changed("data-path") {
		cfg.Data.DataPath = flags.dataPath
	}
	if fs.Changed("taxonomy") {
		cfg.Data.TaxonomyFile = flags.taxonomyFile
	}
	if fs.Changed("zero-as-missing") {
		cfg.Data.ZeroAsMissing = flags.zeroAsMissing
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}

	// logs go to stderr so command output stays pipeable
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
	defer logger.Sync()

	c, err := container.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := c.LoadDataset(ctx); err != nil {
		return nil, err
	}
	return c.Dashboard, nil
}

func newAnalytesCmd(flags *globalFlags) *cobra.Command {
	var category, search string

	cmd := &cobra.Command{
		Use:   "analytes",
		Short: "List analytes, optionally filtered by category and search term",
		Example: `  cytodash-cli analytes --category Pro-inflammatory
  cytodash-cli analytes --search il-1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ANALYTE\tNAME\tCATEGORY")
			for _, a := range svc.FilterAnalytes(category, search) {
				fmt.Fprintf(w, "%s\t%s\t%s\n", a, taxonomy.DisplayName(a), svc.CategoryOf(a))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&category, "category", taxonomy.CategoryAll, "Functional group, All or Uncategorized")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive substring of the display name")

	return cmd
}

func newSeriesCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "series <analyte>",
		Short: "Print per-timepoint cohort means for an analyte",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			series, err := svc.Series(args[0])
			if err != nil {
				return err
			}
			stats, err := svc.Stats(args[0])
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{"series": series, "stats": stats})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", series.DisplayName, series.Category)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "TIMEPOINT\tHC MEAN\tHC N\tAD/MCI MEAN\tAD/MCI N\t")
			for i, p := range series.Points {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t\n",
					p.Label, formatValue(p.HCMean), stats[i].HC.N, formatValue(p.ADMCIMean), stats[i].ADMCI.N)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print series and summary statistics as JSON")

	return cmd
}

func newReportCmd(flags *globalFlags) *cobra.Command {
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "report <analyte>",
		Short: "Render the markdown summary of an analyte",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			r, err := report.Generate(svc, args[0])
			if err != nil {
				return err
			}

			body := r.Markdown()
			if asHTML {
				body = r.HTML()
			}
			_, err = cmd.OutOrStdout().Write(body)
			return err
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "Render HTML instead of markdown")

	return cmd
}

func newChartCmd(flags *globalFlags) *cobra.Command {
	var output string
	var logScale bool

	cmd := &cobra.Command{
		Use:     "chart <analyte>",
		Short:   "Write the grouped bar chart of an analyte as PNG",
		Example: `  cytodash-cli chart "IL-6 (57)" -o il6.png --log`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(output) == "" {
				return fmt.Errorf("--output is required")
			}

			svc, err := loadService(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			series, err := svc.Series(args[0])
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := chart.Render(f, series, chart.Options{LogScale: logScale}); err != nil {
				f.Close()
				return fmt.Errorf("failed to render chart: %w", err)
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG file to write")
	cmd.Flags().BoolVar(&logScale, "log", false, "Plot log10(1 + value)")

	return cmd
}

func newOverviewCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Summarize the loaded dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			ov := svc.Overview()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(ov)
			}

			labels := make([]string, len(ov.Timepoints))
			for i, tp := range ov.Timepoints {
				labels[i] = tp.Label()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Dataset:      %s\n", ov.DatasetID)
			fmt.Fprintf(out, "Source:       %s (%s)\n", ov.Source, ov.Fingerprint)
			fmt.Fprintf(out, "Patients:     %d\n", ov.Patients)
			fmt.Fprintf(out, "Analytes:     %d (%d uncategorized)\n", ov.Analytes, ov.Uncategorized)
			fmt.Fprintf(out, "Timepoints:   %s\n", strings.Join(labels, ", "))
			fmt.Fprintf(out, "Rows:         %d read, %d dropped\n", ov.Stats.Rows, ov.Stats.DroppedRows)
			fmt.Fprintf(out, "Absent cells: %d (%d textual)\n", ov.Stats.AbsentCells, ov.Stats.TextCells)
			fmt.Fprintf(out, "\n%s with %d timepoints and %d cytokine categories\n", ov.Source, len(ov.Timepoints), ov.Categories)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the overview as JSON")

	return cmd
}

func formatValue(v null.Float) string {
	if !v.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", v.Float64)
}
