package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alimgiray/glscope/internal/export"
	"github.com/alimgiray/glscope/internal/models"
	"github.com/alimgiray/glscope/internal/services"
	"github.com/alimgiray/glscope/pkg/config"
	"github.com/alimgiray/glscope/pkg/logger"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "glscope",
		Short:         "Per-author contribution statistics for a GitLab group",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type analyzeOptions struct {
	configPath string
	token      string
	out        string
	xlsx       string
	table      bool
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a group and write the report",
		Long: `Analyze walks every project of the group, fetches the commits of the
configured date window and writes per-author statistics.

Config keys can be overridden with GLSCOPE_* environment variables,
e.g. GLSCOPE_TOKEN or GLSCOPE_GROUP_ID.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "analysis config file (yaml or json)")
	cmd.Flags().StringVar(&opts.token, "token", "", "API token, overrides the config file")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "-", "JSON report destination, - for stdout")
	cmd.Flags().StringVar(&opts.xlsx, "xlsx", "", "also write the report as an XLSX workbook")
	cmd.Flags().BoolVar(&opts.table, "table", false, "print a summary table to stderr")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("glscope version %s\n", version)
		},
	}
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	if err := config.Load(); err != nil {
		return err
	}
	log := logger.GetLogger()
	log.SetOutput(os.Stderr)

	cfg, err := config.LoadAnalysis(opts.configPath)
	if err != nil {
		return err
	}
	if opts.token != "" {
		cfg.Token = opts.token
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetch := config.AppConfig.Fetch
	analysisService := services.NewAnalysisService(services.FetcherOptions{
		Timeout:    fetch.Timeout,
		Retries:    fetch.Retries,
		RetryDelay: fetch.RetryDelay,
	}, log)

	report, err := analysisService.Analyze(ctx, cfg)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if err := writeJSON(cmd.OutOrStdout(), opts.out, report); err != nil {
		return err
	}

	if opts.xlsx != "" {
		if err := writeFile(opts.xlsx, func(w io.Writer) error {
			return export.WriteXLSX(w, report)
		}); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	}

	if opts.table {
		return export.RenderTable(cmd.ErrOrStderr(), report)
	}
	return nil
}

func writeJSON(stdout io.Writer, dest string, report *models.Report) error {
	encode := func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if dest == "" || dest == "-" {
		return encode(stdout)
	}
	if err := writeFile(dest, encode); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
