package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rbastia/amadaily/internal/config"
	"github.com/rbastia/amadaily/internal/pipeline"
	"github.com/rbastia/amadaily/internal/server"
	"github.com/rbastia/amadaily/internal/util"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "amadaily",
		Short:        "Combine AMA timesheet and job-sheet workbooks into one report",
		SilenceUsage: true,
	}
	cmd.AddCommand(newCombineCmd(), newServeCmd())
	return cmd
}

type combineCmd struct {
	output       string
	reportName   string
	singleSheet  bool
	intermediate bool
	year         int
	verbose      bool
}

func newCombineCmd() *cobra.Command {
	cc := &combineCmd{}
	cmd := &cobra.Command{
		Use:   "combine <workbook.xlsx>",
		Short: "Combine one workbook from the command line",
		Args:  cobra.ExactArgs(1),
		RunE:  cc.run,
	}
	cmd.Flags().StringVarP(&cc.output, "output", "o", ".", "Directory to write the report into")
	cmd.Flags().StringVar(&cc.reportName, "name", "", "Report name stem (default: input name plus first work date)")
	cmd.Flags().BoolVar(&cc.singleSheet, "single-sheet", false, "Render one combined sheet instead of per-job sheets")
	cmd.Flags().BoolVar(&cc.intermediate, "intermediate", false, "Also write normalized entry dumps")
	cmd.Flags().IntVar(&cc.year, "year", 0, "Year for dates without one (default: inferred from filename)")
	cmd.Flags().BoolVarP(&cc.verbose, "verbose", "v", false, "Debug logging")
	return cmd
}

func (cc *combineCmd) run(cmd *cobra.Command, args []string) error {
	log := newLogger(cc.verbose)
	coord := pipeline.NewCoordinator(log)
	summary, err := coord.Run(args[0], pipeline.Options{
		SingleSheet:      cc.singleSheet,
		ReportName:       cc.reportName,
		EmitIntermediate: cc.intermediate,
		OutputDir:        cc.output,
		DefaultYear:      cc.year,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Report written to %s\n", summary.OutputPath)
	fmt.Printf("  %d matched, %d time-only, %d job-only\n", summary.Matched, summary.TimeOnly, summary.JobOnly)
	if len(summary.Skipped) > 0 {
		fmt.Printf("  %d rows skipped:\n", len(summary.Skipped))
		for _, s := range summary.Skipped {
			fmt.Printf("    %s row %d: %s\n", s.Sheet, s.SourceRow, s.Reason)
		}
	}
	for id, names := range summary.NameVariants {
		fmt.Printf("  merged spellings for %s: %v\n", id, names)
	}
	return nil
}

type serveCmd struct {
	port    int
	dev     bool
	verbose bool
}

func newServeCmd() *cobra.Command {
	sc := &serveCmd{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local upload server",
		RunE:  sc.run,
	}
	cmd.Flags().IntVarP(&sc.port, "port", "p", 0, "Listen port (default: config.toml or 20480)")
	cmd.Flags().BoolVar(&sc.dev, "dev", false, "Development mode")
	cmd.Flags().BoolVarP(&sc.verbose, "verbose", "v", false, "Debug logging")
	return cmd
}

func (sc *serveCmd) run(cmd *cobra.Command, args []string) error {
	log := newLogger(sc.verbose)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Warn().Err(err).Msg("config load failed, using defaults")
		cfg = config.DefaultConfig()
	}
	if sc.port > 0 {
		cfg.Server.Port = sc.port
	}
	if sc.dev {
		cfg.Server.DevMode = true
	}
	cfg.Server.Port = util.FindAvailablePort(cfg.Server.Port)

	srv, err := server.NewServer(cfg, log)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	fmt.Println("==========================================")
	fmt.Println("  AMA Daily Combiner")
	fmt.Println("==========================================")
	fmt.Printf("Listening on %s\n", url)

	if cfg.Server.OpenBrowser && !cfg.Server.DevMode {
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("Could not open a browser, visit %s manually\n", url)
		}
	}

	return srv.Run(fmt.Sprintf(":%d", cfg.Server.Port))
}
