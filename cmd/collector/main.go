package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fpl-collector/internal/app"
	"github.com/riskibarqy/fpl-collector/internal/config"
	"github.com/riskibarqy/fpl-collector/internal/observability"
	"github.com/riskibarqy/fpl-collector/internal/platform/logging"
	"github.com/riskibarqy/fpl-collector/internal/usecase"
)

const (
	exitOK               = 0
	exitFatal            = 1
	exitUsage            = 2
	exitValidationFailed = 3
	exitWriteFailed      = 4
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type options struct {
	verbose      bool
	historyCount int
	outputDir    string
	validateOnly string
	compare      bool
	strict       bool
	showVersion  bool
	set          map[string]bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseOptions(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("fpl-collector", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.verbose, "v", false, "debug logging")
	fs.IntVar(&opts.historyCount, "history-count", 0, "number of players whose history is fetched (overrides HISTORY_COUNT)")
	fs.StringVar(&opts.outputDir, "output", "", "output directory (overrides OUTPUT_DIR)")
	fs.StringVar(&opts.validateOnly, "validate-only", "", "validate an existing dump and print the report")
	fs.BoolVar(&opts.compare, "compare", false, "compare the latest dumps of the two most recent days")
	fs.BoolVar(&opts.strict, "strict", false, "exit with status 3 when validation fails")
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	opts.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	if opts.set["history-count"] && opts.historyCount < 0 {
		return options{}, fmt.Errorf("-history-count must be >= 0")
	}
	if opts.validateOnly != "" && opts.compare {
		return options{}, fmt.Errorf("-validate-only and -compare are mutually exclusive")
	}
	return opts, nil
}

func (o options) apply(cfg config.Config) (config.Config, error) {
	if o.set["history-count"] {
		cfg.HistoryCount = o.historyCount
	}
	if o.set["output"] {
		cfg.OutputDir = o.outputDir
	}
	if o.verbose {
		cfg.LogLevel = logging.LevelDebug
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "fpl-collector: %v\n", err)
		return exitUsage
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "fpl-collector %s\n", version)
		return exitOK
	}

	cfg, err := config.Load()
	if err == nil {
		cfg, err = opts.apply(cfg)
	}
	if err != nil {
		fmt.Fprintf(stderr, "fpl-collector: load config: %v\n", err)
		return exitFatal
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel)
	logging.SetDefault(logger)
	defer logger.Sync()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace failed", "error", err)
		return exitFatal
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("uptrace shutdown failed", "error", err)
		}
	}()

	var collector *app.Collector
	if opts.validateOnly != "" || opts.compare {
		collector = app.NewOffline(cfg, logger)
	} else if collector, err = app.NewCollector(ctx, cfg, logger); err != nil {
		logger.Error("build collector", "error", err)
		return exitFatal
	}
	defer func() {
		if err := collector.Close(); err != nil {
			logger.Warn("close collector", "error", err)
		}
	}()

	switch {
	case opts.validateOnly != "":
		return validateOnly(ctx, collector.Runs, opts, stdout, logger)
	case opts.compare:
		return compareLatest(ctx, collector.Runs, cfg.OutputDir, stdout, logger)
	default:
		return collect(ctx, collector.Runs, cfg, opts, logger)
	}
}

func validateOnly(ctx context.Context, runs *usecase.RunService, opts options, stdout io.Writer, logger *logging.Logger) int {
	report, err := runs.ValidateOnly(ctx, opts.validateOnly)
	if err != nil {
		logger.Error("validate dump failed", "path", opts.validateOnly, "error", err)
		return exitFatal
	}
	if err := printJSON(stdout, report); err != nil {
		logger.Error("print report", "error", err)
		return exitFatal
	}
	if !report.Passed && opts.strict {
		return exitValidationFailed
	}
	return exitOK
}

func compareLatest(ctx context.Context, runs *usecase.RunService, outputDir string, stdout io.Writer, logger *logging.Logger) int {
	comparison, err := runs.CompareLatest(ctx, outputDir)
	if err != nil {
		logger.Error("compare dumps failed", "output_dir", outputDir, "error", err)
		return exitFatal
	}
	if err := printJSON(stdout, comparison); err != nil {
		logger.Error("print comparison", "error", err)
		return exitFatal
	}
	return exitOK
}

func collect(ctx context.Context, runs *usecase.RunService, cfg config.Config, opts options, logger *logging.Logger) int {
	logger.Info("collection started",
		"base_url", cfg.FPLBaseURL,
		"history_count", cfg.HistoryCount,
		"history_selection", cfg.HistorySelection,
		"output_dir", cfg.OutputDir,
	)

	result, err := runs.Run(ctx, cfg.OutputDir)
	if err != nil {
		var fatal *usecase.FatalAssemblyError
		if errors.As(err, &fatal) {
			logger.Error("collection aborted", "stage", fatal.Stage, "error", fatal.Err)
		} else {
			logger.Error("collection aborted", "error", err)
		}
		return exitFatal
	}

	logger.Info("collection finished",
		"run_id", result.RunID,
		"duration", result.Duration,
		"players", result.Counts["players"],
		"histories", fmt.Sprintf("%d/%d", result.HistoryFetched, result.HistoryRequested),
		"failed_history_ids", result.FailedHistoryIDs(),
		"validation_passed", result.Report.Passed,
		"artifacts", result.Artifacts.Written(),
	)

	switch {
	case result.WriteErr != nil:
		return exitWriteFailed
	case !result.Report.Passed && opts.strict:
		return exitValidationFailed
	default:
		return exitOK
	}
}

func printJSON(out io.Writer, value any) error {
	raw, err := sonic.ConfigStd.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	_, err = out.Write(raw)
	return err
}
