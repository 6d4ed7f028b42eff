// Command scholar-fetch refreshes _data/scholar.json from a Google Scholar
// profile. Blocked or changed pages keep the previous snapshot (or write an
// empty one) and still exit 0; only network, config and disk failures exit 1.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	scholar "github.com/compscidr/scholar-snapshot"
	"github.com/compscidr/scholar-snapshot/internal/config"
	"github.com/compscidr/scholar-snapshot/internal/logging"
	"github.com/compscidr/scholar-snapshot/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], afero.NewOsFs())
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "scholar-fetch: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, fs afero.Fs) error {
	flags := pflag.NewFlagSet("scholar-fetch", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfgPath, err := flags.GetString("config")
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath, flags)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	fetcher := scholar.NewFetcher(cfg.HTTP.Timeout, logger)
	fetcher.SetBaseURL(cfg.Scholar.BaseURL)
	fetcher.SetHeaders(cfg.HTTP.UserAgent, cfg.HTTP.AcceptLanguage)

	extractor := scholar.NewExtractor(
		scholar.NewBlockDetector(cfg.Detector.Markers),
		scholar.NewChartParser(cfg.Chart.Marker),
	)
	store := scholar.NewStore(fs, cfg.Output.Path, logger)
	stats := telemetry.New()

	pipeline := scholar.NewPipeline(cfg.Scholar.UserID, fetcher, extractor, store, logger)
	pipeline.SetRecorder(stats)

	report, runErr := pipeline.Run(ctx)
	if err := stats.WriteTextfile(cfg.Telemetry.Textfile); err != nil {
		logger.Warn("Failed to write metrics textfile", zap.Error(err))
	}
	if runErr != nil {
		return runErr
	}

	logger.Info("Run finished",
		zap.String("run_id", report.RunID),
		zap.Stringer("outcome", report.Outcome),
		zap.Stringer("action", report.Action),
		zap.Duration("duration", report.Duration))
	return nil
}
