package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"soldexlogs/internal/collector"
	"soldexlogs/internal/config"
	"soldexlogs/internal/metrics"
	"soldexlogs/internal/registry"
	"soldexlogs/internal/storage"
	"soldexlogs/internal/storage/postgres"
	"soldexlogs/internal/ws"
)

func main() {
	root := &cobra.Command{
		Use:          "collector",
		Short:        "Solana DEX log collector",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the collector",
		RunE:  runCollector,
	}

	runCmd.Flags().String("ws-url", "wss://api.mainnet-beta.solana.com/", "Solana WebSocket endpoint")
	runCmd.Flags().String("programs", "", "YAML file mapping program ids to DEX names")
	runCmd.Flags().String("filter", "all", "subscription filter (all, mentions)")
	runCmd.Flags().String("commitment", "processed", "commitment level")
	runCmd.Flags().String("out", "./data/dexlog.jsonl", "output JSONL path")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN (replaces the JSONL sink)")
	runCmd.Flags().String("metrics-listen", "", "metrics listen address (empty disables)")
	runCmd.Flags().Duration("backoff-base", 500*time.Millisecond, "initial reconnect backoff")
	runCmd.Flags().Duration("backoff-max", 30*time.Second, "reconnect backoff cap")
	runCmd.Flags().Duration("healthy-after", 30*time.Second, "streaming time after which backoff resets")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a captured JSONL file",
		RunE:  runVerify,
	}

	verifyCmd.Flags().String("in", "./data/dexlog.jsonl", "input JSONL path")
	verifyCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(verifyCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCollector(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Programs == "" {
		return fmt.Errorf("programs file is required")
	}

	reg, err := registry.LoadFile(cfg.Programs)
	if err != nil {
		return err
	}
	if reg.Len() == 0 {
		return fmt.Errorf("programs file has no entries")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sink storage.Sink
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		sink = store
	} else {
		jsonl, err := storage.NewJSONLSink(cfg.Out)
		if err != nil {
			return err
		}
		sink = jsonl
	}
	defer sink.Close()

	m := metrics.New()
	if cfg.MetricsListen != "" {
		go m.Serve(ctx, cfg.MetricsListen, logger)
	}

	dial := func(ctx context.Context, url string) (collector.Conn, error) {
		return ws.Dial(ctx, url)
	}

	runner := collector.NewRunner(collector.RunConfig{
		URL:          cfg.WSURL,
		Filter:       cfg.Filter,
		Commitment:   cfg.Commitment,
		BackoffBase:  cfg.BackoffBase,
		BackoffMax:   cfg.BackoffMax,
		HealthyAfter: cfg.HealthyAfter,
	}, dial, reg, sink, m, logger)

	logger.Info("collector start",
		zap.String("ws_url", cfg.WSURL),
		zap.String("filter", cfg.Filter),
		zap.String("commitment", cfg.Commitment),
		zap.Int("programs", reg.Len()),
		zap.String("out", cfg.Out),
		zap.Bool("postgres", cfg.PGDSN != ""),
		zap.String("metrics_listen", cfg.MetricsListen),
	)

	err = runner.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("collector stopped")
		return nil
	}
	return err
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
