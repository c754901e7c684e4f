package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/supplylens/backend/config"
	"github.com/supplylens/backend/internal/app"
	"github.com/supplylens/backend/internal/infrastructure/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const serviceName = "supplylens"

// newRootCmd builds the command tree; serve runs when no subcommand is given
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Product extraction and supplier discovery service",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	root.AddCommand(
		newServeCmd(),
		newExtractCmd(),
		newSuppliersCmd(),
		newPlatformCmd(),
	)
	return root
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and builds the process logger
func bootstrap() (*config.Config, *zap.Logger, error) {
	conf, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var log *zap.Logger
	if conf.Log.Level == "" && conf.Log.Format == "" {
		log, err = logger.NewForEnvironment(conf.Server.Environment, serviceName)
	} else {
		log, err = logger.New(logger.Config{
			Level:  conf.Log.Level,
			Format: conf.Log.Format,
			Output: conf.Log.Output,
		}, serviceName)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return conf, log, nil
}

// runWith starts the services behind targets, runs fn and stops them again.
// One-shot commands log to stderr at warn unless a level is configured.
func runWith(cmd *cobra.Command, fn func(ctx context.Context) error, targets ...any) error {
	conf, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	level := conf.Log.Level
	if level == "" {
		level = "warn"
	}
	log, err := logger.New(logger.Config{Level: level, Format: "console", Output: "stderr"}, serviceName)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	fxApp := app.New(conf, log, fx.Populate(targets...))
	if err := fxApp.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(cmd.Context(), fxApp.StartTimeout())
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), fxApp.StopTimeout())
		defer cancel()
		if err := fxApp.Stop(stopCtx); err != nil {
			log.Warn("shutdown failed", zap.Error(err))
		}
	}()

	return fn(cmd.Context())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
