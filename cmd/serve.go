package cmd

import (
	"github.com/spf13/cobra"
	"github.com/supplylens/backend/internal/app"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

// runServe blocks until the process receives SIGINT or SIGTERM
func runServe() error {
	conf, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting supplylens",
		zap.String("version", app.Version),
		zap.String("cache", conf.Cache.Type),
		zap.String("renderer", conf.Scrape.Renderer),
		zap.String("database", conf.Database.Driver),
	)

	fxApp := app.Invoke(conf, log, app.StartServer)
	if err := fxApp.Err(); err != nil {
		return err
	}
	fxApp.Run()
	return nil
}
