package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/supplylens/backend/config"
	httpDelivery "github.com/supplylens/backend/internal/delivery/http"
	"github.com/supplylens/backend/internal/infrastructure/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// StartServer serves the HTTP API for the lifetime of the fx app. A listener
// failure after start shuts the app down.
func StartServer(
	lc fx.Lifecycle,
	sd fx.Shutdowner,
	conf *config.Config,
	handler *httpDelivery.Handler,
	log *zap.Logger,
	m *metrics.Metrics,
) {
	exposed := m
	if !conf.Server.MetricsEnabled {
		exposed = nil
	}
	router := httpDelivery.SetupRouter(conf, handler, log.Named("http"), exposed)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", conf.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("starting HTTP server",
				zap.String("addr", ln.Addr().String()),
				zap.String("environment", conf.Server.Environment),
				zap.String("version", Version),
			)
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("HTTP server stopped", zap.Error(err))
					_ = sd.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down HTTP server")
			ctx, cancel := context.WithTimeout(ctx, conf.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	})
}
