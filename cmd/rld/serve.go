package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"rld/internal/httpapi"
)

func newServeCmd(f *rootFlags) *cobra.Command {
	var (
		addr        string
		corsOrigins string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, cfg, logger, err := f.loadService(cmd)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = os.Getenv("RLD_ADDR")
			}
			if addr == "" {
				addr = cfg.Addr
			}
			origins := cfg.CORSAllowedOrigins
			if corsOrigins != "" {
				origins = splitCSV(corsOrigins)
			}

			httpapi.SetLogger(logger)
			httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
			httpapi.SetForwardTimeout(time.Duration(cfg.ForwardTimeoutSeconds) * time.Second)
			httpapi.SetCORSOptions(cfg.CORSEnabled || corsOrigins != "", origins, cfg.CORSAllowedMethods, cfg.CORSAllowedHeaders)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			httpapi.SetBaseContext(ctx)

			srv := &http.Server{
				Addr:              addr,
				Handler:           httpapi.NewMux(svc),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errc := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", addr).Int("models", len(cfg.Models)).Str("default_model", cfg.DefaultModel).Msg("rld listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("graceful shutdown error")
			}
			logger.Info().Msg("rld stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config or RLD_ADDR)")
	cmd.Flags().StringVar(&corsOrigins, "cors-origins", "", "comma-separated CORS origins; enables CORS")
	return cmd
}
