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

	"parcelmap/internal/httpapi"
	"parcelmap/internal/logging"
	"parcelmap/internal/metrics"
)

func newServeCmd(o *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the map controller over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(o, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", envOr("HTTP_ADDR", ":8081"), "listen address")
	return cmd
}

func runServe(o *options, addr string) error {
	logger := logging.New(o.logLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctl, features, err := o.controller(ctx, logger)
	if err != nil {
		return err
	}
	m := metrics.New()
	for id, fs := range features {
		m.SetLayerFeatures(id, len(fs))
	}

	h := httpapi.New(logger, ctl, m)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("parcelmap listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		logger.Error().Err(err).Msg("http server error")
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info().Msg("shutdown complete")
	return nil
}

func envOr(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
