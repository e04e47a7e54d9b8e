package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ppt-upload/internal/server"
)

func serveCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			cfg.Build = server.BuildInfo{Version: version, Commit: commit}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := server.NewLogger(os.Stdout, cfg.Log, cfg.Env)
			srv := server.New(cfg, logger)

			cleanupCtx, stopCleanup := context.WithCancel(context.Background())
			defer stopCleanup()
			go func() {
				if err := srv.RunCleanup(cleanupCtx); err != nil {
					logger.Error("cleanup", "err", err)
				}
			}()

			// Start the HTTP server in a background goroutine.
			// This allows us to listen for OS signals while the server runs.
			errCh := make(chan error, 1)
			go func() {
				logger.Info("starting",
					"addr", cfg.Addr,
					"upload_dir", cfg.UploadDir,
					"version", version,
					"commit", commit,
				)
				errCh <- srv.Start()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case sig := <-sigCh:
				logger.Info("shutting_down", "signal", sig.String())
				// Give in-flight uploads 5 seconds to finish.
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					return fmt.Errorf("shutdown: %w", err)
				}
				logger.Info("shutdown_complete")
				return nil
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server: %w", err)
				}
				return nil
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides config")

	return cmd
}
