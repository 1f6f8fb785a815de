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
	"go.uber.org/zap"

	"github.com/hyperjump/ruslat/internal/server"
	"github.com/hyperjump/ruslat/internal/watcher"
)

func newServerCmd(opts *globalOptions) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Serve page-handle and name lookups over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup(false)
			if err != nil {
				return err
			}
			defer logger.Sync()
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			components, err := initializeComponents(ctx, cfg, logger, true)
			if err != nil {
				return err
			}
			defer components.Close()

			var watchSvc server.WatchService
			if cfg.Data.UsersFile != "" && cfg.Data.WatchOrDefault() {
				idx := components.Indexer
				w := watcher.NewWatcher(
					[]string{cfg.Data.UsersFile},
					func(path string) {
						if _, err := idx.ImportFile(context.Background(), path); err != nil {
							logger.Warn("reimport failed, keeping previous users", zap.String("path", path), zap.Error(err))
						}
					},
					watcher.WithLogger(logger),
					watcher.WithDebounce(cfg.Search.Debounce),
					watcher.WithRemoveHandler(func(path string) {
						idx.Forget(path)
						logger.Warn("users file removed, keeping current users", zap.String("path", path))
					}),
				)
				if err := w.Start(ctx); err != nil {
					return err
				}
				defer w.Stop()
				watchSvc = w
			}

			srv := server.NewServer(
				components.Engine,
				components.Indexer,
				components.Storage,
				&cfg.Server,
				logger,
				watchSvc,
				cfg.Data.UsersFile,
			)
			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Stop(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	return cmd
}
