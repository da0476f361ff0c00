package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-drift/vdom/cmd/vdom/internal/config"
	"github.com/go-drift/vdom/cmd/vdom/internal/preview"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve FILE",
		Short: "Serve a live preview of a markup document",
		Long: `Serve mounts a markup document and serves it over HTTP. The file is
watched; on every save it is decoded again, reconciled against the mounted
tree, and connected browsers receive the new body over a websocket.

Examples:
  vdom serve page.yaml
  vdom serve page.yaml --addr :8080 --debounce 250ms`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return o.serve(ctx, args[0])
		},
	}
	cmd.Flags().String("addr", "127.0.0.1:7331", "listen address")
	cmd.Flags().Duration("debounce", 100*time.Millisecond, "delay before reloading after a change")
	_ = o.v.BindPFlag(config.KeyAddr, cmd.Flags().Lookup("addr"))
	_ = o.v.BindPFlag(config.KeyDebounce, cmd.Flags().Lookup("debounce"))
	return cmd
}

func (o *options) serve(ctx context.Context, path string) error {
	s, err := preview.New(path, preview.Options{
		Title:    o.cfg.Title,
		MaxDepth: o.cfg.MaxDepth,
		Logger:   o.logger,
	})
	if err != nil {
		return err
	}
	if _, err := s.Load(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              o.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 2)
	go func() {
		if err := s.Watch(ctx, o.cfg.Debounce); err != nil {
			errCh <- err
		}
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	o.logger.Info("serving preview", "url", "http://"+o.cfg.Addr, "file", path)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	o.logger.Info("preview stopped")
	return runErr
}
