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
	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/textanalyzer/internal/infra/httpserver"
	"github.com/bryanwahyu/textanalyzer/internal/middleware"
)

const shutdownGrace = 10 * time.Second

func newServeCmd(root *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(root.configPath)
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()
			if addr == "" {
				addr = a.cfg.Addr()
			}
			return a.serve(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides PORT (e.g. :8080)")
	return cmd
}

func (a *app) serve(parent context.Context, addr string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := httpserver.NewRouter(a.svc, httpserver.Options{
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		Checks:         []middleware.Check{{Name: "llm", Run: a.llmCheck}},
		Metrics:        a.metrics,
		Logger:         a.logger.Named("http"),
	})
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server listening",
			zap.String("addr", addr),
			zap.String("provider", a.cfg.LLM.Provider),
			zap.Bool("webhook", a.cfg.Notify.WebhookURL != ""),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if werr := a.notifier.Wait(shutdownCtx); werr != nil {
			a.logger.Warn("pending notifications abandoned", zap.Error(werr))
		}
		return err
	})
	return g.Wait()
}
