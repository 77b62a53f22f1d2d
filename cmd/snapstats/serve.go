package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/snapstats/analyzer/internal/handlers"
	"github.com/snapstats/analyzer/internal/logic"
	"github.com/snapstats/analyzer/internal/models"
	"github.com/snapstats/analyzer/internal/names"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		port      int
		niceNames bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Port = port
			}
			return runServe(cmd.Context(), a, niceNames)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Listen port (default: PORT)")
	cmd.Flags().BoolVar(&niceNames, "nice-names", false, "Replace raw identifiers with display names")
	return cmd
}

func runServe(ctx context.Context, a *app, niceNames bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	log := a.logger.Sugar()

	hcfg := handlers.Config{
		Logger: a.logger,
		Defaults: models.AnalyzeParams{
			Padding:    a.cfg.Padding,
			Delimiter:  a.cfg.Delimiter,
			CardSort:   a.cfg.CardSort,
			LimitCards: a.cfg.LimitCards,
		},
		MaxBodySize: a.cfg.MaxBodySize,
	}

	var rdb names.RedisClient
	if a.cfg.RedisURL != "" {
		client, err := openRedis(ctx, a.cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		hcfg.Redis = client
		rdb = client
	}

	var resolver logic.NameResolver = names.Identity{}
	if niceNames {
		var err error
		resolver, err = buildResolver(ctx, a.cfg.NamesFiles, rdb, a.logger)
		if err != nil {
			return err
		}
	}
	hcfg.Analysis = logic.NewAnalysisService(resolver, a.logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Port),
		Handler:           handlers.NewRouter(handlers.New(hcfg), a.cfg.AllowedOrigins, a.cfg.RequestTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("Starting server", "addr", srv.Addr, "env", a.cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Infow("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
