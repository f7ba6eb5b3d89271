package main

import (
	"context"
	"os/signal"
	"syscall"

	"mlengine/internal/api"
	"mlengine/internal/intelligence"
	"mlengine/internal/intelligence/memorystore"
	"mlengine/internal/intelligence/refresh"
	"mlengine/internal/intelligence/searchsync"
	"mlengine/internal/intelligence/snapshot"
	"mlengine/pkg/search"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Hydrate the universe and serve the /ml HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		loader, err := snapshot.NewLoader(cfg, log)
		if err != nil {
			return err
		}
		if pg, ok := loader.Source.(*snapshot.PostgresSource); ok {
			defer pg.Close()
		}

		syncer := searchsync.New(search.NewClient(cfg.Search), cfg.Search, log)
		svc := intelligence.New(loader, memorystore.NewStore(), syncer, log)

		// startup hydration: a failure leaves the engine serving empty results
		if _, err := svc.Hydrate(ctx); err != nil {
			log.Error("initial hydration failed", zap.Error(err))
		}

		scheduler := refresh.New(cfg.Refresh, func(ctx context.Context) error {
			_, err := svc.Hydrate(ctx)
			return err
		}, log)
		schedulerDone := scheduler.Start(ctx)

		server := api.NewServer(api.Options{
			Addr:         cfg.Server.Addr,
			ReadTimeout:  cfg.Server.ReadTimeout,
			MatrixSample: cfg.Server.MatrixSample,
		}, svc, log)
		if err := server.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()
		log.Info("shutting down ml engine")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("api server shutdown", zap.Error(err))
		}

		<-schedulerDone
		svc.Wait()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
