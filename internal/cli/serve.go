package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"cogscreen/internal/analysis"
	"cogscreen/internal/attention"
	"cogscreen/internal/config"
	"cogscreen/internal/live"
	logger "cogscreen/internal/logging"
	"cogscreen/internal/models"
	"cogscreen/internal/report"
	"cogscreen/internal/repository"
	"cogscreen/internal/router"
	"cogscreen/internal/services"
	"cogscreen/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), projectRoot)
		},
	}
}

func runServe(ctx context.Context, root string) error {
	// The logger needs the logging section before the watched config exists.
	boot, err := config.Load(root)
	if err != nil {
		return err
	}
	log, err := logger.Init(root, boot.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	conf, err := config.Init(root, log)
	if err != nil {
		log.Error("Failed to load configuration", zap.Error(err))
		return err
	}

	catalog, err := models.LoadCatalog(filepath.Join(root, conf.Server.CatalogFile))
	if err != nil {
		log.Error("Failed to load catalog", zap.Error(err))
		return err
	}
	reports, err := report.NewRenderer(language.English)
	if err != nil {
		return err
	}

	metrics := telemetry.New()
	hub := live.NewHub(log)
	store := repository.NewStore(repository.StoreOptions{
		Settings: conf.StoreSettings(),
		Observer: func(subjectID string) attention.Observer {
			return attention.Observers(hub.Observer(subjectID), metrics.Observer())
		},
		Log: log,
	})
	metrics.Gauge("subjects", "Subjects held in memory.", func() float64 { return float64(store.Len()) })
	metrics.Gauge("live_clients", "Connected websocket clients.", func() float64 { return float64(hub.Clients()) })

	config.OnChange(func(c *config.Config) {
		store.SetSettings(c.StoreSettings())
		log.Info("Test settings updated for new subjects")
	})

	scheduler := services.NewScheduler(log, store, conf.Sessions.SweepInterval, func() time.Duration {
		return config.Get().Sessions.IdleTimeout
	})

	if conf.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.Setup(router.Deps{
		Log:       log,
		Config:    conf,
		Store:     store,
		Hub:       hub,
		Metrics:   metrics,
		Catalog:   catalog,
		Reports:   reports,
		Analyzer:  analysis.New(conf.Analysis.Settings(), nil, nil, log),
		AssetsDir: filepath.Join(root, conf.Server.AssetsDir),
	})

	srv := &http.Server{
		Addr:              conf.Server.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return scheduler.Run(gctx) })
	g.Go(func() error {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()
		log.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	stopped := store.Clear()
	log.Info("Server stopped", zap.Int("subjects_dropped", stopped))
	return err
}
