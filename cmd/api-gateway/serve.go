package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"dam-inspection-system/internal/application"
	"dam-inspection-system/internal/config"
	"dam-inspection-system/internal/infrastructure/alerts"
	"dam-inspection-system/internal/infrastructure/audit"
	"dam-inspection-system/internal/infrastructure/observability"
	"dam-inspection-system/internal/infrastructure/repositories"
	"dam-inspection-system/internal/infrastructure/storage"
	"dam-inspection-system/internal/infrastructure/timeseries"
	"dam-inspection-system/internal/logger"
	"dam-inspection-system/internal/ports"
	"dam-inspection-system/internal/ports/api"
	"dam-inspection-system/internal/ports/ws"
)

func newServeCmd(configPath *string) *cobra.Command {
	var addr, logLevel string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}

			if err := logger.Init(logger.Config{Level: cfg.Log.Level, Debug: cfg.Log.Debug}); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger.GetLogger())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP server address (overrides server.addr)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level (overrides log.level)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewPromMetrics(registry)

	// Журнал аудиту
	var (
		stores      audit.MultiRecorder
		auditReader ports.AuditReader
		recorder    ports.AuditRecorder
	)
	if cfg.Postgres.Enabled {
		db, err := sql.Open("postgres", cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := repositories.InitializeSchema(ctx, db); err != nil {
			log.Warn().Err(err).Msg("error initializing database schema")
		}
		repo := repositories.NewPostgresAuditRepository(db)
		stores = append(stores, repo)
		auditReader = repo
	}
	if cfg.Badger.Enabled {
		journal, err := audit.OpenBadgerJournal(audit.JournalConfig{
			Path:       cfg.Badger.Path,
			InMemory:   cfg.Badger.InMemory,
			SyncWrites: true,
		})
		if err != nil {
			return err
		}
		defer journal.Close()

		stores = append(stores, journal)
		if auditReader == nil {
			auditReader = journal
		}
	}
	if len(stores) > 0 {
		queue := audit.NewAsyncRecorder(stores, cfg.Audit.BufferSize, metrics, log)
		g.Go(func() error { return queue.Run(ctx) })
		recorder = queue
	}

	// Сповіщення
	hub := ws.NewAlertHub(log)
	publishers := ports.MultiPublisher{hub}
	if cfg.NATS.Enabled {
		nc, err := alerts.Connect(cfg.NATS.URL, "dam-inspection-api", log)
		if err != nil {
			return err
		}
		defer nc.Drain()
		publishers = append(publishers, alerts.NewNATSPublisher(nc, cfg.NATS.SubjectPrefix, log))
	}

	// Спостерігачі стану стійкості
	observers := []ports.GaugeObserver{metrics}
	if cfg.Influx.Enabled {
		writer := timeseries.NewGaugeWriter(timeseries.InfluxConfig{
			URL:    cfg.Influx.URL,
			Token:  cfg.Influx.Token,
			Org:    cfg.Influx.Org,
			Bucket: cfg.Influx.Bucket,
			Site:   cfg.Influx.Site,
		}, log)
		defer writer.Close()
		g.Go(func() error { return writer.Run(ctx) })
		observers = append(observers, writer)
	}

	var archive ports.DetectionArchive
	if cfg.Minio.Enabled {
		a, err := storage.NewDetectionArchive(ctx, storage.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		})
		if err != nil {
			return err
		}
		archive = a
	}

	// Ядро
	fleet := application.NewFleetRegistry(log)
	for _, u := range cfg.Fleet.Units {
		unit, err := u.RoboticUnit()
		if err != nil {
			return err
		}
		if err := fleet.Register(unit); err != nil {
			return err
		}
	}

	missions := application.NewMissionLog()
	gauge := application.NewStabilityGauge(cfg.Gauge.InitialWaterLevel, publishers, metrics, log, observers...)
	dispatcher := application.NewMissionDispatcher(fleet, missions, metrics, cfg.Dispatch.MinBatteryLevel, log)
	tracker := application.NewMissionTracker(fleet, missions, recorder, metrics, log)
	integrator := application.NewSafetyFeedbackIntegrator(gauge, recorder, publishers, metrics, log)
	results := application.NewInspectionResultService(tracker, integrator, archive, cfg.Dispatch.ConfidenceThreshold, log)

	fleetHandler := api.NewFleetHandler(fleet, tracker)
	missionHandler := api.NewMissionHandler(dispatcher, tracker, results)
	stabilityHandler := api.NewStabilityHandler(gauge, integrator, auditReader)
	sensorWSHandler := ws.NewSensorHandler(gauge, log)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle(cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				// WebSocket з'єднання довгоживучі, тайм-аут на них не діє
				r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
				fleetHandler.RegisterRoutes(r)
				missionHandler.RegisterRoutes(r)
				stabilityHandler.RegisterRoutes(r)
			})

			r.Get("/ws/sensors", sensorWSHandler.HandleConnection)
			r.Get("/ws/alerts", hub.HandleConnection)
		})
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.Addr).Int("units", len(cfg.Fleet.Units)).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server gracefully stopped")
	return nil
}
