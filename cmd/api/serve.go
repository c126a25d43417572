package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/showcase/service/internal/auth"
	"github.com/showcase/service/internal/config"
	"github.com/showcase/service/internal/file"
	"github.com/showcase/service/internal/filedex"
	appMiddleware "github.com/showcase/service/internal/middleware"
	"github.com/showcase/service/internal/project"
	"github.com/showcase/service/internal/telemetry"

	_ "github.com/showcase/service/docs/swagger"
)

const (
	serviceName            = "showcase"
	gracefulShutdownPeriod = 30 * time.Second
)

// handlers is everything the router mounts.
type handlers struct {
	project *project.Handler
	file    *file.Handler
	auth    *auth.Handler
	// blobs serves local-storage blobs; nil for remote storage.
	blobs http.Handler
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	cfg := a.cfg

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	meterShutdown, err := telemetry.InitMeterProvider(ctx, serviceName)
	if err != nil {
		return err
	}
	metrics, err := telemetry.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	blobStore, blobHandler, err := a.openStorage(ctx)
	if err != nil {
		return err
	}

	// Wire dependencies: repository → service → handler
	projectSvc := project.NewService(project.NewRepository(a.store))
	fileSvc := file.NewService(filedex.New(), blobStore, projectSvc, metrics)
	n, err := fileSvc.Rehydrate(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("files", n).Msg("file index rebuilt")

	authSvc, err := auth.NewService(auth.NewRepository(a.store), cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: newRouter(cfg, handlers{
			project: project.NewHandler(projectSvc, fileSvc, metrics),
			file:    file.NewHandler(fileSvc, cfg.MaxUploadBytes()),
			auth:    auth.NewHandler(authSvc),
			blobs:   blobHandler,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		// Uploads can be large; body reads get a generous limit.
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("server listening")
		log.Info().Msgf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Warn().Msg("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownPeriod)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("forced shutdown")
		}
		if err := meterShutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shut down meter provider")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

func newRouter(cfg *config.Config, h handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", appMiddleware.VisitorHeader},
		ExposedHeaders: []string{"Location"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI, available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	if h.blobs != nil {
		r.Handle(blobPath+"/*", h.blobs)
	}

	requireAuth := appMiddleware.RequireAuth(cfg.JWTSecret)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(otelhttp.NewMiddleware(serviceName, otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		})))
		r.Use(appMiddleware.OptionalAuth(cfg.JWTSecret))

		r.Post("/auth/login", h.auth.Login)

		r.Get("/tags", h.project.Tags)
		r.Get("/favorites", h.project.Favorites)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.project.List)
			r.With(requireAuth).Post("/", h.project.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.project.Get)
				r.Get("/versions", h.project.Versions)
				r.Post("/favorite", h.project.Favorite)
				r.Delete("/favorite", h.project.Unfavorite)

				r.Group(func(r chi.Router) {
					r.Use(requireAuth)
					r.Patch("/", h.project.Update)
					r.Delete("/", h.project.Delete)
					r.Post("/versions", h.project.AddVersion)
					r.Delete("/files/{fileID}", h.project.DetachFile)
				})
			})
		})

		r.Route("/files", func(r chi.Router) {
			r.With(requireAuth).Post("/", h.file.Upload)
			r.With(requireAuth).Get("/", h.file.List)
			r.Get("/{identifier}", h.file.Download)
			r.Get("/{identifier}/meta", h.file.Meta)
		})
	})

	return r
}
