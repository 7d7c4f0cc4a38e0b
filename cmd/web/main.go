package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prescripto/patient-portal/internal/backend"
	"github.com/prescripto/patient-portal/internal/config"
	"github.com/prescripto/patient-portal/internal/handler"
	authHandler "github.com/prescripto/patient-portal/internal/handler/auth"
	bookingHandler "github.com/prescripto/patient-portal/internal/handler/booking"
	doctorHandler "github.com/prescripto/patient-portal/internal/handler/doctor"
	profileHandler "github.com/prescripto/patient-portal/internal/handler/profile"
	siteHandler "github.com/prescripto/patient-portal/internal/handler/site"
	"github.com/prescripto/patient-portal/internal/middleware"
	"github.com/prescripto/patient-portal/internal/router"
	"github.com/prescripto/patient-portal/internal/session"
	"github.com/prescripto/patient-portal/internal/store"
	"github.com/prescripto/patient-portal/pkg/circuitbreaker"
	"github.com/prescripto/patient-portal/pkg/logger"
	"github.com/prescripto/patient-portal/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Setup(logger.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})

	m := metrics.New("patient_portal")

	// Backend API client; the portal's only upstream.
	api := backend.NewClient(backend.Config{
		BaseURL:    cfg.Backend.URL,
		HTTPClient: &http.Client{Timeout: cfg.Backend.Timeout},
		Breaker: circuitbreaker.New(circuitbreaker.Settings{
			Name:        "booking-api",
			MaxFailures: cfg.Backend.BreakerMaxFailures,
			Cooldown:    cfg.Backend.BreakerCooldown,
		}),
		Metrics: m,
	})

	sessions := session.NewManager(cfg.Session.SecureCookies)
	doctors := store.NewDoctorStore(api, cfg.Cache.DoctorsTTL)

	// Warm the doctor cache; a cold start is fine, pages retry on demand.
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), cfg.Backend.Timeout)
	if _, err := doctors.Refresh(warmCtx); err != nil {
		log.Warn().Err(err).Msg("initial doctor list fetch failed")
	}
	cancelWarm()

	authMiddleware := middleware.NewAuthMiddleware(sessions, api)
	render := handler.NewRenderer(sessions)

	r := router.NewRouter(
		cfg,
		m,
		authMiddleware,
		siteHandler.NewHandler(render, doctors),
		authHandler.NewHandler(render, sessions, api, cfg.Google.ClientID),
		doctorHandler.NewHandler(render, doctors),
		bookingHandler.NewHandler(render, sessions, doctors, api),
		profileHandler.NewHandler(render, sessions, api),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("backend", cfg.Backend.URL).Msg("patient portal listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
