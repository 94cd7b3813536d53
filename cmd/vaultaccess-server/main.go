package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/SahiDemon/vaultaccess/server/internal/config"
	"github.com/SahiDemon/vaultaccess/server/internal/db"
	"github.com/SahiDemon/vaultaccess/server/internal/httpapi"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/facecompare"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/imagestore"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/notify"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/service"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store/sqlite"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "vaultaccess-server ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer conn.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn); err != nil {
			logger.Printf("dev seed: %v", err)
		}
	}

	writer := db.NewWorker(conn)
	defer writer.Close()

	// Stores
	eventStore := sqlite.NewEventStore(conn, writer)
	alertStore := sqlite.NewAlertStore(conn, writer)
	faceStore := sqlite.NewFaceStore(conn, writer)
	configStore := sqlite.NewConfigStore(conn, writer)

	images := imagestore.NewDir(cfg.ImageDir, cfg.ImageBaseURL)
	comparer := facecompare.New(cfg.FaceCompareURL, cfg.FaceCompareToken,
		facecompare.WithTimeout(cfg.FaceCompareTimeout))

	// Services
	dispatcher := notify.NewDispatcher()
	alertSvc := service.NewAlertService(alertStore, dispatcher, service.AnomalyRule{
		Threshold: cfg.FailedAttemptThreshold,
		Window:    cfg.FailedAttemptWindow,
		Cooldown:  cfg.AnomalyCooldown,
	}, logger)
	eventSvc := service.NewEventService(eventStore, alertSvc, dispatcher)
	dashboardSvc := service.NewDashboardService(eventStore, alertStore)
	accessControlSvc := service.NewAccessControlService(configStore, alertSvc, dispatcher)
	faceSvc := service.NewFaceService(faceStore, images, comparer, alertSvc, logger)

	sweeper := service.NewPendingSweeper(faceStore, service.SweeperConfig{
		MaxAge:   cfg.FacePendingMaxAge,
		Interval: cfg.SweepInterval,
	}, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:        logger,
		Addr:          cfg.HTTPAddr,
		Dashboard:     dashboardSvc,
		Events:        eventSvc,
		Alerts:        alertSvc,
		AccessControl: accessControlSvc,
		Faces:         faceSvc,
		Dispatcher:    dispatcher,
		ImageDir:      cfg.ImageDir,
	})

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
