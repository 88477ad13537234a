package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mamadbah2/libdesk/internal/auth"
	"github.com/mamadbah2/libdesk/internal/config"
	"github.com/mamadbah2/libdesk/internal/metrics"
	"github.com/mamadbah2/libdesk/internal/scheduler"
	"github.com/mamadbah2/libdesk/internal/server/handlers"
	"github.com/mamadbah2/libdesk/internal/server/router"
	attendancesvc "github.com/mamadbah2/libdesk/internal/service/attendance"
	bookingsvc "github.com/mamadbah2/libdesk/internal/service/booking"
	commandsvc "github.com/mamadbah2/libdesk/internal/service/commands"
	paymentsvc "github.com/mamadbah2/libdesk/internal/service/payments"
	reportingsvc "github.com/mamadbah2/libdesk/internal/service/reporting"
	studentsvc "github.com/mamadbah2/libdesk/internal/service/students"
	whatsappsvc "github.com/mamadbah2/libdesk/internal/service/whatsapp"
	"github.com/mamadbah2/libdesk/internal/store"
	whatsappclient "github.com/mamadbah2/libdesk/pkg/clients/whatsapp"
	"github.com/mamadbah2/libdesk/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc := cfg.Location()
	st := store.New(cfg.LibraryLocation(), cfg.Library.TotalSeats)
	recorder := metrics.New(prometheus.DefaultRegisterer)

	services := handlers.Services{
		Students: studentsvc.NewService(st, studentsvc.OwnerCredentials{
			Mobile:   cfg.Owner.Mobile,
			Password: cfg.Owner.Password,
		}, recorder, logger.Named(baseLogger, "svc.students")),
		Booking:    bookingsvc.NewService(st, recorder, logger.Named(baseLogger, "svc.booking")),
		Payments:   paymentsvc.NewService(st, recorder, loc, logger.Named(baseLogger, "svc.payments")),
		Reporting:  reportingsvc.NewService(st, loc, logger.Named(baseLogger, "svc.reporting")),
		Attendance: attendancesvc.NewService(st, recorder, loc, logger.Named(baseLogger, "svc.attendance")),
	}

	commandDispatcher := commandsvc.NewService(services.Booking, services.Payments, services.Reporting, logger.Named(baseLogger, "svc.commands"))

	var whatsClient whatsappclient.Client
	if cfg.WhatsApp.Enabled() {
		whatsClient = whatsappclient.NewClient(cfg.WhatsApp)
		baseLogger.Info("whatsapp client enabled")
	} else {
		baseLogger.Warn("whatsapp credentials missing, outbound messages will only be logged")
	}
	messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, cfg.Owner.Mobile, whatsClient, commandDispatcher, logger.Named(baseLogger, "svc.whatsapp"))

	issuer := auth.NewIssuer(cfg.Auth.Issuer, cfg.Auth.SigningKey, cfg.Auth.TokenTTL)
	engine := router.New(router.Handlers{
		Auth:    handlers.NewAuthHandler(services.Students, issuer, logger.Named(baseLogger, "handlers.auth")),
		Admin:   handlers.NewAdminHandler(services, logger.Named(baseLogger, "handlers.admin")),
		Student: handlers.NewStudentHandler(services, logger.Named(baseLogger, "handlers.student")),
		Webhook: handlers.NewWebhookHandler(messagingSvc, logger.Named(baseLogger, "handlers.whatsapp")),
	}, issuer, prometheus.DefaultGatherer, logger.Named(baseLogger, "router"))

	if cfg.Reminders.Enabled {
		sched := scheduler.NewScheduler(cfg.Reminders, loc, services.Reporting, messagingSvc, logger.Named(baseLogger, "scheduler"))
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("timezone", loc.String()),
			zap.Int("total_seats", cfg.Library.TotalSeats))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
