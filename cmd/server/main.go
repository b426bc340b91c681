package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"gowheels/internal/assistant"
	"gowheels/internal/config"
	"gowheels/internal/controllers"
	"gowheels/internal/logger"
	"gowheels/internal/middleware"
	"gowheels/internal/notify"
	"gowheels/internal/payment"
	"gowheels/internal/realtime"
	"gowheels/internal/routes"
	"gowheels/internal/store"
)

func main() {
	cfg := config.Load()

	// Initialize structured logging to file
	logger.Setup(cfg.LogFile, cfg.LogLevel)
	middleware.Configure(cfg.JWTSecret, cfg.JWTTTL)

	db, err := config.InitDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect database")
	}
	reporting, err := config.Reporting(db, config.DriverName)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open reporting connection")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub()
	go hub.Run(ctx)

	h := controllers.NewHandler(
		store.New(db),
		store.NewReports(reporting),
		assistant.New(cfg.AssistantDelay),
		payment.NewGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.GatewayDelay),
		hub,
		notify.NewWhatsApp(cfg.NotifyDelay),
		notify.NewEmail(cfg.NotifyDelay),
	)
	// cancelled only when draining background work times out
	workCtx, abortWork := context.WithCancel(context.Background())
	defer abortWork()
	h.WithContext(workCtx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.EnableCORS(routes.SetupRouter(h), cfg.CORSOrigins...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("Server running at %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
	if err := h.Drain(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("background work did not finish, aborting")
		abortWork()
		h.Wait()
	}
	if err := reporting.Close(); err != nil {
		logrus.WithError(err).Warn("closing reporting connection")
	}
}
