package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"building-backend/internal/auth"
	"building-backend/internal/config"
	"building-backend/internal/database"
	"building-backend/internal/logging"
	"building-backend/internal/notify"
	"building-backend/internal/router"

	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("loading config")
	}

	log := logging.New(cfg.Log, os.Stdout)
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("opening database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("migrating database")
	}

	if _, err := auth.SeedSuperAdmin(db, cfg.SuperAdmin, log); err != nil {
		log.WithError(err).Fatal("seeding super admin")
	}

	var notifier notify.Publisher = notify.Nop{}
	if cfg.MQTT.BrokerURL != "" {
		pub, err := notify.ConnectMQTT(cfg.MQTT, log)
		if err != nil {
			log.WithError(err).Warn("mqtt unavailable, notifications disabled")
		} else {
			defer pub.Close()
			notifier = pub
		}
	}

	app := router.New(router.Deps{
		Config:   cfg,
		DB:       db,
		Issuer:   auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Notifier: notifier,
		Log:      log,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit

		log.WithField("signal", sig.String()).Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.WithError(err).Error("shutdown")
		}
	}()

	log.WithField("port", cfg.HTTPPort).Info("server starting")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.WithError(err).Fatal("server stopped")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped")
}
