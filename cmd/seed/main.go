package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"gowheels/internal/config"
	"gowheels/internal/logger"
	"gowheels/internal/seed"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogFile, cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect database")
	}
	if err := seed.Run(context.Background(), db); err != nil {
		logrus.WithError(err).Fatal("seeding failed")
	}
	logrus.Info("seeding complete")
}
