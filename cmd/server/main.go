package main

import (
	"filedropbox/config"
	"filedropbox/internal/app"
	"filedropbox/internal/db"
	"filedropbox/internal/logger"
)

func main() {
	logger.Initialize()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	database, err := db.New(db.Options{Path: cfg.DBPath})
	if err != nil {
		logger.Fatalf("Failed to open completion ledger: %v", err)
	}

	application, err := app.New(cfg, database)
	if err != nil {
		logger.Fatalf("Failed to build application: %v", err)
	}

	if err := application.Listen(); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}
