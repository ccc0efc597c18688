package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"tibib/internal/database"
	"tibib/internal/logger"
	"tibib/internal/services"
)

// Sweeps settlements stuck in captured and re-attempts their ledger
// writes. Run from cron; the same sweep is also reachable through the
// internal API.
func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	olderThan := flag.Duration("older-than", 10*time.Minute,
		"only reconcile settlements captured at least this long ago")
	flag.Parse()

	if err := run(*olderThan); err != nil {
		logger.Get().Fatalf("Reconcile error: %v", err)
	}
}

func run(olderThan time.Duration) error {
	log := logger.Get()

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	db := dbManager.DB()
	unitService := services.NewUnitService(db)
	settlementService := services.NewSettlementService(db, unitService)

	recovered, err := settlementService.ReconcileCaptured(olderThan)
	if err != nil {
		return err
	}

	log.Infof("Reconciled %d captured settlement(s)", recovered)
	return nil
}
