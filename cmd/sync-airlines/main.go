package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"slotbook/internal/config"
	"slotbook/internal/database"
	"slotbook/internal/logger"
	"slotbook/internal/repository"
	"slotbook/internal/service"
)

func main() {
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall time limit")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	logger.Get().Info("Starting airline synchronization")

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	repos := repository.NewRepositories(db)
	resolver := service.NewAirlineResolver(repos.Airlines, repos.Flights, nil)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	report, err := resolver.SyncAll(ctx)
	if err != nil {
		logger.Fatal("Airline synchronization failed", "error", err)
	}

	fmt.Printf("Flights checked:   %d\n", report.Total)
	fmt.Printf("Names updated:     %d\n", report.NamesUpdated)
	fmt.Printf("Codes updated:     %d\n", report.CodesUpdated)
	fmt.Printf("Airline not found: %d\n", report.NotFound)

	logger.Get().Info("Airline synchronization completed", "duration", time.Since(start).String())
}
