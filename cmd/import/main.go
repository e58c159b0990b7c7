package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"slotbook/internal/config"
	"slotbook/internal/database"
	"slotbook/internal/logger"
	"slotbook/internal/repository"
	"slotbook/internal/search"
	"slotbook/internal/service"
)

var (
	file     = flag.String("file", "", "CSV timetable to import")
	clearAll = flag.Bool("clear", false, "Remove the existing timetable and bookings first")
	reindex  = flag.Bool("reindex", false, "Push the whole timetable to the search index afterwards")
)

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: import -file timetable.csv [-clear] [-reindex]")
		os.Exit(2)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	var index service.FlightIndex
	if cfg.Elasticsearch.URL != "" {
		es, err := search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			logger.Get().Warn("Search index unavailable, importing without it", "error", err)
		} else {
			index = es
		}
	}

	// импорт не рассылает уведомлений
	services := service.NewServices(service.StoresFrom(repository.NewRepositories(db)), nil, index, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if *clearAll {
		n, err := services.Flights.ClearAll(ctx)
		if err != nil {
			logger.Fatal("Failed to clear timetable", "error", err)
		}
		logger.Get().Info("Timetable cleared", "flights", n)
	}

	f, err := os.Open(*file)
	if err != nil {
		logger.Fatal("Failed to open file", "file", *file, "error", err)
	}
	defer f.Close()

	report, err := services.Flights.Import(ctx, f)
	if err != nil {
		logger.Fatal("Import failed", "error", err)
	}

	if *reindex {
		n, err := services.Flights.Reindex(ctx)
		if err != nil {
			logger.Get().Error("Reindex failed", "indexed", n, "error", err)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
}
