package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/passbi/transitmap/internal/dataset"
	"github.com/passbi/transitmap/internal/db"
)

func main() {
	datasetPath := flag.String("dataset", "", "Path to a dataset directory or ZIP file (required)")
	dryRun := flag.Bool("dry-run", false, "Parse and validate without writing to the database")

	flag.Parse()

	if *datasetPath == "" {
		fmt.Println("Usage: transitmap-import --dataset=<dir|file.zip> [--dry-run]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if _, err := os.Stat(*datasetPath); os.IsNotExist(err) {
		log.Fatalf("Dataset not found: %s", *datasetPath)
	}

	_ = godotenv.Load()

	log.Println("Starting dataset import...")
	log.Printf("Dataset: %s", *datasetPath)

	startTime := time.Now()

	log.Println("Step 1/3: Parsing dataset...")
	ds, err := dataset.Load(*datasetPath)
	if err != nil {
		log.Fatalf("Failed to parse dataset: %v", err)
	}

	log.Println("Step 2/3: Validating and cleaning...")
	report := ds.Clean()
	skipped := report.InvalidStops + report.DuplicateStops + report.DanglingRoutes + report.DuplicateRoutes
	log.Printf("Dropped %d invalid stops, %d duplicate stops, %d dangling routes, %d duplicate routes",
		report.InvalidStops, report.DuplicateStops, report.DanglingRoutes, report.DuplicateRoutes)
	if report.NegativeFigures > 0 {
		log.Printf("Withdrew %d transports with negative figures", report.NegativeFigures)
	}

	// The network must load before anything is written
	network, err := ds.Build()
	if err != nil {
		log.Fatalf("Dataset does not form a valid network: %v", err)
	}
	log.Printf("Network: %d stops, %d routes", len(network.Stops()), len(network.Routes()))

	if *dryRun {
		log.Println("Step 3/3: Skipping database write (dry run)")
		return
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("Failed to prepare schema: %v", err)
	}

	logID, err := db.CreateImportLog(ctx, pool, *datasetPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	log.Println("Step 3/3: Writing stops and routes to database...")
	if err := runImport(ctx, pool, ds); err != nil {
		if logErr := db.FinishImportLog(ctx, pool, logID, db.ImportFailed, err.Error()); logErr != nil {
			log.Printf("Warning: failed to update import log: %v", logErr)
		}
		db.Close()
		log.Fatalf("Import failed: %v", err)
	}

	message := db.ImportSummary(len(ds.Stops), len(ds.Routes), skipped)
	if err := db.FinishImportLog(ctx, pool, logID, db.ImportSuccess, message); err != nil {
		log.Printf("Warning: failed to update import log: %v", err)
	}

	log.Printf("%s in %s", message, time.Since(startTime))
	log.Println("Import completed successfully!")
}

func runImport(ctx context.Context, pool *pgxpool.Pool, ds *dataset.Dataset) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	return db.SaveDataset(ctx, pool, ds)
}
