package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/passbi/transitmap/internal/dataset"
	"github.com/passbi/transitmap/internal/db"
	"github.com/passbi/transitmap/internal/graph"
	"github.com/passbi/transitmap/internal/models"
	"github.com/passbi/transitmap/internal/planner"
	"github.com/passbi/transitmap/internal/routing"
)

type report struct {
	Stats      planner.Stats            `json:"stats"`
	Centrality []models.CentralityEntry `json:"centrality"`
}

func main() {
	datasetPath := flag.String("dataset", "", "Read a dataset directory or ZIP file instead of the database")
	top := flag.Int("top", 5, "Number of most connected stops to list (0 lists every stop)")
	asJSON := flag.Bool("json", false, "Print the report as JSON")

	flag.Parse()

	_ = godotenv.Load()

	network, err := loadNetwork(*datasetPath)
	if err != nil {
		log.Fatalf("❌ Failed to load network: %v", err)
	}

	service := planner.New(network, routing.LoadConfigFromEnv().BoardingPenalty, nil)
	r := report{
		Stats:      service.Stats(),
		Centrality: service.Centrality(*top),
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			log.Fatalf("❌ Failed to encode report: %v", err)
		}
		return
	}

	fmt.Println("📊 Network statistics:")
	fmt.Printf("   Stops: %d (%d connected, %d isolated)\n", r.Stats.Stops, r.Stats.ConnectedStops, r.Stats.IsolatedStops)
	fmt.Printf("   Routes: %d\n", r.Stats.Routes)
	for _, t := range models.AllTransports() {
		fmt.Printf("   %s %-8s %d\n", t.Emoji(), t.Label(), r.Stats.RoutesPerMode[t.Key()])
	}

	if len(r.Centrality) > 0 {
		fmt.Println()
		fmt.Println("🚉 Most connected stops:")
		for i, entry := range r.Centrality {
			fmt.Printf("   %2d. %s (%s): %d\n", i+1, entry.Name, entry.Code, entry.Degree)
		}
	}
}

func loadNetwork(path string) (*graph.TransitMap, error) {
	if path != "" {
		ds, err := dataset.Load(path)
		if err != nil {
			return nil, err
		}
		ds.Clean()
		return ds.Build()
	}

	pool, err := db.GetDB()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ds, err := db.LoadDataset(ctx, pool)
	if err != nil {
		return nil, err
	}
	return ds.Build()
}
