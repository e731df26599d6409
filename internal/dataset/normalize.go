package dataset

import (
	"log"

	"github.com/passbi/transitmap/internal/models"
)

// Report counts what Clean removed
type Report struct {
	InvalidStops    int `json:"invalid_stops"`
	DuplicateStops  int `json:"duplicate_stops"`
	DanglingRoutes  int `json:"dangling_routes"`
	DuplicateRoutes int `json:"duplicate_routes"`
	// NegativeFigures counts transports withdrawn from a route because a
	// distance, duration or cost was negative
	NegativeFigures int `json:"negative_figures"`
}

// Clean drops what would make the network load fail: stops with invalid
// coordinates, repeated codes or names, routes to unknown stops and repeated
// ordered stop pairs. The first occurrence always wins. Transports with a
// negative figure are withdrawn since routing requires non-negative weights.
func (d *Dataset) Clean() Report {
	var report Report

	valid := ValidateAndCleanStops(d.Stops)
	report.InvalidStops = len(d.Stops) - len(valid)

	unique := DeduplicateStops(valid)
	report.DuplicateStops = len(valid) - len(unique)
	d.Stops = unique

	known := make(map[string]bool, len(unique))
	for _, stop := range unique {
		known[stop.Code] = true
	}

	attached := DropDanglingRoutes(d.Routes, known)
	report.DanglingRoutes = len(d.Routes) - len(attached)

	routes := DeduplicateRoutes(attached)
	report.DuplicateRoutes = len(attached) - len(routes)
	report.NegativeFigures = DropNegativeFigures(routes)
	d.Routes = routes

	return report
}

// ValidateAndCleanStops removes stops with invalid coordinates
func ValidateAndCleanStops(stops []*models.Stop) []*models.Stop {
	cleaned := []*models.Stop{}

	for _, stop := range stops {
		// Check for valid coordinates
		if stop.Latitude < -90 || stop.Latitude > 90 {
			log.Printf("Warning: invalid latitude for stop %s: %f", stop.Code, stop.Latitude)
			continue
		}
		if stop.Longitude < -180 || stop.Longitude > 180 {
			log.Printf("Warning: invalid longitude for stop %s: %f", stop.Code, stop.Longitude)
			continue
		}
		if stop.Latitude == 0 && stop.Longitude == 0 {
			log.Printf("Warning: stop %s has null island coordinates, skipping", stop.Code)
			continue
		}

		cleaned = append(cleaned, stop)
	}

	if len(cleaned) < len(stops) {
		log.Printf("Cleaned stops: removed %d invalid stops", len(stops)-len(cleaned))
	}

	return cleaned
}

// DeduplicateStops keeps the first stop for each code and for each name
func DeduplicateStops(stops []*models.Stop) []*models.Stop {
	deduplicated := []*models.Stop{}
	codes := make(map[string]bool)
	names := make(map[string]bool)

	for _, stop := range stops {
		if codes[stop.Code] {
			log.Printf("Deduplicating stop %s (code already used)", stop.Code)
			continue
		}
		if names[stop.Name] {
			log.Printf("Deduplicating stop %s (name %q already used)", stop.Code, stop.Name)
			continue
		}
		codes[stop.Code] = true
		names[stop.Name] = true
		deduplicated = append(deduplicated, stop)
	}

	if len(deduplicated) < len(stops) {
		log.Printf("Deduplicated %d stops to %d (removed %d duplicates)",
			len(stops), len(deduplicated), len(stops)-len(deduplicated))
	}

	return deduplicated
}

// DropDanglingRoutes removes routes whose endpoints are not both known
func DropDanglingRoutes(routes []*models.Route, known map[string]bool) []*models.Route {
	kept := []*models.Route{}
	for _, route := range routes {
		if !known[route.StartStopCode] || !known[route.EndStopCode] {
			log.Printf("Warning: route %s references an unknown stop, skipping", route)
			continue
		}
		kept = append(kept, route)
	}
	return kept
}

// DropNegativeFigures withdraws every transport that has a negative distance,
// duration or cost and returns how many were withdrawn
func DropNegativeFigures(routes []*models.Route) int {
	dropped := 0
	for _, route := range routes {
		for _, t := range route.Transports() {
			if negative(route.Distances[t]) || negative(route.Durations[t]) || negative(route.Costs[t]) {
				log.Printf("Warning: route %s has a negative %s figure, withdrawing it", route, t.Key())
				route.DisableTransport(t)
				dropped++
			}
		}
	}
	return dropped
}

func negative[T int | float64](v *T) bool {
	return v != nil && *v < 0
}

// DeduplicateRoutes keeps the first route for each ordered stop pair.
// A-B and B-A are distinct pairs.
func DeduplicateRoutes(routes []*models.Route) []*models.Route {
	kept := []*models.Route{}
	seen := make(map[[2]string]bool)
	for _, route := range routes {
		key := [2]string{route.StartStopCode, route.EndStopCode}
		if seen[key] {
			log.Printf("Deduplicating route %s", route)
			continue
		}
		seen[key] = true
		kept = append(kept, route)
	}
	return kept
}
