package routing

import (
	"fmt"

	"github.com/passbi/transitmap/internal/models"
)

// Trip runs the solver from start and reconstructs the path to end
func (s *Solver) Trip(start, end *models.Stop, transports []models.Transport, strategy Strategy) ([]models.RouteInfo, error) {
	result, err := s.BellmanFord(start, transports, strategy)
	if err != nil {
		return nil, err
	}
	return result.PathTo(end)
}

// CustomTrip computes one leg per consecutive pair of stops, each with every
// transport allowed. Legs are optimized independently.
func (s *Solver) CustomTrip(stops []*models.Stop, strategy Strategy) ([][]models.RouteInfo, error) {
	if len(stops) < 2 {
		return nil, fmt.Errorf("custom trip needs at least 2 stops, got %d", len(stops))
	}

	legs := make([][]models.RouteInfo, 0, len(stops)-1)
	for i := 0; i < len(stops)-1; i++ {
		leg, err := s.Trip(stops[i], stops[i+1], models.AllTransports(), strategy)
		if err != nil {
			return nil, fmt.Errorf("leg %d (%s to %s): %w", i+1, stops[i], stops[i+1], err)
		}
		legs = append(legs, leg)
	}
	return legs, nil
}

// Concat flattens legs into one hop list, preserving order
func Concat(legs [][]models.RouteInfo) []models.RouteInfo {
	var result []models.RouteInfo
	for _, leg := range legs {
		result = append(result, leg...)
	}
	return result
}

// BuildItinerary converts legs into their presentation form.
// The total is the sum of every leg's final cost.
func BuildItinerary(criterion string, legs [][]models.RouteInfo) *models.Itinerary {
	itinerary := &models.Itinerary{
		Criterion: criterion,
		Legs:      len(legs),
		Steps:     []models.Step{},
	}

	for i, leg := range legs {
		for _, hop := range leg {
			itinerary.Steps = append(itinerary.Steps, models.Step{
				FromStop:     hop.CameFrom.Code,
				FromStopName: hop.CameFrom.Name,
				ToStop:       hop.ArrivedAt.Code,
				ToStopName:   hop.ArrivedAt.Name,
				Transport:    hop.TransportTaken,
				Cost:         hop.CostToArrive,
				Criterion:    hop.Criterion,
				Leg:          i + 1,
			})
		}
		if len(leg) > 0 {
			itinerary.TotalCost += leg[len(leg)-1].CostToArrive
		}
	}

	return itinerary
}
