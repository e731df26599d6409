package routing

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/passbi/transitmap/internal/graph"
	"github.com/passbi/transitmap/internal/models"
)

// DefaultBoardingPenalty is added to every relaxed edge and removed again,
// once per hop, from presented costs.
const DefaultBoardingPenalty = 5.0

var (
	// ErrNoTransports is returned when routing is requested with no permitted transport
	ErrNoTransports = errors.New("no transport selected")

	// ErrNegativeCycle means the network data holds a negative-cost cycle
	ErrNegativeCycle = errors.New("graph contains a negative cycle")

	// ErrNoPath is returned when the destination was not reached
	ErrNoPath = errors.New("no path found")
)

// Config holds solver configuration
type Config struct {
	BoardingPenalty float64
}

// LoadConfigFromEnv loads solver configuration from environment variables
func LoadConfigFromEnv() *Config {
	penalty, err := strconv.ParseFloat(getEnv("ROUTING_BOARDING_PENALTY", "5"), 64)
	if err != nil || penalty < 0 || math.IsInf(penalty, 0) || math.IsNaN(penalty) {
		penalty = DefaultBoardingPenalty
	}
	return &Config{BoardingPenalty: penalty}
}

// Solver runs the modified Bellman-Ford search over a TransitMap
type Solver struct {
	network *graph.TransitMap
	penalty float64
}

// NewSolver creates a solver with the given boarding penalty
func NewSolver(network *graph.TransitMap, penalty float64) *Solver {
	return &Solver{network: network, penalty: penalty}
}

// Penalty returns the boarding penalty applied per hop
func (s *Solver) Penalty() float64 {
	return s.penalty
}

// BellmanFord computes least-cost paths from start to every stop using only
// active routes and the permitted transports.
//
// Edges are visited in insertion order and transports in catalog order; a
// relaxation only happens on strict improvement, so among equal-cost
// alternatives the first one found wins.
func (s *Solver) BellmanFord(start *models.Stop, transports []models.Transport, strategy Strategy) (*Result, error) {
	if strategy == nil {
		return nil, fmt.Errorf("%w: no strategy", ErrUnknownCriterion)
	}
	if _, ok := s.network.VertexOf(start); !ok {
		return nil, fmt.Errorf("start %s: %w", start, graph.ErrUnknownStop)
	}
	permitted, err := normalizeTransports(transports)
	if err != nil {
		return nil, err
	}

	g := s.network.Graph()
	criterion := strategy.Name()
	vertices := g.Vertices()

	result := &Result{
		Origin:    start,
		Criterion: criterion,
		Penalty:   s.penalty,
		infos:     make(map[string]models.RouteInfo, len(vertices)),
	}
	for _, v := range vertices {
		stop := g.Stop(v)
		result.infos[stop.Code] = models.RouteInfo{
			ArrivedAt:    stop,
			CostToArrive: math.Inf(1),
			Criterion:    criterion,
		}
	}
	result.infos[start.Code] = models.RouteInfo{ArrivedAt: start, Criterion: criterion}

	edges := g.Edges()
	for pass := 0; pass < len(vertices)-1; pass++ {
		changed := false
		for _, e := range edges {
			if s.relaxEdge(result, e, permitted, strategy, true) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	for _, e := range edges {
		if s.relaxEdge(result, e, permitted, strategy, false) {
			return nil, fmt.Errorf("%w: route %s still relaxes", ErrNegativeCycle, g.Route(e))
		}
	}

	return result, nil
}

// relaxEdge relaxes both directions of an active edge for every permitted
// transport. With apply false it only reports whether a relaxation would
// improve a cost.
func (s *Solver) relaxEdge(result *Result, e graph.Edge, transports []models.Transport, strategy Strategy, apply bool) bool {
	g := s.network.Graph()
	route := g.Route(e)
	if !route.Active {
		return false
	}
	uv, vv, _ := g.Endpoints(e)
	u, v := g.Stop(uv), g.Stop(vv)

	relaxed := false
	for _, t := range transports {
		w, ok := strategy.Weight(route, t)
		if !ok {
			continue
		}
		w += s.penalty

		if result.relax(u, v, route, t, w, apply) {
			relaxed = true
			if !apply {
				return true
			}
		}
		if result.relax(v, u, route, t, w, apply) {
			relaxed = true
			if !apply {
				return true
			}
		}
	}
	return relaxed
}

// normalizeTransports validates the permitted set and puts it in catalog order
func normalizeTransports(transports []models.Transport) ([]models.Transport, error) {
	var seen [models.NumTransports]bool
	count := 0
	for _, t := range transports {
		if !t.Valid() {
			return nil, fmt.Errorf("invalid transport %d", uint8(t))
		}
		if !seen[t] {
			seen[t] = true
			count++
		}
	}
	if count == 0 {
		return nil, ErrNoTransports
	}

	result := make([]models.Transport, 0, count)
	for i, ok := range seen {
		if ok {
			result = append(result, models.Transport(i))
		}
	}
	return result, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
