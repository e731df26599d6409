package planner

import (
	"fmt"

	"github.com/passbi/transitmap/internal/models"
)

// Stats summarizes the network
type Stats struct {
	Version        uint64         `json:"version"`
	StateKey       string         `json:"state_key"`
	Stops          int            `json:"stops"`
	Routes         int            `json:"routes"`
	IsolatedStops  int            `json:"isolated_stops"`
	ConnectedStops int            `json:"connected_stops"`
	RoutesPerMode  map[string]int `json:"routes_per_transport"`
}

// StopDetail is a stop together with what serves it
type StopDetail struct {
	Stop       models.Stop        `json:"stop"`
	Transports []models.Transport `json:"transports"`
	Adjacent   []models.Stop      `json:"adjacent"`
	Degree     int                `json:"degree"`
}

// Stops returns a copy of every stop, in load order
func (s *Service) Stops() []models.Stop {
	s.mu.Lock()
	defer s.mu.Unlock()

	stops := s.network.Stops()
	result := make([]models.Stop, 0, len(stops))
	for _, stop := range stops {
		result = append(result, *stop)
	}
	return result
}

// Stop returns the detail view of the stop with the given code
func (s *Service) Stop(code string) (*StopDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stop, ok := s.network.StopByCode(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStopNotFound, code)
	}

	adjacent, err := s.network.AdjacentStops(stop)
	if err != nil {
		return nil, err
	}
	v, _ := s.network.VertexOf(stop)
	degree, _ := s.network.Graph().Degree(v)

	detail := &StopDetail{
		Stop:       *stop,
		Transports: s.network.StopTransports(code),
		Adjacent:   make([]models.Stop, 0, len(adjacent)),
		Degree:     degree,
	}
	if detail.Transports == nil {
		detail.Transports = []models.Transport{}
	}
	for _, a := range adjacent {
		detail.Adjacent = append(detail.Adjacent, *a)
	}
	return detail, nil
}

// Routes returns a copy of every route, in load order
func (s *Service) Routes() []*models.Route {
	s.mu.Lock()
	defer s.mu.Unlock()

	routes := s.network.Routes()
	result := make([]*models.Route, 0, len(routes))
	for _, route := range routes {
		result = append(result, route.Clone())
	}
	return result
}

// Route returns a copy of the route joining two stop codes
func (s *Service) Route(startCode, endCode string) (*models.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	route, err := s.route(startCode, endCode)
	if err != nil {
		return nil, err
	}
	return route.Clone(), nil
}

// Reachable lists the stops at most maxHops routes away from the stop code
func (s *Service) Reachable(code string, maxHops int) ([]models.Stop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stop, ok := s.network.StopByCode(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStopNotFound, code)
	}

	stops, err := s.network.ReachableStops(stop, maxHops)
	if err != nil {
		return nil, err
	}

	result := make([]models.Stop, 0, len(stops))
	for _, r := range stops {
		result = append(result, *r)
	}
	s.logger.Debug("reachability computed", "stop", code, "max", maxHops, "found", len(result))
	return result, nil
}

// Centrality returns the n stops with the highest degree. n <= 0 returns all.
func (s *Service) Centrality(n int) []models.CentralityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		return s.network.Centrality()
	}
	return s.network.TopCentral(n)
}

// Stats computes the network summary
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.network.Graph()
	stats := Stats{
		Version:        s.version,
		StateKey:       s.state,
		Stops:          g.NumVertices(),
		Routes:         g.NumEdges(),
		IsolatedStops:  s.network.CountStops(true),
		ConnectedStops: s.network.CountStops(false),
		RoutesPerMode:  make(map[string]int, models.NumTransports),
	}
	for _, t := range models.AllTransports() {
		stats.RoutesPerMode[t.Key()] = s.network.NumEdgesWithTransport(t)
	}
	return stats
}
