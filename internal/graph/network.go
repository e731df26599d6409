package graph

import (
	"fmt"
	"log"
	"time"

	"github.com/passbi/transitmap/internal/models"
)

// Layout holds display coordinates keyed by stop code
type Layout map[string][2]int

// TransitMap is the network view of a Graph: stops with unique codes and
// names, routes between them, and the lookups the planner needs.
// Like Graph, it is not safe for concurrent use.
type TransitMap struct {
	g *Graph
}

// NewTransitMap creates an empty network
func NewTransitMap() *TransitMap {
	return &TransitMap{g: New()}
}

// Load builds a network from already parsed stops and routes plus a layout
// overlay. Any structural conflict aborts the load.
func Load(stops []*models.Stop, routes []*models.Route, layout Layout) (*TransitMap, error) {
	startTime := time.Now()
	m := NewTransitMap()

	for _, stop := range stops {
		if xy, ok := layout[stop.Code]; ok {
			stop.SetLayout(xy[0], xy[1])
		}
		if _, err := m.AddStop(stop); err != nil {
			return nil, fmt.Errorf("failed to load stop %s: %w", stop.Code, err)
		}
	}

	for _, route := range routes {
		if _, err := m.AddRoute(route); err != nil {
			return nil, fmt.Errorf("failed to load route %s: %w", route, err)
		}
	}

	log.Printf("Network loaded in %v (%d stops, %d routes)", time.Since(startTime), m.g.NumVertices(), m.g.NumEdges())
	return m, nil
}

// Graph exposes the underlying store
func (m *TransitMap) Graph() *Graph {
	return m.g
}

// AddStop inserts a stop whose code and name are both unused
func (m *TransitMap) AddStop(stop *models.Stop) (Vertex, error) {
	if stop == nil {
		return -1, fmt.Errorf("%w: nil stop", ErrInvalidVertex)
	}
	if existing, ok := m.StopByName(stop.Name); ok {
		return -1, fmt.Errorf("%w: %q used by %s", ErrDuplicateStopName, stop.Name, existing.Code)
	}
	return m.g.InsertVertex(stop)
}

// AddRoute inserts a route between the stops named by its codes
func (m *TransitMap) AddRoute(route *models.Route) (Edge, error) {
	if route == nil {
		return -1, fmt.Errorf("%w: nil route", ErrInvalidEdge)
	}
	u, ok := m.g.VertexByCode(route.StartStopCode)
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrUnknownStop, route.StartStopCode)
	}
	v, ok := m.g.VertexByCode(route.EndStopCode)
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrUnknownStop, route.EndStopCode)
	}
	return m.g.InsertEdge(u, v, route)
}

// Stops returns every stop in insertion order
func (m *TransitMap) Stops() []*models.Stop {
	vertices := m.g.Vertices()
	result := make([]*models.Stop, 0, len(vertices))
	for _, v := range vertices {
		result = append(result, m.g.Stop(v))
	}
	return result
}

// Routes returns every route in insertion order, active or not
func (m *TransitMap) Routes() []*models.Route {
	edges := m.g.Edges()
	result := make([]*models.Route, 0, len(edges))
	for _, e := range edges {
		result = append(result, m.g.Route(e))
	}
	return result
}

// StopByCode returns the stop with the given code
func (m *TransitMap) StopByCode(code string) (*models.Stop, bool) {
	v, ok := m.g.VertexByCode(code)
	if !ok {
		return nil, false
	}
	return m.g.Stop(v), true
}

// StopByName returns the stop with the given display name (linear scan)
func (m *TransitMap) StopByName(name string) (*models.Stop, bool) {
	for _, v := range m.g.Vertices() {
		if stop := m.g.Stop(v); stop.Name == name {
			return stop, true
		}
	}
	return nil, false
}

// VertexOf returns the vertex holding stop
func (m *TransitMap) VertexOf(stop *models.Stop) (Vertex, bool) {
	if stop == nil {
		return -1, false
	}
	v, ok := m.g.VertexByCode(stop.Code)
	if !ok || m.g.Stop(v) != stop {
		return -1, false
	}
	return v, true
}

// RouteBetween finds the edge joining two stop codes, in either stored direction
func (m *TransitMap) RouteBetween(startCode, endCode string) (Edge, bool) {
	u, ok := m.g.VertexByCode(startCode)
	if !ok {
		return -1, false
	}
	v, ok := m.g.VertexByCode(endCode)
	if !ok {
		return -1, false
	}
	if e, ok := m.g.EdgeBetween(u, v); ok {
		return e, true
	}
	return m.g.EdgeBetween(v, u)
}

// AdjacentVertices returns the opposite endpoint of every edge incident to v
func (m *TransitMap) AdjacentVertices(v Vertex) ([]Vertex, error) {
	edges, err := m.g.IncidentEdges(v)
	if err != nil {
		return nil, err
	}

	result := make([]Vertex, 0, len(edges))
	for _, e := range edges {
		w, err := m.g.Opposite(v, e)
		if err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, nil
}

// AdjacentStops is AdjacentVertices resolved to stops
func (m *TransitMap) AdjacentStops(stop *models.Stop) ([]*models.Stop, error) {
	v, ok := m.VertexOf(stop)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStop, stop)
	}
	vertices, err := m.AdjacentVertices(v)
	if err != nil {
		return nil, err
	}
	result := make([]*models.Stop, 0, len(vertices))
	for _, w := range vertices {
		result = append(result, m.g.Stop(w))
	}
	return result, nil
}

// StopTransports returns the transports offered by any route touching the stop
func (m *TransitMap) StopTransports(code string) []models.Transport {
	v, ok := m.g.VertexByCode(code)
	if !ok {
		return nil
	}

	var offered [models.NumTransports]bool
	edges, _ := m.g.IncidentEdges(v)
	for _, e := range edges {
		for _, t := range m.g.Route(e).Transports() {
			offered[t] = true
		}
	}

	var result []models.Transport
	for i, ok := range offered {
		if ok {
			result = append(result, models.Transport(i))
		}
	}
	return result
}

// NumEdgesWithTransport counts routes offering t, active or not
func (m *TransitMap) NumEdgesWithTransport(t models.Transport) int {
	count := 0
	for _, e := range m.g.Edges() {
		if m.g.Route(e).Offers(t) {
			count++
		}
	}
	return count
}

// CountStops counts isolated stops (no incident routes) when isolated is
// true, connected ones otherwise
func (m *TransitMap) CountStops(isolated bool) int {
	count := 0
	for _, v := range m.g.Vertices() {
		degree, _ := m.g.Degree(v)
		if (degree == 0) == isolated {
			count++
		}
	}
	return count
}
