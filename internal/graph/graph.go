package graph

import (
	"fmt"

	"github.com/passbi/transitmap/internal/models"
)

// Vertex is a handle to a stop stored in a Graph
type Vertex int

// Edge is a handle to a route stored in a Graph
type Edge int

type vertexSlot struct {
	stop     *models.Stop
	incident []Edge
	alive    bool
}

type edgeSlot struct {
	route *models.Route
	ends  [2]Vertex
	alive bool
}

// Graph stores stops as vertices and routes as edges.
// Each route is stored once with a fixed (start, end) pair; adjacency and
// incidence are symmetric. Handles of removed elements become invalid.
// Graph is not safe for concurrent use.
type Graph struct {
	vertices []vertexSlot
	edges    []edgeSlot
	byCode   map[string]Vertex
	pairs    map[[2]Vertex]Edge
	numV     int
	numE     int
}

// New creates an empty graph
func New() *Graph {
	return &Graph{
		byCode: make(map[string]Vertex),
		pairs:  make(map[[2]Vertex]Edge),
	}
}

// InsertVertex adds a stop; its code must not already be present
func (g *Graph) InsertVertex(stop *models.Stop) (Vertex, error) {
	if stop == nil {
		return -1, fmt.Errorf("%w: nil stop", ErrInvalidVertex)
	}
	if _, exists := g.byCode[stop.Code]; exists {
		return -1, fmt.Errorf("%w: %s", ErrDuplicateVertex, stop.Code)
	}

	v := Vertex(len(g.vertices))
	g.vertices = append(g.vertices, vertexSlot{stop: stop, alive: true})
	g.byCode[stop.Code] = v
	g.numV++
	return v, nil
}

// InsertEdge connects u and v with a route. The ordered pair (u, v) must not
// already have an edge; u and v may be equal.
func (g *Graph) InsertEdge(u, v Vertex, route *models.Route) (Edge, error) {
	if err := g.checkVertex(u); err != nil {
		return -1, err
	}
	if err := g.checkVertex(v); err != nil {
		return -1, err
	}
	if route == nil {
		return -1, fmt.Errorf("%w: nil route", ErrInvalidEdge)
	}

	pair := [2]Vertex{u, v}
	if _, exists := g.pairs[pair]; exists {
		return -1, fmt.Errorf("%w: %s -> %s", ErrDuplicateEdge, g.vertices[u].stop.Code, g.vertices[v].stop.Code)
	}

	e := Edge(len(g.edges))
	g.edges = append(g.edges, edgeSlot{route: route, ends: pair, alive: true})
	g.pairs[pair] = e
	g.vertices[u].incident = append(g.vertices[u].incident, e)
	if u != v {
		g.vertices[v].incident = append(g.vertices[v].incident, e)
	}
	g.numE++
	return e, nil
}

// RemoveEdge deletes an edge and returns its route
func (g *Graph) RemoveEdge(e Edge) (*models.Route, error) {
	if err := g.checkEdge(e); err != nil {
		return nil, err
	}

	slot := &g.edges[e]
	u, v := slot.ends[0], slot.ends[1]
	g.vertices[u].incident = without(g.vertices[u].incident, e)
	if u != v {
		g.vertices[v].incident = without(g.vertices[v].incident, e)
	}
	delete(g.pairs, slot.ends)

	route := slot.route
	slot.route = nil
	slot.alive = false
	g.numE--
	return route, nil
}

// RemoveVertex deletes a vertex together with every edge incident to it
func (g *Graph) RemoveVertex(v Vertex) (*models.Stop, error) {
	if err := g.checkVertex(v); err != nil {
		return nil, err
	}

	for _, e := range append([]Edge(nil), g.vertices[v].incident...) {
		if _, err := g.RemoveEdge(e); err != nil {
			return nil, err
		}
	}

	slot := &g.vertices[v]
	stop := slot.stop
	delete(g.byCode, stop.Code)
	slot.stop = nil
	slot.alive = false
	g.numV--
	return stop, nil
}

// ReplaceVertex swaps the stop held by v and returns the previous one.
// The new code must not belong to another vertex.
func (g *Graph) ReplaceVertex(v Vertex, stop *models.Stop) (*models.Stop, error) {
	if err := g.checkVertex(v); err != nil {
		return nil, err
	}
	if stop == nil {
		return nil, fmt.Errorf("%w: nil stop", ErrInvalidVertex)
	}
	if other, exists := g.byCode[stop.Code]; exists && other != v {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateVertex, stop.Code)
	}

	old := g.vertices[v].stop
	delete(g.byCode, old.Code)
	g.byCode[stop.Code] = v
	g.vertices[v].stop = stop
	return old, nil
}

// ReplaceEdge swaps the route held by e and returns the previous one
func (g *Graph) ReplaceEdge(e Edge, route *models.Route) (*models.Route, error) {
	if err := g.checkEdge(e); err != nil {
		return nil, err
	}
	if route == nil {
		return nil, fmt.Errorf("%w: nil route", ErrInvalidEdge)
	}

	old := g.edges[e].route
	g.edges[e].route = route
	return old, nil
}

// Vertices returns every live vertex in insertion order
func (g *Graph) Vertices() []Vertex {
	result := make([]Vertex, 0, g.numV)
	for i := range g.vertices {
		if g.vertices[i].alive {
			result = append(result, Vertex(i))
		}
	}
	return result
}

// Edges returns every live edge in insertion order
func (g *Graph) Edges() []Edge {
	result := make([]Edge, 0, g.numE)
	for i := range g.edges {
		if g.edges[i].alive {
			result = append(result, Edge(i))
		}
	}
	return result
}

// IncidentEdges returns the edges touching v, in insertion order
func (g *Graph) IncidentEdges(v Vertex) ([]Edge, error) {
	if err := g.checkVertex(v); err != nil {
		return nil, err
	}
	return append([]Edge(nil), g.vertices[v].incident...), nil
}

// Degree returns the number of edges incident to v
func (g *Graph) Degree(v Vertex) (int, error) {
	if err := g.checkVertex(v); err != nil {
		return 0, err
	}
	return len(g.vertices[v].incident), nil
}

// Opposite returns the endpoint of e that is not v
func (g *Graph) Opposite(v Vertex, e Edge) (Vertex, error) {
	if err := g.checkVertex(v); err != nil {
		return -1, err
	}
	if err := g.checkEdge(e); err != nil {
		return -1, err
	}

	ends := g.edges[e].ends
	switch v {
	case ends[0]:
		return ends[1], nil
	case ends[1]:
		return ends[0], nil
	default:
		return -1, fmt.Errorf("%w: %s", ErrNotIncident, g.vertices[v].stop.Code)
	}
}

// AreAdjacent reports whether an edge connects u and v in either direction
func (g *Graph) AreAdjacent(u, v Vertex) (bool, error) {
	if err := g.checkVertex(u); err != nil {
		return false, err
	}
	if err := g.checkVertex(v); err != nil {
		return false, err
	}
	_, forward := g.pairs[[2]Vertex{u, v}]
	_, backward := g.pairs[[2]Vertex{v, u}]
	return forward || backward, nil
}

// Endpoints returns the stored (start, end) pair of e
func (g *Graph) Endpoints(e Edge) (Vertex, Vertex, error) {
	if err := g.checkEdge(e); err != nil {
		return -1, -1, err
	}
	ends := g.edges[e].ends
	return ends[0], ends[1], nil
}

// Stop returns the stop held by v, or nil for an invalid handle
func (g *Graph) Stop(v Vertex) *models.Stop {
	if g.checkVertex(v) != nil {
		return nil
	}
	return g.vertices[v].stop
}

// Route returns the route held by e, or nil for an invalid handle
func (g *Graph) Route(e Edge) *models.Route {
	if g.checkEdge(e) != nil {
		return nil
	}
	return g.edges[e].route
}

// VertexByCode returns the vertex holding the stop with the given code
func (g *Graph) VertexByCode(code string) (Vertex, bool) {
	v, ok := g.byCode[code]
	return v, ok
}

// EdgeBetween returns the edge stored for the ordered pair (u, v)
func (g *Graph) EdgeBetween(u, v Vertex) (Edge, bool) {
	e, ok := g.pairs[[2]Vertex{u, v}]
	return e, ok
}

// NumVertices returns the number of live vertices
func (g *Graph) NumVertices() int {
	return g.numV
}

// NumEdges returns the number of live edges
func (g *Graph) NumEdges() int {
	return g.numE
}

func (g *Graph) checkVertex(v Vertex) error {
	if v < 0 || int(v) >= len(g.vertices) || !g.vertices[v].alive {
		return fmt.Errorf("%w: %d", ErrInvalidVertex, v)
	}
	return nil
}

func (g *Graph) checkEdge(e Edge) error {
	if e < 0 || int(e) >= len(g.edges) || !g.edges[e].alive {
		return fmt.Errorf("%w: %d", ErrInvalidEdge, e)
	}
	return nil
}

func without(edges []Edge, e Edge) []Edge {
	for i, candidate := range edges {
		if candidate == e {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}
