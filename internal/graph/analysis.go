package graph

import (
	"fmt"
	"sort"

	"github.com/passbi/transitmap/internal/models"
)

// Centrality returns the degree of every stop, highest first.
// Degree is the raw incident edge count: inactive routes and disabled
// transports still count. Equal degrees are ordered by stop name.
func (m *TransitMap) Centrality() []models.CentralityEntry {
	vertices := m.g.Vertices()
	entries := make([]models.CentralityEntry, 0, len(vertices))
	for _, v := range vertices {
		stop := m.g.Stop(v)
		degree, _ := m.g.Degree(v)
		entries = append(entries, models.CentralityEntry{
			Code:   stop.Code,
			Name:   stop.Name,
			Degree: degree,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Degree != entries[j].Degree {
			return entries[i].Degree > entries[j].Degree
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// CentralityByName returns the degree of every stop keyed by display name.
// Names are unique within a TransitMap so no entry collapses.
func (m *TransitMap) CentralityByName() map[string]int {
	result := make(map[string]int, m.g.NumVertices())
	for _, entry := range m.Centrality() {
		result[entry.Name] = entry.Degree
	}
	return result
}

// TopCentral returns at most n stops with the highest degree
func (m *TransitMap) TopCentral(n int) []models.CentralityEntry {
	entries := m.Centrality()
	if n < 0 {
		n = 0
	}
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

// ReachableWithin returns the vertices whose hop distance from root lies in
// [1, maxDistance], in breadth-first order. Only topology is considered:
// inactive routes and transport availability are ignored.
func (m *TransitMap) ReachableWithin(root Vertex, maxDistance int) ([]Vertex, error) {
	if maxDistance < 0 {
		return nil, fmt.Errorf("max distance must be non-negative, got %d", maxDistance)
	}
	if err := m.g.checkVertex(root); err != nil {
		return nil, err
	}

	distance := map[Vertex]int{root: 0}
	queue := []Vertex{root}
	var result []Vertex

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		current := distance[v]
		if current > 0 {
			result = append(result, v)
		}
		if current == maxDistance {
			continue
		}

		neighbors, err := m.AdjacentVertices(v)
		if err != nil {
			return nil, err
		}
		for _, w := range neighbors {
			if _, visited := distance[w]; visited {
				continue
			}
			distance[w] = current + 1
			queue = append(queue, w)
		}
	}

	return result, nil
}

// ReachableStops is ReachableWithin resolved to stops
func (m *TransitMap) ReachableStops(root *models.Stop, maxDistance int) ([]*models.Stop, error) {
	v, ok := m.VertexOf(root)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStop, root)
	}
	vertices, err := m.ReachableWithin(v, maxDistance)
	if err != nil {
		return nil, err
	}
	result := make([]*models.Stop, 0, len(vertices))
	for _, w := range vertices {
		result = append(result, m.g.Stop(w))
	}
	return result, nil
}
