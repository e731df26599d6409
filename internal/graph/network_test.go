package graph

import (
	"testing"

	"github.com/passbi/transitmap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildMap creates the network
//
//	A - B - C - D    E (isolated)
//	    |       |
//	    F ------+
func buildMap(t *testing.T) *TransitMap {
	t.Helper()

	var stops []*models.Stop
	for _, code := range []string{"A", "B", "C", "D", "E", "F"} {
		stops = append(stops, models.NewStop(code, "Stop "+code, 38.5, -9.1))
	}

	bus := func(start, end string) *models.Route {
		r := models.NewRoute(start, end)
		r.SetTransport(models.TransportBus, models.Float(1), models.Int(1), models.Float(1))
		return r
	}
	walk := models.NewRoute("B", "F")
	walk.SetTransport(models.TransportWalk, models.Float(0.4), models.Int(6), models.Float(0))

	routes := []*models.Route{bus("A", "B"), bus("B", "C"), bus("C", "D"), walk, bus("F", "D")}
	layout := Layout{"A": {10, 20}, "F": {30, 40}}

	m, err := Load(stops, routes, layout)
	require.NoError(t, err)
	return m
}

func TestLoad(t *testing.T) {
	m := buildMap(t)

	assert.Equal(t, 6, m.Graph().NumVertices())
	assert.Equal(t, 5, m.Graph().NumEdges())
	assert.Len(t, m.Stops(), 6)
	assert.Len(t, m.Routes(), 5)

	a, ok := m.StopByCode("A")
	require.True(t, ok)
	assert.Equal(t, 10, a.LayoutX)
	assert.Equal(t, 20, a.LayoutY)

	t.Run("Duplicate name is rejected", func(t *testing.T) {
		stops := []*models.Stop{models.NewStop("X", "Same", 0, 0), models.NewStop("Y", "Same", 0, 0)}
		_, err := Load(stops, nil, nil)
		assert.ErrorIs(t, err, ErrDuplicateStopName)
	})

	t.Run("Route to unknown stop is rejected", func(t *testing.T) {
		stops := []*models.Stop{models.NewStop("X", "X", 0, 0)}
		_, err := Load(stops, []*models.Route{models.NewRoute("X", "Z")}, nil)
		assert.ErrorIs(t, err, ErrUnknownStop)
	})

	t.Run("Duplicate route is rejected", func(t *testing.T) {
		stops := []*models.Stop{models.NewStop("X", "X", 0, 0), models.NewStop("Y", "Y", 0, 0)}
		routes := []*models.Route{models.NewRoute("X", "Y"), models.NewRoute("X", "Y")}
		_, err := Load(stops, routes, nil)
		assert.ErrorIs(t, err, ErrDuplicateEdge)
	})
}

func TestLookups(t *testing.T) {
	m := buildMap(t)

	stop, ok := m.StopByName("Stop C")
	require.True(t, ok)
	assert.Equal(t, "C", stop.Code)

	_, ok = m.StopByName("Nowhere")
	assert.False(t, ok)
	_, ok = m.StopByCode("Z")
	assert.False(t, ok)

	e, ok := m.RouteBetween("D", "C")
	require.True(t, ok, "lookup works against the stored direction")
	assert.Equal(t, "C", m.Graph().Route(e).StartStopCode)

	_, ok = m.RouteBetween("A", "D")
	assert.False(t, ok)

	foreign := models.NewStop("A", "Stop A", 0, 0)
	_, ok = m.VertexOf(foreign)
	assert.False(t, ok, "a different stop value with the same code is not in the map")
}

func TestAdjacency(t *testing.T) {
	m := buildMap(t)
	b, _ := m.StopByCode("B")

	adjacent, err := m.AdjacentStops(b)
	require.NoError(t, err)

	var codes []string
	for _, s := range adjacent {
		codes = append(codes, s.Code)
	}
	assert.Equal(t, []string{"A", "C", "F"}, codes)
}

func TestStatistics(t *testing.T) {
	m := buildMap(t)

	assert.Equal(t, 4, m.NumEdgesWithTransport(models.TransportBus))
	assert.Equal(t, 1, m.NumEdgesWithTransport(models.TransportWalk))
	assert.Equal(t, 0, m.NumEdgesWithTransport(models.TransportTrain))

	assert.Equal(t, 1, m.CountStops(true))
	assert.Equal(t, 5, m.CountStops(false))

	assert.Equal(t, []models.Transport{models.TransportBus, models.TransportWalk}, m.StopTransports("B"))
	assert.Equal(t, []models.Transport{models.TransportBus}, m.StopTransports("A"))
	assert.Empty(t, m.StopTransports("E"))
	assert.Empty(t, m.StopTransports("missing"))
}
