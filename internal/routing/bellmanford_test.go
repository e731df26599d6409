package routing

import (
	"math"
	"testing"

	"github.com/passbi/transitmap/internal/graph"
	"github.com/passbi/transitmap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func network(t *testing.T, codes []string, routes ...*models.Route) *graph.TransitMap {
	t.Helper()
	var stops []*models.Stop
	for _, code := range codes {
		stops = append(stops, models.NewStop(code, "Stop "+code, 0, 0))
	}
	m, err := graph.Load(stops, routes, nil)
	require.NoError(t, err)
	return m
}

func busRoute(start, end string, distance float64) *models.Route {
	r := models.NewRoute(start, end)
	r.SetTransport(models.TransportBus, models.Float(distance), models.Int(int(distance)), models.Float(distance/10))
	return r
}

func stop(t *testing.T, m *graph.TransitMap, code string) *models.Stop {
	t.Helper()
	s, ok := m.StopByCode(code)
	require.True(t, ok)
	return s
}

func TestBellmanFordSingleEdge(t *testing.T) {
	const w = 7.0
	r := models.NewRoute("A", "B")
	for _, tr := range models.AllTransports() {
		r.SetTransport(tr, models.Float(w), models.Int(int(w)), models.Float(w))
	}
	m := network(t, []string{"A", "B"}, r)
	solver := NewSolver(m, DefaultBoardingPenalty)

	result, err := solver.BellmanFord(stop(t, m, "A"), models.AllTransports(), &DistanceStrategy{})
	require.NoError(t, err)
	assert.Equal(t, w+5, result.Cost("B"))
	assert.Equal(t, 0.0, result.Cost("A"))

	origin, ok := result.Info("A")
	require.True(t, ok)
	assert.Nil(t, origin.CameFrom)
	assert.Equal(t, "distance", origin.Criterion)

	t.Run("Inactive route is never used", func(t *testing.T) {
		r.ToggleActive()
		defer r.ToggleActive()

		result, err := solver.BellmanFord(stop(t, m, "A"), models.AllTransports(), &DistanceStrategy{})
		require.NoError(t, err)
		assert.True(t, math.IsInf(result.Cost("B"), 1))
		assert.False(t, result.Reachable("B"))
		info, _ := result.Info("B")
		assert.Nil(t, info.CameFrom)
	})

	t.Run("Works in the reverse direction", func(t *testing.T) {
		result, err := solver.BellmanFord(stop(t, m, "B"), models.AllTransports(), &DistanceStrategy{})
		require.NoError(t, err)
		assert.Equal(t, w+5, result.Cost("A"))
	})
}

func TestBellmanFordChain(t *testing.T) {
	ab := busRoute("A", "B", 10)
	bc := busRoute("B", "C", 5)
	m := network(t, []string{"A", "B", "C"}, ab, bc)
	solver := NewSolver(m, DefaultBoardingPenalty)
	bus := []models.Transport{models.TransportBus}

	result, err := solver.BellmanFord(stop(t, m, "A"), bus, &DistanceStrategy{})
	require.NoError(t, err)
	assert.Equal(t, 25.0, result.Cost("C"), "10+5 then 5+5")

	path, err := result.PathTo(stop(t, m, "C"))
	require.NoError(t, err)
	require.Len(t, path, 2)
	assert.Equal(t, "A", path[0].CameFrom.Code)
	assert.Equal(t, "B", path[0].ArrivedAt.Code)
	assert.Equal(t, "B", path[1].CameFrom.Code)
	assert.Equal(t, "C", path[1].ArrivedAt.Code)
	assert.Equal(t, models.TransportBus, path[1].TransportTaken)
	assert.Same(t, bc, path[1].RouteTaken)

	// Display costs have one penalty removed per hop
	assert.Equal(t, 10.0, path[0].CostToArrive)
	assert.Equal(t, 15.0, path[1].CostToArrive)

	t.Run("Disabling the bus on A-B cuts C off", func(t *testing.T) {
		snap := ab.Save(models.TransportBus)
		ab.DisableTransport(models.TransportBus)
		defer ab.Restore(snap)

		result, err := solver.BellmanFord(stop(t, m, "A"), bus, &DistanceStrategy{})
		require.NoError(t, err)
		assert.False(t, result.Reachable("C"))

		_, err = result.PathTo(stop(t, m, "C"))
		assert.ErrorIs(t, err, ErrNoPath)
	})

	t.Run("Toggle round trip gives identical results", func(t *testing.T) {
		before, err := solver.BellmanFord(stop(t, m, "A"), bus, &DistanceStrategy{})
		require.NoError(t, err)

		ab.ToggleActive()
		ab.ToggleActive()

		after, err := solver.BellmanFord(stop(t, m, "A"), bus, &DistanceStrategy{})
		require.NoError(t, err)
		assert.Equal(t, before.All(), after.All())
	})

	t.Run("Path to origin is empty", func(t *testing.T) {
		path, err := result.PathTo(stop(t, m, "A"))
		require.NoError(t, err)
		assert.Empty(t, path)
	})
}

func TestBellmanFordModeSelection(t *testing.T) {
	r := models.NewRoute("A", "B")
	r.SetTransport(models.TransportBus, models.Float(10), models.Int(5), models.Float(4))
	r.SetTransport(models.TransportWalk, models.Float(3), models.Int(40), models.Float(0))
	m := network(t, []string{"A", "B"}, r)
	solver := NewSolver(m, DefaultBoardingPenalty)
	a, b := stop(t, m, "A"), stop(t, m, "B")

	tests := []struct {
		name       string
		strategy   Strategy
		transports []models.Transport
		expected   models.Transport
		cost       float64
	}{
		{"Shortest walks", &DistanceStrategy{}, models.AllTransports(), models.TransportWalk, 3},
		{"Fastest rides", &DurationStrategy{}, models.AllTransports(), models.TransportBus, 5},
		{"Greenest walks", &SustainabilityStrategy{}, models.AllTransports(), models.TransportWalk, 0},
		{"Filter forces bus", &DistanceStrategy{}, []models.Transport{models.TransportBus}, models.TransportBus, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := solver.Trip(a, b, tt.transports, tt.strategy)
			require.NoError(t, err)
			require.Len(t, path, 1)
			assert.Equal(t, tt.expected, path[0].TransportTaken)
			assert.Equal(t, tt.cost, path[0].CostToArrive)
			assert.Equal(t, tt.strategy.Name(), path[0].Criterion)
		})
	}

	t.Run("Transport not offered leaves B unreachable", func(t *testing.T) {
		_, err := solver.Trip(a, b, []models.Transport{models.TransportTrain}, &DistanceStrategy{})
		assert.ErrorIs(t, err, ErrNoPath)
	})
}

func TestBoardingPenaltyFavoursFewerHops(t *testing.T) {
	m := network(t, []string{"A", "B", "C"},
		busRoute("A", "B", 1),
		busRoute("B", "C", 1),
		busRoute("A", "C", 5),
	)
	a, c := stop(t, m, "A"), stop(t, m, "C")

	path, err := NewSolver(m, DefaultBoardingPenalty).Trip(a, c, models.AllTransports(), &DistanceStrategy{})
	require.NoError(t, err)
	assert.Len(t, path, 1, "12 through B loses to 10 direct")

	path, err = NewSolver(m, 0).Trip(a, c, models.AllTransports(), &DistanceStrategy{})
	require.NoError(t, err)
	assert.Len(t, path, 2, "without penalty the two short hops win")
	assert.Equal(t, 2.0, path[1].CostToArrive)
}

func TestBellmanFordZeroWeights(t *testing.T) {
	free := func(start, end string) *models.Route {
		r := models.NewRoute(start, end)
		r.SetTransport(models.TransportWalk, models.Float(0), models.Int(0), models.Float(0))
		return r
	}
	m := network(t, []string{"A", "B", "C"}, free("A", "B"), free("B", "C"), free("C", "A"))

	for _, penalty := range []float64{0, DefaultBoardingPenalty} {
		result, err := NewSolver(m, penalty).BellmanFord(stop(t, m, "A"), models.AllTransports(), &SustainabilityStrategy{})
		require.NoError(t, err)
		assert.Equal(t, penalty, result.Cost("B"))
		assert.Equal(t, penalty, result.Cost("C"))
	}
}

func TestBellmanFordNegativeCycle(t *testing.T) {
	r := busRoute("A", "B", -20)
	m := network(t, []string{"A", "B", "C"}, r, busRoute("B", "C", 1))

	_, err := NewSolver(m, DefaultBoardingPenalty).BellmanFord(stop(t, m, "A"), models.AllTransports(), &DistanceStrategy{})
	assert.ErrorIs(t, err, ErrNegativeCycle)
}

func TestBellmanFordValidation(t *testing.T) {
	m := network(t, []string{"A", "B"}, busRoute("A", "B", 1))
	solver := NewSolver(m, DefaultBoardingPenalty)
	a := stop(t, m, "A")

	_, err := solver.BellmanFord(a, nil, &DistanceStrategy{})
	assert.ErrorIs(t, err, ErrNoTransports)

	_, err = solver.BellmanFord(a, []models.Transport{models.Transport(9)}, &DistanceStrategy{})
	assert.Error(t, err)

	_, err = solver.BellmanFord(a, models.AllTransports(), nil)
	assert.ErrorIs(t, err, ErrUnknownCriterion)

	_, err = solver.BellmanFord(models.NewStop("Z", "Z", 0, 0), models.AllTransports(), &DistanceStrategy{})
	assert.ErrorIs(t, err, graph.ErrUnknownStop)
}

func TestBellmanFordCoversEveryVertex(t *testing.T) {
	m := network(t, []string{"A", "B", "C", "D"}, busRoute("A", "B", 2))

	result, err := NewSolver(m, DefaultBoardingPenalty).BellmanFord(stop(t, m, "A"), models.AllTransports(), &DurationStrategy{})
	require.NoError(t, err)

	all := result.All()
	assert.Len(t, all, 4)
	for _, code := range []string{"C", "D"} {
		info := all[code]
		assert.True(t, math.IsInf(info.CostToArrive, 1))
		assert.Nil(t, info.CameFrom)
		assert.Equal(t, code, info.ArrivedAt.Code)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("ROUTING_BOARDING_PENALTY", "2.5")
	assert.Equal(t, 2.5, LoadConfigFromEnv().BoardingPenalty)

	t.Setenv("ROUTING_BOARDING_PENALTY", "-1")
	assert.Equal(t, DefaultBoardingPenalty, LoadConfigFromEnv().BoardingPenalty)

	t.Setenv("ROUTING_BOARDING_PENALTY", "abc")
	assert.Equal(t, DefaultBoardingPenalty, LoadConfigFromEnv().BoardingPenalty)
}
