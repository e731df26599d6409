package routing

import (
	"testing"

	"github.com/passbi/transitmap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomTrip(t *testing.T) {
	m := network(t, []string{"A", "B", "C", "D"},
		busRoute("A", "B", 10),
		busRoute("B", "C", 5),
		busRoute("C", "D", 2),
	)
	solver := NewSolver(m, DefaultBoardingPenalty)
	a, b, c, d := stop(t, m, "A"), stop(t, m, "B"), stop(t, m, "C"), stop(t, m, "D")

	t.Run("Legs are computed independently and kept in order", func(t *testing.T) {
		legs, err := solver.CustomTrip([]*models.Stop{a, c, b}, &DistanceStrategy{})
		require.NoError(t, err)
		require.Len(t, legs, 2)
		assert.Len(t, legs[0], 2)
		assert.Len(t, legs[1], 1)

		flat := Concat(legs)
		require.Len(t, flat, 3)
		assert.Equal(t, "A", flat[0].CameFrom.Code)
		assert.Equal(t, "C", flat[1].ArrivedAt.Code)
		assert.Equal(t, "B", flat[2].ArrivedAt.Code)

		itinerary := BuildItinerary("distance", legs)
		assert.Equal(t, 2, itinerary.Legs)
		require.Len(t, itinerary.Steps, 3)
		assert.Equal(t, 1, itinerary.Steps[1].Leg)
		assert.Equal(t, 2, itinerary.Steps[2].Leg)
		assert.Equal(t, "Stop C", itinerary.Steps[2].FromStopName)
		assert.Equal(t, models.TransportBus, itinerary.Steps[2].Transport)
		assert.Equal(t, 15.0+5.0, itinerary.TotalCost)
	})

	t.Run("Failing leg fails the trip", func(t *testing.T) {
		bc, ok := m.RouteBetween("B", "C")
		require.True(t, ok)
		route := m.Graph().Route(bc)
		route.ToggleActive()
		defer route.ToggleActive()

		_, err := solver.CustomTrip([]*models.Stop{a, b, d}, &DistanceStrategy{})
		assert.ErrorIs(t, err, ErrNoPath)
		assert.Contains(t, err.Error(), "leg 2")
	})

	t.Run("Needs two stops", func(t *testing.T) {
		_, err := solver.CustomTrip([]*models.Stop{a}, &DistanceStrategy{})
		assert.Error(t, err)
	})

	t.Run("Repeated stop gives an empty leg", func(t *testing.T) {
		legs, err := solver.CustomTrip([]*models.Stop{a, a, b}, &DurationStrategy{})
		require.NoError(t, err)
		assert.Empty(t, legs[0])
		assert.Len(t, legs[1], 1)
		assert.Equal(t, 10.0, BuildItinerary("duration", legs).TotalCost)
	})
}
