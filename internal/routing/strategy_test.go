package routing

import (
	"testing"

	"github.com/passbi/transitmap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRoute() *models.Route {
	r := models.NewRoute("A", "B")
	r.SetTransport(models.TransportBus, models.Float(12.5), models.Int(20), models.Float(3.2))
	r.SetTransport(models.TransportWalk, models.Float(11), models.Int(140), models.Float(0))
	return r
}

func TestDistanceStrategy(t *testing.T) {
	strategy := &DistanceStrategy{}

	t.Run("Name", func(t *testing.T) {
		assert.Equal(t, "distance", strategy.Name())
	})

	t.Run("Reads the distance figure", func(t *testing.T) {
		w, ok := strategy.Weight(sampleRoute(), models.TransportBus)
		require.True(t, ok)
		assert.Equal(t, 12.5, w)
	})

	t.Run("Absent transport stays absent", func(t *testing.T) {
		_, ok := strategy.Weight(sampleRoute(), models.TransportTrain)
		assert.False(t, ok)
	})
}

func TestDurationStrategy(t *testing.T) {
	strategy := &DurationStrategy{}

	t.Run("Name", func(t *testing.T) {
		assert.Equal(t, "duration", strategy.Name())
	})

	t.Run("Converts minutes to float", func(t *testing.T) {
		w, ok := strategy.Weight(sampleRoute(), models.TransportWalk)
		require.True(t, ok)
		assert.Equal(t, 140.0, w)
	})

	t.Run("Absent transport stays absent", func(t *testing.T) {
		_, ok := strategy.Weight(sampleRoute(), models.TransportBoat)
		assert.False(t, ok)
	})
}

func TestSustainabilityStrategy(t *testing.T) {
	strategy := &SustainabilityStrategy{}

	t.Run("Name", func(t *testing.T) {
		assert.Equal(t, "sustainability", strategy.Name())
	})

	t.Run("Zero cost is present, not absent", func(t *testing.T) {
		w, ok := strategy.Weight(sampleRoute(), models.TransportWalk)
		require.True(t, ok)
		assert.Equal(t, 0.0, w)
	})

	t.Run("Absent transport stays absent", func(t *testing.T) {
		_, ok := strategy.Weight(sampleRoute(), models.TransportBicycle)
		assert.False(t, ok)
	})
}

func TestStrategiesMatchRoutePattern(t *testing.T) {
	r := sampleRoute()
	r.Durations[models.TransportBus] = nil

	for _, strategy := range GetAllStrategies() {
		for _, tr := range models.AllTransports() {
			_, ok := strategy.Weight(r, tr)
			var present bool
			switch strategy.Name() {
			case CriterionDistance:
				present = r.Distances[tr] != nil
			case CriterionDuration:
				present = r.Durations[tr] != nil
			case CriterionSustainability:
				present = r.Costs[tr] != nil
			}
			assert.Equal(t, present, ok, "%s/%s", strategy.Name(), tr)
		}
	}
}

func TestGetStrategy(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"distance", "distance"},
		{"duration", "duration"},
		{"sustainability", "sustainability"},
		{"Duration", "duration"},
		{" DISTANCE ", "distance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy, err := GetStrategy(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, strategy.Name())
		})
	}

	t.Run("Unknown criterion", func(t *testing.T) {
		_, err := GetStrategy("fastest")
		assert.ErrorIs(t, err, ErrUnknownCriterion)
	})
}

func TestGetAllStrategies(t *testing.T) {
	strategies := GetAllStrategies()
	assert.Equal(t, 3, len(strategies))

	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.Name()
	}

	assert.Contains(t, names, "distance")
	assert.Contains(t, names, "duration")
	assert.Contains(t, names, "sustainability")
}
