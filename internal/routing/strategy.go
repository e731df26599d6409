package routing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/passbi/transitmap/internal/models"
)

// Criterion labels accepted by GetStrategy
const (
	CriterionDistance       = "distance"
	CriterionDuration       = "duration"
	CriterionSustainability = "sustainability"
)

// ErrUnknownCriterion is returned for a label that names no strategy
var ErrUnknownCriterion = errors.New("unknown criterion")

// Strategy defines which figure of a route the solver minimizes.
// Weight must report absent exactly when the route's own figure is absent.
type Strategy interface {
	Name() string
	Weight(route *models.Route, t models.Transport) (float64, bool)
}

// DistanceStrategy minimizes travelled distance
type DistanceStrategy struct{}

func (s *DistanceStrategy) Name() string {
	return CriterionDistance
}

func (s *DistanceStrategy) Weight(route *models.Route, t models.Transport) (float64, bool) {
	d := route.Distances[t]
	if d == nil {
		return 0, false
	}
	return *d, true
}

// DurationStrategy minimizes travel time; durations are whole minutes
type DurationStrategy struct{}

func (s *DurationStrategy) Name() string {
	return CriterionDuration
}

func (s *DurationStrategy) Weight(route *models.Route, t models.Transport) (float64, bool) {
	d := route.Durations[t]
	if d == nil {
		return 0, false
	}
	return float64(*d), true
}

// SustainabilityStrategy minimizes the environmental cost figure
type SustainabilityStrategy struct{}

func (s *SustainabilityStrategy) Name() string {
	return CriterionSustainability
}

func (s *SustainabilityStrategy) Weight(route *models.Route, t models.Transport) (float64, bool) {
	c := route.Costs[t]
	if c == nil {
		return 0, false
	}
	return *c, true
}

// GetStrategy returns a strategy by criterion label (case-insensitive)
func GetStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case CriterionDistance:
		return &DistanceStrategy{}, nil
	case CriterionDuration:
		return &DurationStrategy{}, nil
	case CriterionSustainability:
		return &SustainabilityStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCriterion, name)
	}
}

// GetAllStrategies returns all available strategies
func GetAllStrategies() []Strategy {
	return []Strategy{
		&DistanceStrategy{},
		&DurationStrategy{},
		&SustainabilityStrategy{},
	}
}
