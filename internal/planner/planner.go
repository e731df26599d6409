package planner

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/passbi/transitmap/internal/graph"
	"github.com/passbi/transitmap/internal/models"
	"github.com/passbi/transitmap/internal/routing"
)

var (
	// ErrStopNotFound is returned when a stop name or code resolves to nothing
	ErrStopNotFound = errors.New("stop not found")

	// ErrRouteNotFound is returned when no route joins the two stop codes
	ErrRouteNotFound = errors.New("route not found")

	// ErrNoBicycle is returned when a bicycle override targets a route without bicycle
	ErrNoBicycle = errors.New("route does not offer bicycle")

	// ErrNothingToUndo is returned when no bicycle override is outstanding for the route
	ErrNothingToUndo = errors.New("nothing to undo")
)

type transportKey struct {
	route     *models.Route
	transport models.Transport
}

// Service owns one network and serializes every query and edit against it.
// Each edit bumps Version and recomputes StateKey.
type Service struct {
	mu       sync.Mutex
	network  *graph.TransitMap
	solver   *routing.Solver
	logger   *slog.Logger
	version  uint64
	state    string
	disabled map[transportKey]models.TransportSnapshot
	bicycle  map[*models.Route]models.TransportSnapshot
}

// New creates a planner over network. A nil logger discards audit records.
func New(network *graph.TransitMap, penalty float64, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Service{
		network:  network,
		solver:   routing.NewSolver(network, penalty),
		logger:   logger.With("component", "planner"),
		disabled: make(map[transportKey]models.TransportSnapshot),
		bicycle:  make(map[*models.Route]models.TransportSnapshot),
	}
	s.state = s.fingerprint()
	return s
}

// Version returns the number of edits applied by this process so far
func (s *Service) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// StateKey identifies the routable state of the network: stops, routes, their
// active flags and per-transport figures, and the boarding penalty. Two
// planners, in one process or not, share a key only when every query gives
// the same answer on both.
func (s *Service) StateKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// edited records an applied edit. Callers hold s.mu.
func (s *Service) edited() {
	s.version++
	s.state = s.fingerprint()
}

func (s *Service) fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "penalty=%g\n", s.solver.Penalty())
	for _, stop := range s.network.Stops() {
		fmt.Fprintf(h, "stop|%s|%s\n", stop.Code, stop.Name)
	}
	for _, route := range s.network.Routes() {
		fmt.Fprintf(h, "route|%s|%s|%t", route.StartStopCode, route.EndStopCode, route.Active)
		for _, t := range models.AllTransports() {
			fmt.Fprintf(h, "|%s:%s:%s:%s", t.Key(),
				optional(route.Distances[t]), optional(route.Durations[t]), optional(route.Costs[t]))
		}
		fmt.Fprintln(h)
	}
	return hex.EncodeToString(h.Sum(nil)[:12])
}

func optional[T int | float64](v *T) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

// Penalty returns the boarding penalty the solver adds per hop
func (s *Service) Penalty() float64 {
	return s.solver.Penalty()
}

// CalculateRoute finds the best path between two stops given by name.
// The criterion is checked first, then both stops, then the transport set.
func (s *Service) CalculateRoute(startName, endName, criterion string, transports []models.Transport) (*models.Itinerary, error) {
	strategy, err := routing.GetStrategy(criterion)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start, err := s.stopByName(startName)
	if err != nil {
		return nil, err
	}
	end, err := s.stopByName(endName)
	if err != nil {
		return nil, err
	}
	if len(transports) == 0 {
		return nil, routing.ErrNoTransports
	}

	path, err := s.solver.Trip(start, end, transports, strategy)
	if err != nil {
		s.logger.Warn("route calculation failed",
			"from", start.Code, "to", end.Code, "criterion", strategy.Name(), "error", err)
		return nil, err
	}

	itinerary := routing.BuildItinerary(strategy.Name(), [][]models.RouteInfo{path})
	s.logger.Info("route calculated",
		"from", start.Code, "to", end.Code, "criterion", strategy.Name(),
		"transports", len(transports), "hops", len(path), "cost", itinerary.TotalCost)
	return itinerary, nil
}

// CustomTrip routes through an ordered list of stop names, one leg per pair
func (s *Service) CustomTrip(names []string, criterion string) (*models.Itinerary, error) {
	strategy, err := routing.GetStrategy(criterion)
	if err != nil {
		return nil, err
	}
	if len(names) < 2 {
		return nil, fmt.Errorf("custom trip needs at least 2 stops, got %d", len(names))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stops := make([]*models.Stop, 0, len(names))
	for _, name := range names {
		stop, err := s.stopByName(name)
		if err != nil {
			return nil, err
		}
		stops = append(stops, stop)
	}

	legs, err := s.solver.CustomTrip(stops, strategy)
	if err != nil {
		s.logger.Warn("custom trip failed", "stops", len(stops), "criterion", strategy.Name(), "error", err)
		return nil, err
	}

	itinerary := routing.BuildItinerary(strategy.Name(), legs)
	s.logger.Info("custom trip calculated",
		"stops", len(stops), "criterion", strategy.Name(), "hops", len(itinerary.Steps), "cost", itinerary.TotalCost)
	return itinerary, nil
}

// ToggleRoute flips the active flag of the route joining two stop codes and
// returns the new state
func (s *Service) ToggleRoute(startCode, endCode string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	route, err := s.route(startCode, endCode)
	if err != nil {
		return false, err
	}

	route.ToggleActive()
	s.edited()
	s.logger.Info("route toggled", "route", route.String(), "active", route.Active, "version", s.version)
	return route.Active, nil
}

// ToggleTransport disables a transport on a route, or restores it if it was
// disabled through this call before. It returns true when the transport is
// left disabled.
func (s *Service) ToggleTransport(startCode, endCode string, t models.Transport) (bool, error) {
	if !t.Valid() {
		return false, fmt.Errorf("unknown transport %d", t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	route, err := s.route(startCode, endCode)
	if err != nil {
		return false, err
	}

	key := transportKey{route: route, transport: t}
	snapshot, pending := s.disabled[key]
	if pending {
		route.Restore(snapshot)
		delete(s.disabled, key)
	} else {
		s.disabled[key] = route.Save(t)
		route.DisableTransport(t)
	}
	s.edited()

	s.logger.Info("transport toggled",
		"route", route.String(), "transport", t.Key(), "disabled", !pending, "version", s.version)
	return !pending, nil
}

// UpdateBicycleDuration overrides the bicycle duration of a route. The prior
// value is kept so that UndoBicycleDuration can put it back; a second
// override replaces the kept value.
func (s *Service) UpdateBicycleDuration(startCode, endCode string, minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("bicycle duration must not be negative, got %d", minutes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	route, err := s.route(startCode, endCode)
	if err != nil {
		return err
	}
	if route.Durations[models.TransportBicycle] == nil {
		s.logger.Warn("bicycle override rejected", "route", route.String())
		return fmt.Errorf("%w: %s", ErrNoBicycle, route)
	}

	s.bicycle[route] = route.SaveBicycleDuration()
	route.UpdateBicycleDuration(minutes)
	s.edited()

	s.logger.Info("bicycle duration updated", "route", route.String(), "minutes", minutes, "version", s.version)
	return nil
}

// UndoBicycleDuration restores the bicycle duration saved by the last override.
// While bicycle is disabled on the route the restored duration goes into the
// pending disable snapshot, so re-enabling brings back the original figure.
func (s *Service) UndoBicycleDuration(startCode, endCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	route, err := s.route(startCode, endCode)
	if err != nil {
		return err
	}
	snapshot, ok := s.bicycle[route]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNothingToUndo, route)
	}

	key := transportKey{route: route, transport: models.TransportBicycle}
	pending, disabled := s.disabled[key]
	if disabled {
		s.disabled[key] = pending.WithDuration(snapshot.Duration())
	} else {
		route.RestoreBicycleDuration(snapshot)
	}
	delete(s.bicycle, route)
	s.edited()

	s.logger.Info("bicycle duration restored", "route", route.String(), "disabled", disabled, "version", s.version)
	return nil
}

// DisabledTransports lists the transports currently disabled on a route
func (s *Service) DisabledTransports(startCode, endCode string) ([]models.Transport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	route, err := s.route(startCode, endCode)
	if err != nil {
		return nil, err
	}

	var result []models.Transport
	for _, t := range models.AllTransports() {
		if _, ok := s.disabled[transportKey{route: route, transport: t}]; ok {
			result = append(result, t)
		}
	}
	return result, nil
}

func (s *Service) stopByName(name string) (*models.Stop, error) {
	stop, ok := s.network.StopByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrStopNotFound, name)
	}
	return stop, nil
}

func (s *Service) route(startCode, endCode string) (*models.Route, error) {
	e, ok := s.network.RouteBetween(startCode, endCode)
	if !ok {
		return nil, fmt.Errorf("%w: %s - %s", ErrRouteNotFound, startCode, endCode)
	}
	return s.network.Graph().Route(e), nil
}
