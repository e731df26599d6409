package api

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/passbi/transitmap/internal/cache"
	"github.com/passbi/transitmap/internal/models"
	"github.com/passbi/transitmap/internal/planner"
	"github.com/passbi/transitmap/internal/routing"
	"golang.org/x/sync/singleflight"
)

// ItineraryCache stores computed itineraries shared between instances
type ItineraryCache interface {
	GetItinerary(ctx context.Context, key string) (*models.Itinerary, error)
	SetItinerary(ctx context.Context, key string, itinerary *models.Itinerary) error
	AcquireLock(ctx context.Context, key string) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
	WaitForItinerary(ctx context.Context, key string, maxWait time.Duration) (*models.Itinerary, error)
	HealthCheck(ctx context.Context) error
}

// DatabaseCheck reports the row count of each stored dataset table
type DatabaseCheck func(ctx context.Context) (map[string]int, error)

// Handler serves the HTTP API over one planner
type Handler struct {
	planner  *planner.Service
	cache    ItineraryCache
	dbHealth DatabaseCheck
	flights  singleflight.Group
}

// NewHandler creates a handler. Cache and dbHealth may be nil when the
// server runs without Redis or PostgreSQL.
func NewHandler(p *planner.Service, c ItineraryCache, dbHealth DatabaseCheck) *Handler {
	return &Handler{planner: p, cache: c, dbHealth: dbHealth}
}

// RouteSearchResponse is the API response structure
type RouteSearchResponse struct {
	From   string                       `json:"from"`
	To     string                       `json:"to"`
	Routes map[string]*models.Itinerary `json:"routes"`
}

// TripRequest is the body of POST /v1/trips
type TripRequest struct {
	Stops     []string `json:"stops"`
	Criterion string   `json:"criterion"`
}

// RouteSearch handles GET /v1/route-search. Without a criterion every
// criterion is computed and the ones that fail are left out.
func (h *Handler) RouteSearch(c *fiber.Ctx) error {
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	if from == "" || to == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required parameters: from and to")
	}

	transports := models.AllTransports()
	if raw := c.Query("transports"); raw != "" {
		parsed, err := models.ParseTransportList(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if len(parsed) == 0 {
			return routing.ErrNoTransports
		}
		transports = parsed
	}

	ctx := c.UserContext()

	if criterion := c.Query("criterion"); criterion != "" {
		itinerary, hit, err := h.routeItinerary(ctx, from, to, criterion, transports)
		if err != nil {
			return err
		}
		c.Locals("cache_hit", hit)
		return c.JSON(RouteSearchResponse{
			From:   from,
			To:     to,
			Routes: map[string]*models.Itinerary{itinerary.Criterion: itinerary},
		})
	}

	// Compute all criteria in parallel
	strategies := routing.GetAllStrategies()

	type routeResult struct {
		criterion string
		itinerary *models.Itinerary
		hit       bool
		err       error
	}

	resultChan := make(chan routeResult, len(strategies))
	var wg sync.WaitGroup

	for _, strategy := range strategies {
		wg.Add(1)
		go func(criterion string) {
			defer wg.Done()
			itinerary, hit, err := h.routeItinerary(ctx, from, to, criterion, transports)
			resultChan <- routeResult{criterion: criterion, itinerary: itinerary, hit: hit, err: err}
		}(strategy.Name())
	}

	// Wait for all goroutines to complete
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results
	routes := make(map[string]*models.Itinerary)
	allHits := true
	var firstErr error
	for result := range resultChan {
		if result.err != nil {
			log.Printf("Route computation failed for criterion %s: %v", result.criterion, result.err)
			if firstErr == nil || errors.Is(result.err, routing.ErrNegativeCycle) {
				firstErr = result.err
			}
			continue
		}
		routes[result.criterion] = result.itinerary
		allHits = allHits && result.hit
	}

	// Check if we got at least one route
	if len(routes) == 0 {
		return firstErr
	}

	c.Locals("cache_hit", allHits)
	return c.JSON(RouteSearchResponse{From: from, To: to, Routes: routes})
}

// Trip handles POST /v1/trips
func (h *Handler) Trip(c *fiber.Ctx) error {
	var req TripRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Stops) < 2 {
		return fiber.NewError(fiber.StatusBadRequest, "a trip needs at least 2 stops")
	}
	if req.Criterion == "" {
		req.Criterion = routing.CriterionDistance
	}

	key := cache.ItineraryKey(h.planner.StateKey(), "trip:"+req.Criterion, req.Stops, models.AllTransports())
	itinerary, hit, err := h.cached(c.UserContext(), key, func() (*models.Itinerary, error) {
		return h.planner.CustomTrip(req.Stops, req.Criterion)
	})
	if err != nil {
		return err
	}

	c.Locals("cache_hit", hit)
	return c.JSON(itinerary)
}

func (h *Handler) routeItinerary(ctx context.Context, from, to, criterion string, transports []models.Transport) (*models.Itinerary, bool, error) {
	key := cache.ItineraryKey(h.planner.StateKey(), criterion, []string{from, to}, transports)
	return h.cached(ctx, key, func() (*models.Itinerary, error) {
		return h.planner.CalculateRoute(from, to, criterion, transports)
	})
}

// cached collapses identical concurrent computations in this process and,
// when a cache is configured, shares results through it
func (h *Handler) cached(ctx context.Context, key string, compute func() (*models.Itinerary, error)) (*models.Itinerary, bool, error) {
	type flight struct {
		itinerary *models.Itinerary
		hit       bool
	}

	v, err, _ := h.flights.Do(key, func() (interface{}, error) {
		if h.cache == nil {
			itinerary, err := compute()
			return flight{itinerary: itinerary}, err
		}

		// Try to get from cache
		if cached, err := h.cache.GetItinerary(ctx, key); err == nil && cached != nil {
			return flight{itinerary: cached, hit: true}, nil
		}

		// Try to acquire lock
		acquired, err := h.cache.AcquireLock(ctx, key)
		if err != nil {
			log.Printf("Failed to acquire lock: %v", err)
			// Continue without lock (degrade gracefully)
		} else if !acquired {
			// Another instance is computing this itinerary, wait for it
			cached, err := h.cache.WaitForItinerary(ctx, key, 3*time.Second)
			if err == nil && cached != nil {
				return flight{itinerary: cached, hit: true}, nil
			}
			// If waiting failed, compute anyway
		}

		// Ensure lock is released
		defer func() {
			if acquired {
				h.cache.ReleaseLock(ctx, key)
			}
		}()

		itinerary, err := compute()
		if err != nil {
			return flight{}, err
		}

		if err := h.cache.SetItinerary(ctx, key, itinerary); err != nil {
			log.Printf("Failed to cache itinerary: %v", err)
		}
		return flight{itinerary: itinerary}, nil
	})
	if err != nil {
		return nil, false, err
	}

	f := v.(flight)
	return f.itinerary, f.hit, nil
}

// Health handles the /health endpoint
func (h *Handler) Health(c *fiber.Ctx) error {
	ctx := c.UserContext()
	checks := fiber.Map{}
	healthy := true

	// Check database
	if h.dbHealth != nil {
		counts, err := h.dbHealth(ctx)
		database := fiber.Map{"status": "ok", "tables": counts}
		if err != nil {
			database["status"] = err.Error()
			healthy = false
		}
		checks["database"] = database
	}

	// Check Redis
	if h.cache != nil {
		checks["redis"] = "ok"
		if err := h.cache.HealthCheck(ctx); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		}
	}

	stats := h.planner.Stats()
	checks["network"] = fiber.Map{
		"stops":   stats.Stops,
		"routes":  stats.Routes,
		"version": stats.Version,
		"state":   stats.StateKey,
	}

	// Overall status
	status := "healthy"
	httpStatus := fiber.StatusOK
	if !healthy {
		status = "unhealthy"
		httpStatus = fiber.StatusServiceUnavailable
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checks": checks,
	})
}
