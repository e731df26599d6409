package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/passbi/transitmap/internal/models"
)

// Default number of stops returned by GET /v1/centrality
const defaultTopCentral = 5

// TransportInfo describes one transport for display
type TransportInfo struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	StyleClass string `json:"style_class"`
	Emoji      string `json:"emoji"`
}

// Transports handles GET /v1/transports
func (h *Handler) Transports(c *fiber.Ctx) error {
	var result []TransportInfo
	for _, t := range models.AllTransports() {
		result = append(result, TransportInfo{
			Key:        t.Key(),
			Label:      t.Label(),
			StyleClass: t.StyleClass(),
			Emoji:      t.Emoji(),
		})
	}
	return c.JSON(fiber.Map{"transports": result})
}

// Stops handles GET /v1/stops
func (h *Handler) Stops(c *fiber.Ctx) error {
	stops := h.planner.Stops()
	return c.JSON(fiber.Map{
		"stops": stops,
		"total": len(stops),
	})
}

// Stop handles GET /v1/stops/:code
func (h *Handler) Stop(c *fiber.Ctx) error {
	detail, err := h.planner.Stop(c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

// Reachable handles GET /v1/stops/:code/reachable?max=N
func (h *Handler) Reachable(c *fiber.Ctx) error {
	maxHops, err := queryInt(c, "max", 1)
	if err != nil || maxHops < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid max (must be a non-negative integer)")
	}

	stops, err := h.planner.Reachable(c.Params("code"), maxHops)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"stop":  c.Params("code"),
		"max":   maxHops,
		"stops": stops,
		"total": len(stops),
	})
}

// Routes handles GET /v1/routes with an optional ?transport= filter
func (h *Handler) Routes(c *fiber.Ctx) error {
	routes := h.planner.Routes()

	if raw := c.Query("transport"); raw != "" {
		t, err := models.ParseTransport(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		filtered := make([]*models.Route, 0, len(routes))
		for _, route := range routes {
			if route.Offers(t) {
				filtered = append(filtered, route)
			}
		}
		routes = filtered
	}

	return c.JSON(fiber.Map{
		"routes": routes,
		"total":  len(routes),
	})
}

// Stats handles GET /v1/stats
func (h *Handler) Stats(c *fiber.Ctx) error {
	return c.JSON(h.planner.Stats())
}

// Centrality handles GET /v1/centrality?top=N. top=0 returns every stop.
func (h *Handler) Centrality(c *fiber.Ctx) error {
	top, err := queryInt(c, "top", defaultTopCentral)
	if err != nil || top < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid top (must be a non-negative integer)")
	}
	return c.JSON(fiber.Map{"centrality": h.planner.Centrality(top)})
}

// ToggleRoute handles POST /v1/routes/:start/:end/toggle
func (h *Handler) ToggleRoute(c *fiber.Ctx) error {
	active, err := h.planner.ToggleRoute(c.Params("start"), c.Params("end"))
	if err != nil {
		return err
	}
	return h.routeState(c, fiber.Map{"active": active})
}

// ToggleTransport handles POST /v1/routes/:start/:end/transports/:transport/toggle
func (h *Handler) ToggleTransport(c *fiber.Ctx) error {
	t, err := models.ParseTransport(c.Params("transport"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	disabled, err := h.planner.ToggleTransport(c.Params("start"), c.Params("end"), t)
	if err != nil {
		return err
	}
	return h.routeState(c, fiber.Map{"transport": t, "disabled": disabled})
}

type bicycleRequest struct {
	Duration *int `json:"duration"`
}

// UpdateBicycleDuration handles PUT /v1/routes/:start/:end/bicycle-duration
func (h *Handler) UpdateBicycleDuration(c *fiber.Ctx) error {
	var req bicycleRequest
	if err := c.BodyParser(&req); err != nil || req.Duration == nil {
		return fiber.NewError(fiber.StatusBadRequest, "body must be {\"duration\": minutes}")
	}
	if *req.Duration < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "duration must not be negative")
	}

	if err := h.planner.UpdateBicycleDuration(c.Params("start"), c.Params("end"), *req.Duration); err != nil {
		return err
	}
	return h.routeState(c, fiber.Map{"bicycle_duration": *req.Duration})
}

// UndoBicycleDuration handles DELETE /v1/routes/:start/:end/bicycle-duration
func (h *Handler) UndoBicycleDuration(c *fiber.Ctx) error {
	if err := h.planner.UndoBicycleDuration(c.Params("start"), c.Params("end")); err != nil {
		return err
	}
	return h.routeState(c, fiber.Map{"restored": true})
}

// routeState answers an edit with the route as it now stands
func (h *Handler) routeState(c *fiber.Ctx, fields fiber.Map) error {
	route, err := h.planner.Route(c.Params("start"), c.Params("end"))
	if err != nil {
		return err
	}
	disabled, err := h.planner.DisabledTransports(c.Params("start"), c.Params("end"))
	if err != nil {
		return err
	}
	if disabled == nil {
		disabled = []models.Transport{}
	}

	fields["route"] = route
	fields["disabled_transports"] = disabled
	fields["version"] = h.planner.Version()
	return c.JSON(fields)
}

func queryInt(c *fiber.Ctx, key string, defaultValue int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(raw)
}
