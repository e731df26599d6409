package api

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/passbi/transitmap/internal/graph"
	"github.com/passbi/transitmap/internal/planner"
	"github.com/passbi/transitmap/internal/routing"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusOf maps domain errors to an HTTP status and a stable error code
func statusOf(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, "invalid_request"
	case errors.Is(err, routing.ErrNegativeCycle):
		return fiber.StatusInternalServerError, "internal_error"
	case errors.Is(err, routing.ErrNoPath):
		return fiber.StatusNotFound, "no_path"
	case errors.Is(err, planner.ErrStopNotFound), errors.Is(err, graph.ErrUnknownStop):
		return fiber.StatusNotFound, "stop_not_found"
	case errors.Is(err, planner.ErrRouteNotFound):
		return fiber.StatusNotFound, "route_not_found"
	case errors.Is(err, planner.ErrNothingToUndo):
		return fiber.StatusConflict, "nothing_to_undo"
	case errors.Is(err, routing.ErrUnknownCriterion):
		return fiber.StatusBadRequest, "unknown_criterion"
	case errors.Is(err, routing.ErrNoTransports):
		return fiber.StatusBadRequest, "no_transports"
	case errors.Is(err, planner.ErrNoBicycle):
		return fiber.StatusBadRequest, "no_bicycle"
	default:
		return fiber.StatusInternalServerError, "internal_error"
	}
}

// ErrorHandler renders errors returned from handlers
func ErrorHandler(c *fiber.Ctx, err error) error {
	code, kind := statusOf(err)

	message := err.Error()
	if code >= fiber.StatusInternalServerError {
		log.Printf("Error: %v", err)
		if !errors.Is(err, routing.ErrNegativeCycle) {
			message = "internal server error"
		}
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   kind,
		Message: message,
	})
}
