package routes

import (
	"errors"
	"net/http"

	"github.com/ecograph/backend/pkg/logger"
	"github.com/ecograph/backend/pkg/schema"
	"github.com/ecograph/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

type messageResponse struct {
	Message string `json:"message"`
}

// respondStoreError maps graph errors onto HTTP statuses: unknown kinds are
// client errors, missing records are 404, uniqueness races are 409, an
// unreachable store is 503, everything else a logged 500.
func respondStoreError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, schema.ErrUnknownEntityKind), errors.Is(err, schema.ErrUnknownRelationshipKind):
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, messageResponse{Message: "Not found"})
	case errors.Is(err, store.ErrConstraintViolation):
		return c.JSON(http.StatusConflict, messageResponse{Message: "Conflicting write, please retry"})
	case errors.Is(err, store.ErrStoreUnavailable):
		logger.Error("Graph store unavailable", "err", err)
		return c.JSON(http.StatusServiceUnavailable, messageResponse{Message: "Graph store unavailable"})
	default:
		logger.Error("Unhandled graph store error", "err", err)
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}
}
