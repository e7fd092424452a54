package routes

import (
	"net/http"

	"github.com/ecograph/backend/internal/server/middleware"
	"github.com/ecograph/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

// GetStatsHandler returns per-kind entity and relationship counts plus
// overall totals
func GetStatsHandler(c echo.Context) error {
	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	app := c.(*middleware.AppContext).App

	var (
		entityCounts       map[string]int64
		relationshipCounts map[string]int64
	)
	err := app.Graph.WithTx(c.Request().Context(), func(tx store.Tx) error {
		var txErr error
		entityCounts, txErr = tx.CountEntities(c.Request().Context())
		if txErr != nil {
			return txErr
		}
		relationshipCounts, txErr = tx.CountRelationships(c.Request().Context())
		return txErr
	})
	if err != nil {
		return respondStoreError(c, err)
	}

	var totalEntities, totalRelationships int64
	for _, n := range entityCounts {
		totalEntities += n
	}
	for _, n := range relationshipCounts {
		totalRelationships += n
	}

	type statsResponse struct {
		Message            string           `json:"message"`
		Entities           map[string]int64 `json:"entities"`
		Relationships      map[string]int64 `json:"relationships"`
		TotalEntities      int64            `json:"total_entities"`
		TotalRelationships int64            `json:"total_relationships"`
	}

	return c.JSON(http.StatusOK, statsResponse{
		Message:            "Stats fetched successfully",
		Entities:           entityCounts,
		Relationships:      relationshipCounts,
		TotalEntities:      totalEntities,
		TotalRelationships: totalRelationships,
	})
}
