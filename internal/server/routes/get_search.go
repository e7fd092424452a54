package routes

import (
	"net/http"
	"strings"

	"github.com/ecograph/backend/internal/server/middleware"
	sutil "github.com/ecograph/backend/internal/server/util"
	"github.com/ecograph/backend/pkg/common"
	"github.com/ecograph/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

// SearchEntitiesHandler finds entities of any kind whose name contains the
// query string, case-insensitively
func SearchEntitiesHandler(c echo.Context) error {
	type searchParams struct {
		Query string `query:"q"`
		Limit int    `query:"limit"`
	}

	params := new(searchParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid query parameters"})
	}

	if strings.TrimSpace(params.Query) == "" {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Query parameter 'q' is required"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	limit, _ := sutil.ClampPaging(params.Limit, 0)

	app := c.(*middleware.AppContext).App

	var entities []common.Entity
	err := app.Graph.WithTx(c.Request().Context(), func(tx store.Tx) error {
		var txErr error
		entities, txErr = tx.SearchEntities(c.Request().Context(), params.Query, limit)
		return txErr
	})
	if err != nil {
		return respondStoreError(c, err)
	}

	type searchResponse struct {
		Message  string          `json:"message"`
		Entities []common.Entity `json:"entities"`
		Limit    int             `json:"limit"`
	}

	return c.JSON(http.StatusOK, searchResponse{
		Message:  "Search completed successfully",
		Entities: entities,
		Limit:    limit,
	})
}
