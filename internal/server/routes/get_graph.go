package routes

import (
	"net/http"

	"github.com/ecograph/backend/internal/server/middleware"
	sutil "github.com/ecograph/backend/internal/server/util"
	"github.com/ecograph/backend/pkg/common"
	"github.com/ecograph/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

// GetGraphHandler returns the node/edge projection rendered by the frontend
// graph view. The limit caps the number of nodes; edges between returned
// nodes are included.
func GetGraphHandler(c echo.Context) error {
	type graphParams struct {
		Limit int `query:"limit"`
	}

	params := new(graphParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid query parameters"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	limit, _ := sutil.ClampPaging(params.Limit, 0)

	app := c.(*middleware.AppContext).App

	var graph *common.GraphData
	err := app.Graph.WithTx(c.Request().Context(), func(tx store.Tx) error {
		var txErr error
		graph, txErr = tx.GraphData(c.Request().Context(), limit)
		return txErr
	})
	if err != nil {
		return respondStoreError(c, err)
	}

	type graphResponse struct {
		Message string            `json:"message"`
		Graph   *common.GraphData `json:"graph"`
	}

	return c.JSON(http.StatusOK, graphResponse{
		Message: "Graph fetched successfully",
		Graph:   graph,
	})
}
