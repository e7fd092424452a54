package routes

import (
	"net/http"

	"github.com/ecograph/backend/internal/server/middleware"
	sutil "github.com/ecograph/backend/internal/server/util"
	"github.com/ecograph/backend/internal/util"
	"github.com/ecograph/backend/pkg/common"
	"github.com/ecograph/backend/pkg/schema"
	"github.com/ecograph/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

// ListEntitiesHandler returns one page of entities of a kind, ordered by name
func ListEntitiesHandler(c echo.Context) error {
	type listEntitiesParams struct {
		Kind   string `param:"kind" validate:"required"`
		Limit  int    `query:"limit"`
		Offset int    `query:"offset"`
	}

	type listEntitiesResponse struct {
		Message  string          `json:"message"`
		Entities []common.Entity `json:"entities"`
		Limit    int             `json:"limit"`
		Offset   int             `json:"offset"`
	}

	params := new(listEntitiesParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, listEntitiesResponse{
			Message: "Invalid request",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, listEntitiesResponse{
			Message: "Invalid request",
		})
	}

	if _, err := schema.LookupEntity(params.Kind); err != nil {
		return respondStoreError(c, err)
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	limit, offset := sutil.ClampPaging(params.Limit, params.Offset)

	ctx := c.Request().Context()
	graphStore := c.(*middleware.AppContext).App.Graph

	entities := make([]common.Entity, 0)
	err := graphStore.WithTx(ctx, func(tx store.Tx) error {
		var err error
		entities, err = tx.ListEntities(ctx, params.Kind, limit, offset)
		return err
	})
	if err != nil {
		return respondStoreError(c, err)
	}

	return c.JSON(http.StatusOK, listEntitiesResponse{
		Message:  "Entities fetched successfully",
		Entities: entities,
		Limit:    limit,
		Offset:   offset,
	})
}

// GetEntityHandler fetches one entity by its natural key (kind, name)
func GetEntityHandler(c echo.Context) error {
	type getEntityParams struct {
		Kind string `param:"kind" validate:"required"`
		Name string `param:"name" validate:"required"`
	}

	type getEntityResponse struct {
		Message string         `json:"message"`
		Entity  *common.Entity `json:"entity,omitempty"`
	}

	params := new(getEntityParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getEntityResponse{
			Message: "Invalid request",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getEntityResponse{
			Message: "Invalid request",
		})
	}

	if _, err := schema.LookupEntity(params.Kind); err != nil {
		return respondStoreError(c, err)
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	graphStore := c.(*middleware.AppContext).App.Graph
	name := util.NormalizeName(params.Name)

	var entity *common.Entity
	err := graphStore.WithTx(ctx, func(tx store.Tx) error {
		var err error
		entity, err = tx.GetEntity(ctx, params.Kind, name)
		return err
	})
	if err != nil {
		return respondStoreError(c, err)
	}

	return c.JSON(http.StatusOK, getEntityResponse{
		Message: "Entity fetched successfully",
		Entity:  entity,
	})
}
