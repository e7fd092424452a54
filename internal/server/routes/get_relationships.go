package routes

import (
	"net/http"

	"github.com/ecograph/backend/internal/server/middleware"
	"github.com/ecograph/backend/pkg/common"
	"github.com/ecograph/backend/pkg/schema"
	"github.com/ecograph/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

// ListIncomingRelationshipsHandler returns all edges of one kind arriving at
// an entity
func ListIncomingRelationshipsHandler(c echo.Context) error {
	type listIncomingParams struct {
		Kind     string `param:"kind" validate:"required"`
		TargetID string `param:"target_id" validate:"required"`
	}

	type listIncomingResponse struct {
		Message       string                `json:"message"`
		Relationships []common.Relationship `json:"relationships"`
	}

	params := new(listIncomingParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, listIncomingResponse{
			Message: "Invalid request",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, listIncomingResponse{
			Message: "Invalid request",
		})
	}

	if _, err := schema.LookupRelationship(params.Kind); err != nil {
		return respondStoreError(c, err)
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	graphStore := c.(*middleware.AppContext).App.Graph

	relationships := make([]common.Relationship, 0)
	err := graphStore.WithTx(ctx, func(tx store.Tx) error {
		var err error
		relationships, err = tx.RelationshipsByTarget(ctx, params.Kind, params.TargetID)
		return err
	})
	if err != nil {
		return respondStoreError(c, err)
	}

	return c.JSON(http.StatusOK, listIncomingResponse{
		Message:       "Relationships fetched successfully",
		Relationships: relationships,
	})
}
