package routes

import (
	"net/http"

	"github.com/ecograph/backend/internal/server/middleware"
	"github.com/ecograph/backend/pkg/common"
	"github.com/ecograph/backend/pkg/graph"
	"github.com/ecograph/backend/pkg/validate"

	"github.com/labstack/echo/v4"
)

// CreateRelationshipHandler upserts one relationship between two existing
// entities, both addressed by (kind, name)
func CreateRelationshipHandler(c echo.Context) error {
	type createRelationshipBody struct {
		Kind   string           `param:"kind"`
		Source common.EntityRef `json:"source" validate:"required"`
		Target common.EntityRef `json:"target" validate:"required"`
		Attrs  map[string]any   `json:"attrs"`
	}

	type createRelationshipResponse struct {
		Message    string               `json:"message"`
		Op         string               `json:"op,omitempty"`
		ID         string               `json:"id,omitempty"`
		Violations []validate.Violation `json:"violations,omitempty"`
	}

	data := new(createRelationshipBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createRelationshipResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createRelationshipResponse{
			Message: "Invalid request body",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	coordinator := c.(*middleware.AppContext).App.Coordinator

	out, err := coordinator.SubmitRelationship(ctx, data.Kind, data.Source, data.Target, data.Attrs)
	if err != nil {
		return respondStoreError(c, err)
	}

	if out.Rejected() {
		return c.JSON(http.StatusUnprocessableEntity, createRelationshipResponse{
			Message:    "Relationship submission rejected",
			Op:         string(out.Op),
			Violations: out.Violations,
		})
	}

	status := http.StatusOK
	message := "Relationship updated successfully"
	if out.Op == graph.OpCreated {
		status = http.StatusCreated
		message = "Relationship created successfully"
	}

	return c.JSON(status, createRelationshipResponse{
		Message: message,
		Op:      string(out.Op),
		ID:      out.ID,
	})
}
