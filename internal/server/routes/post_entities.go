package routes

import (
	"encoding/json"
	"net/http"

	"github.com/ecograph/backend/internal/server/middleware"
	"github.com/ecograph/backend/pkg/graph"
	"github.com/ecograph/backend/pkg/validate"

	"github.com/labstack/echo/v4"
)

// CreateEntityHandler upserts one entity: the kind comes from the path, the
// body is the raw attribute map
func CreateEntityHandler(c echo.Context) error {
	type createEntityResponse struct {
		Message    string               `json:"message"`
		Op         string               `json:"op,omitempty"`
		ID         string               `json:"id,omitempty"`
		Violations []validate.Violation `json:"violations,omitempty"`
	}

	kind := c.Param("kind")
	attrs := make(map[string]any)
	if err := json.NewDecoder(c.Request().Body).Decode(&attrs); err != nil {
		return c.JSON(http.StatusBadRequest, createEntityResponse{
			Message: "Invalid request body",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	coordinator := c.(*middleware.AppContext).App.Coordinator

	out, err := coordinator.SubmitEntity(ctx, kind, attrs)
	if err != nil {
		return respondStoreError(c, err)
	}

	if out.Rejected() {
		return c.JSON(http.StatusUnprocessableEntity, createEntityResponse{
			Message:    "Entity submission rejected",
			Op:         string(out.Op),
			Violations: out.Violations,
		})
	}

	status := http.StatusOK
	message := "Entity updated successfully"
	if out.Op == graph.OpCreated {
		status = http.StatusCreated
		message = "Entity created successfully"
	}

	return c.JSON(status, createEntityResponse{
		Message: message,
		Op:      string(out.Op),
		ID:      out.ID,
	})
}
