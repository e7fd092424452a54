package routes

import (
	"net/http"

	"github.com/ecograph/backend/internal/server/middleware"
	"github.com/ecograph/backend/pkg/schema"

	"github.com/labstack/echo/v4"
)

// Wire shapes for registry introspection. These drive the operator's data
// entry forms, so they expose everything a form needs: field types, enum
// values, numeric bounds, and for relationships the legal endpoint pairs.

type fieldSpec struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Default  any      `json:"default,omitempty"`
	Values   []string `json:"values,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}

type endpointSpec struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

func fieldSpecs(fields []schema.Attr) []fieldSpec {
	specs := make([]fieldSpec, 0, len(fields))
	for _, f := range fields {
		specs = append(specs, fieldSpec{
			Name:     f.Name,
			Type:     string(f.Type),
			Required: f.Required,
			Default:  f.Default,
			Values:   f.Values,
			Min:      f.Min,
			Max:      f.Max,
		})
	}
	return specs
}

// GetEntitySchemaHandler returns the attribute specification of every entity
// kind
func GetEntitySchemaHandler(c echo.Context) error {
	type entityKindSpec struct {
		Kind   string      `json:"kind"`
		Fields []fieldSpec `json:"fields"`
	}

	type entitySchemaResponse struct {
		Message string           `json:"message"`
		Kinds   []entityKindSpec `json:"kinds"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	kinds := make([]entityKindSpec, 0)
	for _, kind := range schema.EntityKinds() {
		s, err := schema.LookupEntity(kind)
		if err != nil {
			return respondStoreError(c, err)
		}
		kinds = append(kinds, entityKindSpec{
			Kind:   s.Kind,
			Fields: fieldSpecs(s.Fields),
		})
	}

	return c.JSON(http.StatusOK, entitySchemaResponse{
		Message: "Entity schema fetched successfully",
		Kinds:   kinds,
	})
}

// GetRelationshipSchemaHandler returns the specification of every
// relationship kind: endpoints, cardinality, and attributes
func GetRelationshipSchemaHandler(c echo.Context) error {
	type relationshipKindSpec struct {
		Kind          string         `json:"kind"`
		Endpoints     []endpointSpec `json:"endpoints"`
		Cardinality   string         `json:"cardinality"`
		Disambiguator string         `json:"disambiguator,omitempty"`
		Fields        []fieldSpec    `json:"fields"`
	}

	type relationshipSchemaResponse struct {
		Message string                 `json:"message"`
		Kinds   []relationshipKindSpec `json:"kinds"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	kinds := make([]relationshipKindSpec, 0)
	for _, kind := range schema.RelationshipKinds() {
		s, err := schema.LookupRelationship(kind)
		if err != nil {
			return respondStoreError(c, err)
		}

		endpoints := make([]endpointSpec, 0, len(s.Endpoints))
		for _, p := range s.Endpoints {
			endpoints = append(endpoints, endpointSpec{Source: p.Source, Target: p.Target})
		}

		kinds = append(kinds, relationshipKindSpec{
			Kind:          s.Kind,
			Endpoints:     endpoints,
			Cardinality:   string(s.Cardinality),
			Disambiguator: s.Disambiguator,
			Fields:        fieldSpecs(s.Fields),
		})
	}

	return c.JSON(http.StatusOK, relationshipSchemaResponse{
		Message: "Relationship schema fetched successfully",
		Kinds:   kinds,
	})
}
