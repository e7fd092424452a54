package common

import "time"

// Entity represents a node in the ecosystem graph. Each entity has a kind
// (Person, Startup, VC_Firm, ...) and is identified by the pair (Kind, Name):
// two records with the same kind and name are the same entity. ID is the
// store-assigned surrogate identifier; it never changes once assigned.
//
// Attrs holds the kind-specific attributes after validation and coercion.
// Values are limited to string, int64, float64 and bool; dates are stored
// as ISO 8601 strings (YYYY-MM-DD).
type Entity struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	Name      string         `json:"name"`
	Attrs     map[string]any `json:"attrs"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Ref returns the entity's reference, its (kind, name) identity.
func (e Entity) Ref() EntityRef {
	return EntityRef{Kind: e.Kind, Name: e.Name}
}

// EntityRef identifies an entity by its natural key without carrying its
// attributes. Relationship endpoints are expressed as refs.
type EntityRef struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// Relationship represents a directional edge between two entities, such as a
// person founding a startup or a fund investing in one. Each relationship has
// a kind (FOUNDED, INVESTS_IN, ...) and kind-specific attributes.
//
// Identity depends on the kind's cardinality: an edge kind that admits a
// single edge per endpoint pair is identified by (Kind, SourceID, TargetID),
// while a kind that admits repeated edges is additionally keyed by the
// Disambiguator value, a copy of the kind's disambiguating date attribute.
// Single-cardinality edges carry an empty Disambiguator.
type Relationship struct {
	ID            string         `json:"id"`
	Kind          string         `json:"kind"`
	SourceID      string         `json:"source_id"`
	TargetID      string         `json:"target_id"`
	Disambiguator string         `json:"disambiguator,omitempty"`
	Attrs         map[string]any `json:"attrs"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// GraphNode is the node shape served to graph visualizations.
type GraphNode struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// GraphLink is the edge shape served to graph visualizations. Source and
// Target reference GraphNode IDs.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
}

// GraphData is the node-link projection of the graph consumed by the
// frontend's network view.
type GraphData struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}
